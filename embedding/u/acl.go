package u

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/metrics"
)

type networkAcl struct {
	allowed []*net.IPNet
	denied  []*net.IPNet
	dns     *cache.Cache
}

func newNetworkAcl(cfg config.ResolverConfig) (*networkAcl, error) {
	allowedCidrs := cfg.AllowedNetworks
	if allowedCidrs == nil {
		allowedCidrs = []string{"0.0.0.0/0"}
	}
	deniedCidrs := cfg.DisallowedNetworks
	if deniedCidrs == nil {
		deniedCidrs = []string{}
	}

	// Forcefully append 0.0.0.0 and :: because they are unroutable and resolve to localhost
	deniedCidrs = append(deniedCidrs, "0.0.0.0/32")
	deniedCidrs = append(deniedCidrs, "::/128")

	allowed, err := parseCidrs(allowedCidrs)
	if err != nil {
		return nil, err
	}
	denied, err := parseCidrs(deniedCidrs)
	if err != nil {
		return nil, err
	}

	acl := &networkAcl{
		allowed: allowed,
		denied:  denied,
	}
	if cfg.DnsCacheSeconds > 0 {
		ttl := time.Duration(cfg.DnsCacheSeconds) * time.Second
		acl.dns = cache.New(ttl, ttl*2)
	}
	return acl, nil
}

func parseCidrs(cidrs []string) ([]*net.IPNet, error) {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func (a *networkAcl) lookup(ctx context.Context, host string) ([]net.IP, error) {
	if host == "localhost" {
		return []net.IP{net.IPv4(127, 0, 0, 1)}, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}

	if a.dns != nil {
		if cached, ok := a.dns.Get(host); ok {
			metrics.DnsCacheHits.Inc()
			return cached.([]net.IP), nil
		}
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, common.ErrInvalidHost
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		ips = append(ips, addr.IP)
	}
	if len(ips) > 0 && a.dns != nil {
		a.dns.SetDefault(host, ips)
	}
	return ips, nil
}

// safeAddress resolves addr (host:port) and returns the address to dial, or
// ErrHostNotAllowed when the resolved IP falls outside the permitted networks.
func (a *networkAcl) safeAddress(ctx context.Context, addr string) (string, error) {
	realHost, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", common.ErrInvalidHost
	}

	ips, err := a.lookup(ctx, realHost)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", common.ErrHostNotFound
	}
	ip := ips[0]

	if !a.isAllowed(ip) {
		return "", common.ErrHostNotAllowed
	}
	return net.JoinHostPort(ip.String(), port), nil
}

func (a *networkAcl) isAllowed(ip net.IP) bool {
	// First check if the IP fits the deny list. This should be a much shorter list, and therefore
	// much faster to check.
	if inRange(ip, a.denied) {
		return false
	}

	// Now check the allowed list just to make sure the IP is actually allowed
	return inRange(ip, a.allowed)
}

func inRange(ip net.IP, networks []*net.IPNet) bool {
	for _, network := range networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
