package providers

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
	"github.com/t2bot/embed-resolver/metrics"
)

// Registry picks the provider for a URL: host-specific providers first, then
// providers accepting any host, then the fallback. Ties go to whichever was
// registered first. Register must not be called once the registry is in use.
type Registry struct {
	fallback Provider
	byHost   []Provider
	anyHost  []Provider
}

func NewRegistry(fallback Provider) *Registry {
	return &Registry{
		fallback: fallback,
		byHost:   make([]Provider, 0),
		anyHost:  make([]Provider, 0),
	}
}

func (r *Registry) Register(p Provider) {
	if len(p.SupportedHostNames()) > 0 {
		r.byHost = append(r.byHost, p)
	}
	if p.SupportsAnyHost() {
		r.anyHost = append(r.anyHost, p)
	}
}

// Resolve parses rawUrl and returns unfetched metadata from the selected
// provider. Fails with common.ErrInvalidUrl for malformed or hostless URLs.
func (r *Registry) Resolve(rawUrl string) (metadata.Metadata, error) {
	req, err := m.NewConsumerRequest(rawUrl)
	if err != nil {
		return nil, err
	}
	return r.ResolveRequest(req), nil
}

func (r *Registry) ResolveRequest(req *m.ConsumerRequest) metadata.Metadata {
	p := r.Select(req)
	logrus.WithFields(logrus.Fields{
		"url":      req.String(),
		"provider": p.Name(),
	}).Debug("Selected provider")
	metrics.Resolutions.With(prometheus.Labels{"provider": p.Name()}).Inc()
	return p.GetMetadata(req)
}

// Select returns the provider for req without side effects.
func (r *Registry) Select(req *m.ConsumerRequest) Provider {
	host := req.Host()
	for _, p := range r.byHost {
		if matchesHost(p, host) && p.CanHandle(req) {
			return p
		}
	}
	for _, p := range r.anyHost {
		if p.CanHandle(req) {
			return p
		}
	}
	return r.fallback
}

func matchesHost(p Provider, host string) bool {
	for _, pattern := range p.SupportedHostNames() {
		pattern = strings.ToLower(pattern)
		if pattern == host || glob.Glob(pattern, host) {
			return true
		}
	}
	return false
}
