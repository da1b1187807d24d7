package providers

import (
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
)

// Provider builds metadata for the URLs it recognizes. Providers are
// read-only once registered and may be used concurrently.
type Provider interface {
	Name() string
	// SupportedHostNames lists exact host names or glob patterns (like
	// "*.example.org") this provider is consulted for.
	SupportedHostNames() []string
	SupportsAnyHost() bool
	CanHandle(req *m.ConsumerRequest) bool
	// GetMetadata returns fresh, unfetched metadata for the request.
	GetMetadata(req *m.ConsumerRequest) metadata.Metadata
}
