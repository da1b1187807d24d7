package providers

import (
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
	"github.com/t2bot/embed-resolver/embedding/u"
)

// UnknownProvider fetches the page itself. It accepts every URL and is meant
// to be the registry's fallback.
type UnknownProvider struct {
	fetcher *u.Fetcher
}

func NewUnknownProvider(fetcher *u.Fetcher) *UnknownProvider {
	return &UnknownProvider{fetcher: fetcher}
}

func (p *UnknownProvider) Name() string {
	return "unknown"
}

func (p *UnknownProvider) SupportedHostNames() []string {
	return nil
}

func (p *UnknownProvider) SupportsAnyHost() bool {
	return false
}

func (p *UnknownProvider) CanHandle(req *m.ConsumerRequest) bool {
	return true
}

func (p *UnknownProvider) GetMetadata(req *m.ConsumerRequest) metadata.Metadata {
	return metadata.NewUnknownMetadata(p.fetcher, p.Name(), req.String())
}
