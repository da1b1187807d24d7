package providers

import (
	"bytes"
	_ "embed"
	"io"
	"sync"

	"github.com/dyatlov/go-oembed/oembed"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
	"github.com/t2bot/embed-resolver/embedding/u"
)

//go:embed providers.json
var providersJson []byte

var defaultOembed *oembed.Oembed
var defaultOembedErr error
var defaultOembedOnce = new(sync.Once)

// LoadOEmbedProviders parses a provider list in the oembed.com providers.json format.
func LoadOEmbedProviders(r io.Reader) (*oembed.Oembed, error) {
	o := oembed.NewOembed()
	if err := o.ParseProviders(r); err != nil {
		return nil, err
	}
	return o, nil
}

// DefaultOEmbedProviders is the provider list built into the binary.
func DefaultOEmbedProviders() (*oembed.Oembed, error) {
	defaultOembedOnce.Do(func() {
		defaultOembed, defaultOembedErr = LoadOEmbedProviders(bytes.NewReader(providersJson))
	})
	return defaultOembed, defaultOembedErr
}

// OEmbedProvider handles any URL matching an entry of its oEmbed provider list.
type OEmbedProvider struct {
	list    *oembed.Oembed
	fetcher *u.Fetcher
}

func NewOEmbedProvider(list *oembed.Oembed, fetcher *u.Fetcher) *OEmbedProvider {
	return &OEmbedProvider{list: list, fetcher: fetcher}
}

func (p *OEmbedProvider) Name() string {
	return "oembed"
}

func (p *OEmbedProvider) SupportedHostNames() []string {
	return nil
}

func (p *OEmbedProvider) SupportsAnyHost() bool {
	return true
}

func (p *OEmbedProvider) CanHandle(req *m.ConsumerRequest) bool {
	return p.list.FindItem(req.String()) != nil
}

func (p *OEmbedProvider) GetMetadata(req *m.ConsumerRequest) metadata.Metadata {
	item := p.list.FindItem(req.String())
	if item == nil {
		return nil
	}
	return metadata.NewOEmbedMetadata(p.fetcher, item, p.Name(), req, "")
}
