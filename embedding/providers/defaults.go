package providers

import (
	"github.com/t2bot/embed-resolver/embedding/u"
)

// NewDefaultRegistry registers the built-in providers, falling back to
// fetching the page directly.
func NewDefaultRegistry(fetcher *u.Fetcher) (*Registry, error) {
	list, err := DefaultOEmbedProviders()
	if err != nil {
		return nil, err
	}

	r := NewRegistry(NewUnknownProvider(fetcher))
	r.Register(NewImgurProvider())
	r.Register(NewTwitterProvider(list, fetcher))
	r.Register(NewOEmbedProvider(list, fetcher))
	return r, nil
}
