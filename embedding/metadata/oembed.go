package metadata

import (
	"time"

	"github.com/dyatlov/go-oembed/oembed"
	"github.com/k3a/html2text"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/u"
)

// OEmbedSource is satisfied by *oembed.Item.
type OEmbedSource interface {
	FetchOembed(opts oembed.Options) (*oembed.Info, error)
}

// OEmbedMetadata resolves a URL through a known oEmbed endpoint.
type OEmbedMetadata struct {
	// ResourceId is the provider-specific id of the resource, when the
	// provider knows how to extract one (a tweet's status id, for example).
	ResourceId string

	fetcher   *u.Fetcher
	source    OEmbedSource
	provider  string
	uri       string
	maxWidth  int
	maxHeight int
	once      fetchOnce
}

func NewOEmbedMetadata(fetcher *u.Fetcher, source OEmbedSource, provider string, req *m.ConsumerRequest, resourceId string) *OEmbedMetadata {
	return &OEmbedMetadata{
		ResourceId: resourceId,
		fetcher:    fetcher,
		source:     source,
		provider:   provider,
		uri:        req.String(),
		maxWidth:   req.MaxWidth,
		maxHeight:  req.MaxHeight,
	}
}

func (d *OEmbedMetadata) RequestedUri() string {
	return d.uri
}

func (d *OEmbedMetadata) ResolvedUri() string {
	return d.uri
}

func (d *OEmbedMetadata) Data() *m.EmbedData {
	data, _ := d.once.peek()
	return data
}

func (d *OEmbedMetadata) Fetch(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	return d.once.do(ctx, d.uri, d.fetch)
}

type oembedResult struct {
	info *oembed.Info
	err  error
}

func (d *OEmbedMetadata) fetch(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	start := time.Now()

	// go-oembed takes no context; the client's timeout bounds this goroutine.
	ch := make(chan oembedResult, 1)
	go func() {
		info, err := d.source.FetchOembed(oembed.Options{
			URL:            d.uri,
			Client:         d.fetcher.Client(),
			AcceptLanguage: ctx.Config.DefaultLanguage,
			MaxWidth:       d.maxWidth,
			MaxHeight:      d.maxHeight,
		})
		ch <- oembedResult{info: info, err: err}
	}()

	var res oembedResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		ctx.Log.Warn("Error getting oEmbed: ", res.err)
		err := &common.FetchError{Url: d.uri, Err: res.err}
		recordFetch(d.provider, start, nil, err)
		return nil, err
	}

	if res.info != nil && res.info.Status != 0 && (res.info.Status < 200 || res.info.Status > 299) {
		ctx.Log.Debugf("oEmbed endpoint answered %d for %s", res.info.Status, d.uri)
		recordFetch(d.provider, start, nil, nil)
		return nil, nil
	}

	data := d.toEmbedData(res.info)
	summarizeData(ctx, data)
	recordFetch(d.provider, start, data, nil)
	return data, nil
}

func (d *OEmbedMetadata) toEmbedData(info *oembed.Info) *m.EmbedData {
	if info == nil {
		return nil
	}

	data := m.NewEmbedData(d.uri)
	data.Type = info.Type
	data.Title = info.Title
	data.Description = info.Description
	data.ProviderName = info.ProviderName
	data.ThumbnailUrl = info.ThumbnailURL

	switch info.Type {
	case "rich":
		data.Description = html2text.HTML2Text(info.HTML)
	case "photo":
		if info.URL != "" {
			data.ThumbnailUrl = info.URL
			data.AddMedia(m.MediaTypeImage, info.URL, info.URL)
		}
	case "video":
		thumbnail := info.ThumbnailURL
		if thumbnail == "" {
			thumbnail = d.uri
		}
		data.AddMedia(m.MediaTypeVideo, d.uri, thumbnail)
	}

	return data
}
