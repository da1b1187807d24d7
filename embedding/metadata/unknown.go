package metadata

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/p"
	"github.com/t2bot/embed-resolver/embedding/u"
)

// UnknownMetadata resolves any URL by fetching it and reading Open Graph
// tags, or describing the file when the URL points straight at media.
type UnknownMetadata struct {
	fetcher  *u.Fetcher
	provider string
	uri      string

	lock        sync.RWMutex
	movedTo     string
	resolvedUri string

	once fetchOnce
}

func NewUnknownMetadata(fetcher *u.Fetcher, provider string, uri string) *UnknownMetadata {
	return &UnknownMetadata{
		fetcher:  fetcher,
		provider: provider,
		uri:      uri,
	}
}

// RestoreUnknownMetadata rebuilds metadata from a previous resolution. A
// non-nil data is returned by Fetch without touching the network; otherwise
// fetching starts from movedTo when set.
func RestoreUnknownMetadata(fetcher *u.Fetcher, provider string, uri string, movedTo string, data *m.EmbedData) *UnknownMetadata {
	md := NewUnknownMetadata(fetcher, provider, uri)
	md.movedTo = movedTo
	if data != nil {
		md.once.seed(data)
	}
	return md
}

func (d *UnknownMetadata) RequestedUri() string {
	return d.uri
}

func (d *UnknownMetadata) ResolvedUri() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if d.resolvedUri == "" {
		return d.uri
	}
	return d.resolvedUri
}

// MovedTo is the permanent new location of the requested URL, if the first
// request was answered with a permanent redirect.
func (d *UnknownMetadata) MovedTo() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.movedTo
}

func (d *UnknownMetadata) Data() *m.EmbedData {
	data, _ := d.once.peek()
	return data
}

func (d *UnknownMetadata) Fetch(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	return d.once.do(ctx, d.uri, d.fetch)
}

func (d *UnknownMetadata) fetch(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	start := time.Now()
	data, err := d.fetchCore(ctx)
	recordFetch(d.provider, start, data, err)
	return data, err
}

func (d *UnknownMetadata) fetchCore(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	startUri := d.MovedTo()
	if startUri == "" {
		startUri = d.uri
	}
	ctx = ctx.LogWithFields(logrus.Fields{"url": startUri})

	resp, err := d.fetcher.Get(ctx, startUri)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	d.lock.Lock()
	d.resolvedUri = resp.Url
	if resp.MovedTo != "" {
		d.movedTo = resp.MovedTo
	}
	d.lock.Unlock()

	if !resp.Success() {
		ctx.Log.Debugf("Got status %d from %s, no data", resp.StatusCode, resp.Url)
		return nil, nil
	}

	var data *m.EmbedData
	switch resp.ContentType {
	case "text/html", "application/xhtml+xml":
		html, err := resp.ReadText()
		if errors.Is(err, common.ErrPageTooLarge) {
			ctx.Log.Warn("Page too large to extract from: ", resp.Url)
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		data = p.ExtractHtml(html, resp.Url)
	default:
		data = p.ExtractFile(resp.Url, resp.ContentType, resp.Filename)
		if data == nil {
			ctx.Log.Debugf("Unsupported content type %q at %s", resp.ContentType, resp.Url)
			return nil, nil
		}
	}

	summarizeData(ctx, data)
	return data, nil
}
