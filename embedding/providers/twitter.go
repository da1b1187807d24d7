package providers

import (
	"regexp"

	"github.com/dyatlov/go-oembed/oembed"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
	"github.com/t2bot/embed-resolver/embedding/u"
)

var tweetRegex = regexp.MustCompile(`^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/([A-Za-z0-9_]+)/status(?:es)?/([0-9]+)`)

// TwitterProvider resolves individual tweets through the Twitter entry of
// an oEmbed provider list, including x.com and mobile links.
type TwitterProvider struct {
	list    *oembed.Oembed
	fetcher *u.Fetcher
}

func NewTwitterProvider(list *oembed.Oembed, fetcher *u.Fetcher) *TwitterProvider {
	return &TwitterProvider{list: list, fetcher: fetcher}
}

func (p *TwitterProvider) Name() string {
	return "twitter"
}

func (p *TwitterProvider) SupportedHostNames() []string {
	return []string{"twitter.com", "www.twitter.com", "mobile.twitter.com", "x.com"}
}

func (p *TwitterProvider) SupportsAnyHost() bool {
	return false
}

func (p *TwitterProvider) CanHandle(req *m.ConsumerRequest) bool {
	return p.item(req) != nil
}

func (p *TwitterProvider) GetMetadata(req *m.ConsumerRequest) metadata.Metadata {
	item := p.item(req)
	if item == nil {
		return nil
	}
	matches := tweetRegex.FindStringSubmatch(req.String())
	return metadata.NewOEmbedMetadata(p.fetcher, item, p.Name(), req, matches[2])
}

// item finds the oEmbed endpoint using the twitter.com form of the tweet's URL.
func (p *TwitterProvider) item(req *m.ConsumerRequest) *oembed.Item {
	matches := tweetRegex.FindStringSubmatch(req.String())
	if matches == nil {
		return nil
	}
	return p.list.FindItem("https://twitter.com/" + matches[1] + "/status/" + matches[2])
}
