package providers

import (
	"regexp"

	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/metadata"
)

var imgurRegex = regexp.MustCompile(`^https?://(?:www\.)?imgur\.com/([a-zA-Z0-9]+)$`)

type ImgurProvider struct{}

func NewImgurProvider() *ImgurProvider {
	return &ImgurProvider{}
}

func (p *ImgurProvider) Name() string {
	return "imgur"
}

func (p *ImgurProvider) SupportedHostNames() []string {
	return []string{"imgur.com", "www.imgur.com"}
}

func (p *ImgurProvider) SupportsAnyHost() bool {
	return false
}

func (p *ImgurProvider) CanHandle(req *m.ConsumerRequest) bool {
	return imgurRegex.MatchString(req.String())
}

func (p *ImgurProvider) GetMetadata(req *m.ConsumerRequest) metadata.Metadata {
	matches := imgurRegex.FindStringSubmatch(req.String())
	if matches == nil {
		return nil
	}
	return metadata.NewImgurMetadata(req.String(), matches[1])
}
