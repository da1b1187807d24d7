package m

import (
	"net/url"
	"strings"

	"github.com/t2bot/embed-resolver/common"
)

// ConsumerRequest is a caller's request to resolve a URL, with optional size
// hints which only some providers use.
type ConsumerRequest struct {
	Url       *url.URL
	MaxWidth  int
	MaxHeight int
}

func NewConsumerRequest(rawUrl string) (*ConsumerRequest, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawUrl))
	if err != nil {
		return nil, common.ErrInvalidUrl
	}
	if !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, common.ErrInvalidUrl
	}
	if parsed.Hostname() == "" {
		return nil, common.ErrInvalidUrl
	}
	return &ConsumerRequest{Url: parsed}, nil
}

// Host is the lower-cased host name of the request, without the port.
func (r *ConsumerRequest) Host() string {
	return strings.ToLower(r.Url.Hostname())
}

func (r *ConsumerRequest) String() string {
	return r.Url.String()
}
