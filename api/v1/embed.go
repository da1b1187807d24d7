package v1

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"github.com/t2bot/embed-resolver/api"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/providers"
)

var registry atomic.Pointer[providers.Registry]

// SetRegistry replaces the registry used to resolve embeds. Requests already
// in progress keep the one they started with.
func SetRegistry(r *providers.Registry) {
	registry.Store(r)
}

func GetEmbed(r *http.Request, rctx rcontext.RequestContext) interface{} {
	params := r.URL.Query()

	urlStr := params.Get("url")
	if urlStr == "" {
		return api.BadRequest("No url provided")
	}
	req, err := m.NewConsumerRequest(urlStr)
	if err != nil {
		return api.BadRequest("Invalid url")
	}

	if req.MaxWidth, err = parseSizeHint(params.Get("maxwidth")); err != nil {
		rctx.Log.Error("Error parsing maxwidth: ", err)
		return api.BadRequest("Invalid maxwidth")
	}
	if req.MaxHeight, err = parseSizeHint(params.Get("maxheight")); err != nil {
		rctx.Log.Error("Error parsing maxheight: ", err)
		return api.BadRequest("Invalid maxheight")
	}

	if r.Header.Get("Accept-Language") != "" {
		rctx.Config.DefaultLanguage = r.Header.Get("Accept-Language")
	}

	reg := registry.Load()
	if reg == nil {
		return api.InternalServerError("Resolver not ready")
	}

	md := reg.ResolveRequest(req)
	data, err := md.Fetch(rctx)
	if err != nil {
		if errors.Is(err, common.ErrRedirectLoop) {
			return api.RedirectLoop()
		} else if errors.Is(err, common.ErrHostNotFound) {
			return api.NotFoundError()
		} else if errors.Is(err, common.ErrInvalidHost) || errors.Is(err, common.ErrHostNotAllowed) {
			return api.BadRequest(err.Error())
		}

		var fetchErr *common.FetchError
		if errors.As(err, &fetchErr) {
			return api.FetchFailed("Error fetching url")
		}
		sentry.CaptureException(err)
		return api.InternalServerError("Unexpected Error")
	}
	if data == nil {
		return api.NotFoundError()
	}

	return data
}

func parseSizeHint(val string) (int, error) {
	if val == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.New("size hint must not be negative")
	}
	return i, nil
}
