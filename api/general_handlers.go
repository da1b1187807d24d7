package api

import (
	"net/http"

	"github.com/t2bot/embed-resolver/common/rcontext"
)

type HealthzResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}

func NotFoundHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return NotFoundError()
}

func MethodNotAllowedHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return MethodNotAllowed()
}

func EmptyResponseHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &EmptyResponse{}
}

func GetHealthz(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &DoNotCacheResponse{
		Payload: &HealthzResponse{
			OK:     true,
			Status: "Probably not dead",
		},
	}
}
