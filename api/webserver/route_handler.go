package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sebest/xff"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/api"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/metrics"
)

type requestCounter struct {
	lastId uint64
}

func (c *requestCounter) GetNextId() string {
	return "REQ-" + strconv.FormatUint(atomic.AddUint64(&c.lastId, 1)-1, 10)
}

type handler struct {
	h          func(r *http.Request, ctx rcontext.RequestContext) interface{}
	action     string
	reqCounter *requestCounter
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var raddr string
	if config.Get().General.TrustAnyForward {
		raddr = r.Header.Get("X-Forwarded-For")
	} else {
		raddr = xff.GetRemoteAddr(r)
	}
	if raddr == "" {
		raddr = r.RemoteAddr
	}

	host, _, err := net.SplitHostPort(raddr)
	if err != nil {
		host = raddr
	}
	r.RemoteAddr = host

	requestId := h.reqCounter.GetNextId()
	contextLog := logrus.WithFields(logrus.Fields{
		"method":     r.Method,
		"host":       r.Host,
		"resource":   r.URL.Path,
		"url":        r.URL.Query().Get("url"),
		"requestId":  requestId,
		"remoteAddr": r.RemoteAddr,
		"userAgent":  r.UserAgent(),
	})
	contextLog.Info("Received request")

	// Send CORS and other basic headers
	w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Accept-Language")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Server", "embed-resolver")

	ctx := r.Context()
	ctx = context.WithValue(ctx, common.ContextRequestId, requestId)
	ctx = context.WithValue(ctx, common.ContextAction, h.action)
	rctx := rcontext.New(ctx, contextLog, config.Get().Resolver).WithRequest(r)
	r = r.WithContext(rctx)

	metrics.HttpRequests.With(prometheus.Labels{
		"action": h.action,
		"method": r.Method,
	}).Inc()

	res := h.h(r, rctx)
	if res == nil {
		res = &api.EmptyResponse{}
	}

	shouldCache := true
	if result, ok := res.(*api.DoNotCacheResponse); ok {
		shouldCache = false
		res = result.Payload
	}

	contextLog.Info(fmt.Sprintf("Replying with result: %T %+v", res, res))

	statusCode := http.StatusOK
	if result, ok := res.(*api.ErrorResponse); ok {
		shouldCache = false
		switch result.InternalCode {
		case common.ErrCodeNotFound:
			statusCode = http.StatusNotFound
		case common.ErrCodeBadRequest:
			statusCode = http.StatusBadRequest
		case common.ErrCodeMethodNotAllowed:
			statusCode = http.StatusMethodNotAllowed
		case common.ErrCodeFetchFailed, common.ErrCodeRedirectLoop:
			statusCode = http.StatusBadGateway
		default: // Treat as unknown (a generic server error)
			statusCode = http.StatusInternalServerError
		}
	}

	metrics.HttpResponses.With(prometheus.Labels{
		"action":     h.action,
		"method":     r.Method,
		"statusCode": strconv.Itoa(statusCode),
	}).Inc()

	// Order is important: Set headers before sending responses
	if shouldCache {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(res); err != nil {
		contextLog.Warn("Error writing response: ", err)
	}
}
