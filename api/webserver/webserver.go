package webserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/api"
	v1 "github.com/t2bot/embed-resolver/api/v1"
	"github.com/t2bot/embed-resolver/common/config"
)

type webServer struct {
	srv    *http.Server
	reload atomic.Bool
}

var current *webServer
var waitGroup = &sync.WaitGroup{}

func buildRoutes() http.Handler {
	rtr := mux.NewRouter()
	counter := &requestCounter{}

	optionsHandler := handler{api.EmptyResponseHandler, "options_request", counter}
	embedHandler := handler{v1.GetEmbed, "embed", counter}
	healthzHandler := handler{api.GetHealthz, "healthz", counter}

	routes := map[string]handler{
		"/api/v1/embed": embedHandler,
	}
	for routePath, route := range routes {
		logrus.Debug("Registering route: GET " + routePath)
		rtr.Handle(routePath, route).Methods("GET")
		rtr.Handle(routePath, optionsHandler).Methods("OPTIONS")

		// Trailing slashes should match too
		rtr.Handle(routePath+"/", route).Methods("GET")
		rtr.Handle(routePath+"/", optionsHandler).Methods("OPTIONS")
	}

	rtr.Handle("/healthz", healthzHandler).Methods("GET", "HEAD")

	rtr.NotFoundHandler = handler{api.NotFoundHandler, "not_found", counter}
	rtr.MethodNotAllowedHandler = handler{api.MethodNotAllowedHandler, "method_not_allowed", counter}

	return rtr
}

func Init() *sync.WaitGroup {
	waitGroup.Add(1)
	start()
	return waitGroup
}

func start() {
	address := net.JoinHostPort(config.Get().General.BindAddress, strconv.Itoa(config.Get().General.Port))

	// Note: we bind Sentry here to ensure we capture *everything*
	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	ws := &webServer{srv: &http.Server{Addr: address, Handler: sentryHandler.Handle(buildRoutes())}}
	current = ws

	go func() {
		//goland:noinspection HttpUrlsUsage
		logrus.WithField("address", address).Info("Started up. Listening at http://" + address)
		if err := ws.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			logrus.Fatal(err)
		}

		// Only notify the main thread that we're done if we're actually done
		if !ws.reload.Load() {
			waitGroup.Done()
		}
	}()
}

func Reload() {
	if current != nil {
		current.reload.Store(true)
	}

	// Stop the server first, then start it again with the new config
	Stop()
	start()
}

func Stop() {
	if current != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := current.srv.Shutdown(ctx); err != nil {
			panic(err)
		}
	}
}
