package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/common/version"
)

var BuildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "embed_build_info",
	Help: "Always 1, labelled with the running build.",
}, []string{"version", "commit"})

func init() {
	prometheus.MustRegister(BuildInfo)
}

var listener atomic.Pointer[http.Server]

// Handler serves the Prometheus registry on /metrics.
func Handler() http.Handler {
	version.SetDefaults()
	BuildInfo.Reset()
	BuildInfo.With(prometheus.Labels{"version": version.Version, "commit": version.GitCommit}).Set(1)

	rtr := mux.NewRouter()
	rtr.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return rtr
}

// Init starts the metrics listener when enabled in the config.
func Init() {
	cfg := config.Get().Metrics
	if !cfg.Enabled {
		logrus.Info("Metrics disabled")
		return
	}

	address := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
	srv := &http.Server{Addr: address, Handler: Handler(), ReadHeaderTimeout: 10 * time.Second}
	listener.Store(srv)

	go func() {
		logrus.WithField("address", address).Info("Metrics listening at http://" + address + "/metrics")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()
}

func Reload() {
	Stop()
	Init()
}

func Stop() {
	srv := listener.Swap(nil)
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warn("Error stopping metrics listener: ", err)
	}
}
