package metadata

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/u"
	"github.com/t2bot/embed-resolver/metrics"
)

// Metadata is a resolvable URL. Fetch performs network I/O at most once per
// instance; every caller receives the same result.
type Metadata interface {
	RequestedUri() string
	ResolvedUri() string
	// Data is the fetched or pre-seeded embed data, or nil.
	Data() *m.EmbedData
	Fetch(ctx rcontext.RequestContext) (*m.EmbedData, error)
}

const (
	outcomeSuccess = "success"
	outcomeAbsent  = "absent"
	outcomeError   = "error"
)

func recordFetch(provider string, start time.Time, data *m.EmbedData, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	} else if data == nil {
		outcome = outcomeAbsent
	}
	metrics.Fetches.With(prometheus.Labels{"provider": provider, "outcome": outcome}).Inc()
	metrics.FetchDuration.With(prometheus.Labels{"provider": provider}).Observe(time.Since(start).Seconds())
}

func summarizeData(ctx rcontext.RequestContext, data *m.EmbedData) {
	if data == nil {
		return
	}
	data.Title = u.Summarize(data.Title, ctx.Config.NumTitleWords, ctx.Config.MaxTitleLength)
	data.Description = u.Summarize(data.Description, ctx.Config.NumWords, ctx.Config.MaxLength)
}
