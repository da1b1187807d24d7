package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
	"golang.org/x/sync/singleflight"
)

type fetchFunc func(ctx rcontext.RequestContext) (*m.EmbedData, error)

// fetchOnce runs a fetch at most once and remembers its outcome (data, nil
// data, or error) for the lifetime of the owning metadata.
type fetchOnce struct {
	lock  sync.Mutex
	group singleflight.Group

	done bool
	data *m.EmbedData
	err  error
}

func (o *fetchOnce) seed(data *m.EmbedData) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.done = true
	o.data = data
	o.err = nil
}

func (o *fetchOnce) peek() (*m.EmbedData, bool) {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.data, o.done
}

// do returns the remembered result, or joins (starting if needed) the single
// in-flight fetch. The fetch itself is detached from ctx's cancellation and
// bounded by the configured timeout instead; ctx only controls how long this
// caller waits.
func (o *fetchOnce) do(ctx rcontext.RequestContext, url string, fn fetchFunc) (*m.EmbedData, error) {
	o.lock.Lock()
	if o.done {
		data, err := o.data, o.err
		o.lock.Unlock()
		return data, err
	}

	// Joining happens under the lock so a finished fetch is either recorded
	// (done) or still registered with the group, never neither.
	ch := o.group.DoChan(url, func() (interface{}, error) {
		var detached context.Context = ctx.Detached()
		var cancel context.CancelFunc
		if ctx.Config.TimeoutSeconds > 0 {
			detached, cancel = context.WithTimeout(detached, time.Duration(ctx.Config.TimeoutSeconds)*time.Second)
		} else {
			detached, cancel = context.WithCancel(detached)
		}
		defer cancel()

		data, err := fn(ctx.WithContext(detached))

		o.lock.Lock()
		o.done = true
		o.data = data
		o.err = err
		o.lock.Unlock()

		return data, err
	})
	o.lock.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		data, _ := res.Val.(*m.EmbedData)
		return data, nil
	case <-ctx.Done():
		return nil, &common.FetchError{Url: url, Err: ctx.Err()}
	}
}
