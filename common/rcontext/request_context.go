package rcontext

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/config"
)

func Initial() RequestContext {
	return New(context.Background(), logrus.WithFields(logrus.Fields{"nocontext": true}), config.Get().Resolver)
}

func New(ctx context.Context, log *logrus.Entry, cfg config.ResolverConfig) RequestContext {
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  cfg,
		Request: nil,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log     *logrus.Entry         // er.logger
	Config  config.ResolverConfig // er.resolver_config
	Request *http.Request         // er.request
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, common.ContextLogger, c.Log)
	c.Context = context.WithValue(c.Context, common.ContextResolverConfig, c.Config)
	c.Context = context.WithValue(c.Context, common.ContextRequest, c.Request)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, common.ContextLogger, log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  c.Config,
		Request: c.Request,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

// WithContext swaps the underlying context, keeping the logger and config.
func (c RequestContext) WithContext(ctx context.Context) RequestContext {
	return RequestContext{
		Context: ctx,
		Log:     c.Log,
		Config:  c.Config,
		Request: c.Request,
	}
}

// Detached returns a copy which is not cancelled when this context is, for
// work shared between several callers.
func (c RequestContext) Detached() RequestContext {
	return c.WithContext(context.WithoutCancel(c.Context))
}

func (c RequestContext) WithRequest(r *http.Request) RequestContext {
	c.Request = r
	c.Context = context.WithValue(c.Context, common.ContextRequest, r)
	return c
}
