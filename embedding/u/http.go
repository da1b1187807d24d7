package u

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/common/version"
	"github.com/t2bot/embed-resolver/metrics"
	"golang.org/x/net/proxy"
)

type redirectKind int

const (
	redirectNone redirectKind = iota
	redirectTemporary
	redirectPermanent
)

func (k redirectKind) String() string {
	switch k {
	case redirectTemporary:
		return "temporary"
	case redirectPermanent:
		return "permanent"
	default:
		return "none"
	}
}

func getRedirectKind(statusCode int) redirectKind {
	switch statusCode {
	case http.StatusMovedPermanently, http.StatusPermanentRedirect:
		return redirectPermanent
	case http.StatusMultipleChoices, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		return redirectTemporary
	default:
		return redirectNone
	}
}

// Fetcher performs GET requests with redirects followed by hand, so that the
// network ACL applies to every hop and permanent moves can be recorded. One
// Fetcher (and its connection pool) is shared by all fetches.
type Fetcher struct {
	cfg    config.ResolverConfig
	acl    *networkAcl
	dialer *net.Dialer
	proxy  proxy.ContextDialer
	client *http.Client
}

func NewFetcher(cfg config.ResolverConfig) (*Fetcher, error) {
	acl, err := newNetworkAcl(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	f := &Fetcher{
		cfg: cfg,
		acl: acl,
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		},
	}

	if cfg.ProxyURL != "" {
		proxyUrl, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("error parsing proxy url: %w", err)
		}
		proxyDialer, err := proxy.FromURL(proxyUrl, f.dialer)
		if err != nil {
			return nil, fmt.Errorf("error creating proxy: %w", err)
		}
		contextDialer, ok := proxyDialer.(proxy.ContextDialer)
		if !ok {
			return nil, errors.New("failed proxy type assertion to ContextDialer")
		}
		f.proxy = contextDialer
	}

	tr := &http.Transport{
		DialContext:         f.dialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	if cfg.UnsafeCertificates {
		logrus.Warn("Ignoring any certificate errors while making requests")
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	f.client = &http.Client{
		Transport: tr,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f, nil
}

func (f *Fetcher) dialContext(ctx context.Context, network string, addr string) (net.Conn, error) {
	if network != "tcp" && network != "tcp4" && network != "tcp6" {
		return nil, errors.New("invalid network: expected tcp")
	}

	safeAddr, err := f.acl.safeAddress(ctx, addr)
	if err != nil {
		return nil, err
	}

	if f.proxy != nil {
		return f.proxy.DialContext(ctx, network, safeAddr)
	}
	return f.dialer.DialContext(ctx, network, safeAddr)
}

// Client is an http.Client for libraries which make their own requests. It
// shares the fetcher's transport (and so its ACL and proxy), gives up after
// the configured number of redirects and is bounded by the configured timeout.
func (f *Fetcher) Client() *http.Client {
	return &http.Client{
		Transport: &userAgentTransport{userAgent: f.cfg.UserAgent, next: f.client.Transport},
		Timeout:   time.Duration(f.cfg.TimeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.cfg.MaxRedirects {
				return fmt.Errorf("%w: gave up at %s after %d redirects", common.ErrRedirectLoop, req.URL.String(), len(via)-1)
			}
			metrics.Redirects.With(prometheus.Labels{"kind": getRedirectKind(req.Response.StatusCode).String()}).Inc()
			return nil
		},
	}
}

type userAgentTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

// Close releases idle connections held by the shared client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// Get fetches startUrl, following redirects until a non-redirect response is
// returned. The whole chain is bounded by the configured timeout. The caller
// must Close the returned response.
func (f *Fetcher) Get(ctx rcontext.RequestContext, startUrl string) (*Response, error) {
	current, err := url.Parse(startUrl)
	if err != nil || !current.IsAbs() {
		return nil, common.ErrInvalidUrl
	}

	var chainCtx context.Context
	var cancel context.CancelFunc
	if f.cfg.TimeoutSeconds > 0 {
		chainCtx, cancel = context.WithTimeout(ctx.Context, time.Duration(f.cfg.TimeoutSeconds)*time.Second)
	} else {
		chainCtx, cancel = context.WithCancel(ctx.Context)
	}

	language := ctx.Config.DefaultLanguage
	if language == "" {
		language = f.cfg.DefaultLanguage
	}

	movedTo := ""
	for hop := 0; ; hop++ {
		ctx.Log.Debug("Requesting ", current.String())
		resp, err := f.doGet(chainCtx, current, language)
		if err != nil {
			cancel()
			ctx.Log.Warn("Error fetching remote content: ", err)
			if !errors.Is(err, common.ErrHostNotAllowed) {
				sentry.CaptureException(err)
			}
			return nil, &common.FetchError{Url: current.String(), Err: err}
		}

		kind := getRedirectKind(resp.StatusCode)
		location := resp.Header.Get("Location")
		if kind == redirectNone || location == "" {
			return newResponse(resp, current, movedTo, f.cfg.MaxPageSizeBytes, cancel), nil
		}
		DumpAndCloseStream(resp.Body)

		next, err := current.Parse(location)
		if err != nil {
			cancel()
			return nil, &common.FetchError{Url: current.String(), Err: fmt.Errorf("invalid redirect location %q: %w", location, err)}
		}
		if hop >= f.cfg.MaxRedirects {
			cancel()
			ctx.Log.Warn("Giving up after ", hop, " redirects")
			return nil, fmt.Errorf("%w: gave up at %s after %d redirects", common.ErrRedirectLoop, next.String(), hop)
		}

		if kind == redirectPermanent && hop == 0 {
			movedTo = next.String()
		}
		metrics.Redirects.With(prometheus.Labels{"kind": kind.String()}).Inc()
		ctx.Log.Debugf("Following %s redirect (%d) to %s", kind, resp.StatusCode, next.String())
		current = next
	}
}

func (f *Fetcher) doGet(ctx context.Context, target *url.URL, language string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if language != "" {
		req.Header.Set("Accept-Language", language)
	}
	return f.client.Do(req)
}

// Response is the final, non-redirect response of a redirect chain.
type Response struct {
	Url            string
	MovedTo        string
	StatusCode     int
	ContentType    string
	RawContentType string
	Filename       string
	ContentLength  int64
	Body           io.ReadCloser

	maxBytes int64
	cancel   context.CancelFunc
}

func newResponse(resp *http.Response, finalUrl *url.URL, movedTo string, maxBytes int64, cancel context.CancelFunc) *Response {
	r := &Response{
		Url:            finalUrl.String(),
		MovedTo:        movedTo,
		StatusCode:     resp.StatusCode,
		RawContentType: resp.Header.Get("Content-Type"),
		ContentLength:  resp.ContentLength,
		Body:           resp.Body,
		maxBytes:       maxBytes,
		cancel:         cancel,
	}

	mediaType, _, err := mime.ParseMediaType(r.RawContentType)
	if err == nil {
		r.ContentType = strings.ToLower(mediaType)
	}

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		r.Filename = params["filename"]
	}

	return r
}

func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ReadText reads the body up to the configured page size and converts it to UTF-8.
func (r *Response) ReadText() (string, error) {
	if r.maxBytes > 0 && r.ContentLength > r.maxBytes {
		return "", common.ErrPageTooLarge
	}

	var reader io.Reader = r.Body
	if r.maxBytes > 0 {
		reader = io.LimitReader(r.Body, r.maxBytes)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", &common.FetchError{Url: r.Url, Err: err}
	}
	return DecodeText(raw, r.RawContentType), nil
}

func (r *Response) Close() {
	if r.Body != nil {
		_ = r.Body.Close()
	}
	if r.cancel != nil {
		r.cancel()
	}
}
