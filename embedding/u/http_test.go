package u

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/t2bot/embed-resolver/common"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/common/logging"
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/common/version"
)

func testConfig() config.ResolverConfig {
	cfg := config.NewDefaultResolverConfig()
	cfg.DisallowedNetworks = []string{}
	cfg.TimeoutSeconds = 5
	return cfg
}

func testContext(cfg config.ResolverConfig) rcontext.RequestContext {
	return rcontext.New(context.Background(), logging.Discard(), cfg)
}

func mustFetcher(t *testing.T, cfg config.ResolverConfig) *Fetcher {
	f, err := NewFetcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestGetPermanentRedirectSetsMovedTo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/old")
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, srv.URL+"/new", resp.Url)
	assert.Equal(t, srv.URL+"/new", resp.MovedTo)
	assert.Equal(t, "text/html", resp.ContentType)
}

func TestGetTemporaryRedirectKeepsMovedToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/c", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("done"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/a")
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()

	// only a permanent move on the first hop counts
	assert.Equal(t, "", resp.MovedTo)
	assert.Equal(t, srv.URL+"/c", resp.Url)
}

func TestGetRelativeLocation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dir/start", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "next")
		w.WriteHeader(http.StatusSeeOther)
	})
	mux.HandleFunc("/dir/next", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/dir/start")
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()
	assert.Equal(t, srv.URL+"/dir/next", resp.Url)

	text, err := resp.ReadText()
	assert.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGetRedirectLoop(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/a", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 4
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/a")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrRedirectLoop)
	assert.Equal(t, int32(cfg.MaxRedirects+1), atomic.LoadInt32(&hits))
}

func TestGetRedirectWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.False(t, resp.Success())
}

func TestGetNotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/missing")
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.Success())
}

func TestGetDeniesLoopbackByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not have reached the server")
	}))
	defer srv.Close()

	cfg := config.NewDefaultResolverConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrHostNotAllowed)

	var fetchErr *common.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, srv.URL, fetchErr.Url)
}

func TestGetTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.TimeoutSeconds = 1
	f := mustFetcher(t, cfg)

	start := time.Now()
	resp, err := f.Get(testContext(cfg), srv.URL)
	assert.Nil(t, resp)
	var fetchErr *common.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestGetSendsConfiguredHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, "%s|%s", r.UserAgent(), r.Header.Get("Accept-Language"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UserAgent = "test-agent"
	cfg.DefaultLanguage = "fr"
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()

	text, err := resp.ReadText()
	assert.NoError(t, err)
	assert.Equal(t, "test-agent|fr", text)
}

func TestGetDefaultsToBuildUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, r.UserAgent())
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UserAgent = ""
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()

	text, err := resp.ReadText()
	assert.NoError(t, err)
	assert.Equal(t, version.UserAgent(), text)
}

func TestClientDeniesDisallowedNetworks(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	f := mustFetcher(t, config.NewDefaultResolverConfig())
	resp, err := f.Client().Get(srv.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	assert.ErrorIs(t, err, common.ErrHostNotAllowed)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestClientCapsRedirects(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2
	f := mustFetcher(t, cfg)
	resp, err := f.Client().Get(srv.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	assert.ErrorIs(t, err, common.ErrRedirectLoop)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClientSetsUserAgent(t *testing.T) {
	agent := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent <- r.UserAgent()
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UserAgent = "test-agent"
	resp, err := mustFetcher(t, cfg).Client().Get(srv.URL)
	if assert.NoError(t, err) {
		_ = resp.Body.Close()
	}
	assert.Equal(t, "test-agent", <-agent)
}

func TestReadTextPageTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2048")
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxPageSizeBytes = 1024
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()

	_, err = resp.ReadText()
	assert.ErrorIs(t, err, common.ErrPageTooLarge)
}

func TestResponseFilenameFromContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "IMAGE/PNG")
		w.Header().Set("Content-Disposition", `attachment; filename="cat.png"`)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	cfg := testConfig()
	f := mustFetcher(t, cfg)
	resp, err := f.Get(testContext(cfg), srv.URL+"/download")
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Close()
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, "cat.png", resp.Filename)
}

func TestGetInvalidUrl(t *testing.T) {
	cfg := testConfig()
	f := mustFetcher(t, cfg)
	_, err := f.Get(testContext(cfg), "/relative/only")
	assert.ErrorIs(t, err, common.ErrInvalidUrl)
}
