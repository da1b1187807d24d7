package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/t2bot/embed-resolver/api"
	v1 "github.com/t2bot/embed-resolver/api/v1"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/embedding/m"
	"github.com/t2bot/embed-resolver/embedding/providers"
	"github.com/t2bot/embed-resolver/embedding/u"
)

func setup(t *testing.T) (*httptest.Server, *httptest.Server) {
	cfg := config.NewDefaultMainConfig()
	cfg.Resolver.DisallowedNetworks = []string{}
	cfg.Resolver.MaxRedirects = 3
	config.SetForTesting(cfg)

	fetcher, err := u.NewFetcher(cfg.Resolver)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(fetcher.Close)
	registry, err := providers.NewDefaultRegistry(fetcher)
	if err != nil {
		t.Fatal(err)
	}
	v1.SetRegistry(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Hello</title><meta property="og:site_name" content="Site"></head></html>`))
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	target := httptest.NewServer(mux)
	t.Cleanup(target.Close)

	resolver := httptest.NewServer(buildRoutes())
	t.Cleanup(resolver.Close)
	return resolver, target
}

func getEmbed(t *testing.T, resolver *httptest.Server, rawUrl string) *http.Response {
	resp, err := http.Get(resolver.URL + "/api/v1/embed?url=" + url.QueryEscape(rawUrl))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestEmbedEndpoint(t *testing.T) {
	resolver, target := setup(t)

	resp := getEmbed(t, resolver, target.URL+"/page")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	data := &m.EmbedData{}
	if assert.NoError(t, json.NewDecoder(resp.Body).Decode(data)) {
		assert.Equal(t, target.URL+"/page", data.Url)
		assert.Equal(t, "Hello", data.Title)
		assert.Equal(t, "Site", data.ProviderName)
	}
}

func TestEmbedEndpointErrors(t *testing.T) {
	resolver, target := setup(t)

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{name: "missing page", url: target.URL + "/missing", status: http.StatusNotFound, code: "M_NOT_FOUND"},
		{name: "redirect loop", url: target.URL + "/loop", status: http.StatusBadGateway, code: "M_REDIRECT_LOOP"},
		{name: "invalid url", url: "ftp://example.org/file", status: http.StatusBadRequest, code: "M_BAD_REQUEST"},
		{name: "no url", url: "", status: http.StatusBadRequest, code: "M_BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := getEmbed(t, resolver, tt.url)
			assert.Equal(t, tt.status, resp.StatusCode)

			errRes := &api.ErrorResponse{}
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(errRes)) {
				assert.Equal(t, tt.code, errRes.InternalCode)
			}
		})
	}
}

func TestEmbedEndpointInvalidSizeHint(t *testing.T) {
	resolver, target := setup(t)

	resp, err := http.Get(resolver.URL + "/api/v1/embed?maxwidth=wide&url=" + url.QueryEscape(target.URL+"/page"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthzAndUnknownRoutes(t *testing.T) {
	resolver, _ := setup(t)

	resp, err := http.Get(resolver.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	health := &api.HealthzResponse{}
	if assert.NoError(t, json.NewDecoder(resp.Body).Decode(health)) {
		assert.True(t, health.OK)
	}

	resp2, err := http.Get(resolver.URL + "/nothing/here")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)

	resp3, err := http.Post(resolver.URL+"/api/v1/embed", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
}
