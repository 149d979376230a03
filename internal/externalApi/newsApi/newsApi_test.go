package newsApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi"
)

const everythingBody = `{"status":"ok","totalResults":7,"articles":[
{"source":{"name":"Reuters"},"title":"t1","url":"https://e.com/1","publishedAt":"2025-03-10T10:00:00Z"},
{"source":{"name":"BBC"},"title":"t3","url":"https://e.com/3","publishedAt":"2025-03-08T10:00:00Z"},
{"source":{"name":"FT"},"title":"t2","url":"https://e.com/2","publishedAt":"2025-03-09T10:00:00Z"},
{"source":{"name":"FT"},"title":"","url":"https://e.com/removed","publishedAt":"2025-03-09T09:00:00Z"},
{"source":{"name":"AP"},"title":"t4","url":"https://e.com/4","publishedAt":"2025-03-07T10:00:00Z"},
{"source":{"name":"AP"},"title":"t5","url":"https://e.com/5","publishedAt":"2025-03-06T10:00:00Z"},
{"source":{"name":"AP"},"title":"t6","url":"https://e.com/6","publishedAt":"2025-03-05T10:00:00Z"}
]}`

func newTestApi(t *testing.T, handler http.HandlerFunc) *NewsApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 2 * time.Second
	cfg.API.NewsApi.Url = srv.URL
	cfg.API.NewsApi.ApiKey = "secret"
	return New(cfg)
}

func TestSearch(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(everythingBody))
	})

	items, err := api.Search(context.Background(), "Fed interest rate cut", 5)
	require.NoError(t, err)

	assert.Equal(t, "/v2/everything", gotPath)
	assert.Equal(t, "Fed interest rate cut", gotQuery.Get("q"))
	assert.Equal(t, "en", gotQuery.Get("language"))
	assert.Equal(t, "publishedAt", gotQuery.Get("sortBy"))
	assert.Equal(t, "secret", gotQuery.Get("apiKey"))
	assert.Equal(t, "5", gotQuery.Get("pageSize"))

	require.Len(t, items, 5)
	titles := make([]string, 0, len(items))
	for i, item := range items {
		titles = append(titles, item.Title)
		if i > 0 {
			assert.False(t, item.PublishedAt.After(items[i-1].PublishedAt))
		}
	}
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, titles)
	assert.Equal(t, "https://e.com/1", items[0].Link)
	assert.Equal(t, "Reuters", items[0].Source)
}

func TestSearch_ProviderError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"You have made too many requests"}`))
	})

	_, err := api.Search(context.Background(), "Bank of England rate cut", 5)
	require.ErrorIs(t, err, externalApi.ErrBadResponse)
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestSearch_MalformedBody(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := api.Search(context.Background(), "x", 5)
	assert.ErrorIs(t, err, externalApi.ErrBadResponse)
}

func TestSearch_BadPublishedAtKeepsSection(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":3,"articles":[
{"source":{"name":"BBC"},"title":"undated","url":"https://e.com/u","publishedAt":""},
{"source":{"name":"FT"},"title":"garbled","url":"https://e.com/g","publishedAt":"yesterday"},
{"source":{"name":"Reuters"},"title":"dated","url":"https://e.com/d","publishedAt":"2025-03-10T10:00:00Z"}
]}`))
	})

	items, err := api.Search(context.Background(), "Bank of England rate cut", 5)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "dated", items[0].Title)
	assert.True(t, items[1].PublishedAt.IsZero())
	assert.True(t, items[2].PublishedAt.IsZero())
	assert.ElementsMatch(t, []string{"undated", "garbled"}, []string{items[1].Title, items[2].Title})
}
