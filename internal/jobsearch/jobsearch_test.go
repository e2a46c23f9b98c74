package jobsearch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/spigell/skillbuddy/internal/ai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func jobsPayload(jobs ...map[string]any) map[string]any {
	return map[string]any{"jobs_results": jobs}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	cfg.APIKey = "secret-key"
	cfg.Endpoint = server.URL

	client, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	client.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "}, nil)
	require.Error(t, err)
}

func TestSearchSendsQueryParameters(t *testing.T) {
	var got atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query())
		writeJSON(t, w, http.StatusOK, jobsPayload())
	}, Config{})

	_, err := client.Search(context.Background(), Query{Text: " golang developer ", Location: "Berlin"})
	require.NoError(t, err)

	params := got.Load().(url.Values)
	assert.Equal(t, []string{"google_jobs"}, params["engine"])
	assert.Equal(t, []string{"golang developer"}, params["q"])
	assert.Equal(t, []string{"Berlin"}, params["location"])
	assert.Equal(t, []string{"secret-key"}, params["api_key"])
	assert.Equal(t, []string{"json"}, params["output"])
	assert.NotContains(t, params, "Count")
}

func TestSearchOmitsEmptyLocation(t *testing.T) {
	var got atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query())
		writeJSON(t, w, http.StatusOK, jobsPayload())
	}, Config{})

	_, err := client.Search(context.Background(), Query{Text: "go"})
	require.NoError(t, err)
	assert.NotContains(t, got.Load().(url.Values), "location")
}

func TestSearchSimplifiesPostings(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, jobsPayload(
			map[string]any{
				"title":        "Go Engineer",
				"company_name": "Acme",
				"location":     "Remote",
				"snippet":      "Build services",
				"serpapi_link": "https://serpapi.example/job",
				"detected_extensions": map[string]any{
					"skills":        []string{"Go", "Kubernetes"},
					"posted_at":     "2 days ago",
					"schedule_type": "Full-time",
				},
			},
			map[string]any{
				"title":       "Backend Developer",
				"description": "APIs",
				"snippet":     "ignored",
				"apply_link":  "https://apply.example",
			},
			map[string]any{
				"title":         "SRE",
				"apply_options": []map[string]any{{"title": "LinkedIn", "link": "https://linkedin.example"}},
			},
		))
	}, Config{})

	postings, err := client.Search(context.Background(), Query{Text: "go"})
	require.NoError(t, err)
	require.Len(t, postings, 3)

	assert.Equal(t, Posting{
		Title:          "Go Engineer",
		CompanyName:    "Acme",
		Location:       "Remote",
		Description:    "Build services",
		ApplyLink:      "https://serpapi.example/job",
		DetectedSkills: []string{"Go", "Kubernetes"},
	}, postings[0])
	assert.Equal(t, "APIs", postings[1].Description)
	assert.Equal(t, "https://apply.example", postings[1].ApplyLink)
	assert.Empty(t, postings[1].DetectedSkills)
	assert.Equal(t, "https://linkedin.example", postings[2].ApplyLink)
}

func TestSearchTrimsToCount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, jobsPayload(
			map[string]any{"title": "a"},
			map[string]any{"title": "b"},
			map[string]any{"title": "c"},
		))
	}, Config{})

	postings, err := client.Search(context.Background(), Query{Text: "go", Count: 2})
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "b", postings[1].Title)
}

func TestSearchServesCacheUnlessFresh(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, jobsPayload(map[string]any{"title": "Go Engineer"}))
	}, Config{Quota: 10})

	ctx := context.Background()
	first, err := client.Search(ctx, Query{Text: "go"})
	require.NoError(t, err)

	first[0].Title = "mutated"

	second, err := client.Search(ctx, Query{Text: "go"})
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", second[0].Title)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 9, client.Remaining())

	_, err = client.Search(ctx, Query{Text: "go", Fresh: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 8, client.Remaining())

	_, err = client.Search(ctx, Query{Text: "go", Location: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchStopsWhenQuotaExhausted(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, jobsPayload())
	}, Config{Quota: 1})

	ctx := context.Background()
	_, err := client.Search(ctx, Query{Text: "go"})
	require.NoError(t, err)

	_, err = client.Search(ctx, Query{Text: "rust"})
	require.ErrorIs(t, err, ai.ErrQuotaExhausted)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, client.Remaining())
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		writeJSON(t, w, http.StatusOK, jobsPayload(map[string]any{"title": "Go Engineer"}))
	}, Config{MaxRetries: 2, Quota: 10})

	postings, err := client.Search(context.Background(), Query{Text: "go"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 7, client.Remaining())
}

func TestSearchGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}, Config{MaxRetries: 1})

	_, err := client.Search(context.Background(), Query{Text: "go"})
	require.ErrorIs(t, err, ai.ErrBackendInternal)
	assert.Equal(t, ai.KindBackend, ai.Classify(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchDoesNotRetryRateLimit(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}, Config{MaxRetries: 3})

	_, err := client.Search(context.Background(), Query{Text: "go"})
	require.ErrorIs(t, err, ai.ErrQuotaExhausted)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchTimesOut(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}, Config{Timeout: 50 * time.Millisecond, MaxRetries: 0})
	defer close(release)

	_, err := client.Search(context.Background(), Query{Text: "go"})
	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, errors.Is(err, ai.ErrBackendInternal))
}

func TestSearchSharedFetchSurvivesCallerCancel(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		writeJSON(t, w, http.StatusOK, jobsPayload(map[string]any{"title": "Go Engineer"}))
	}, Config{Timeout: 5 * time.Second, MaxRetries: 0})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Search(ctx, Query{Text: "go"})
		done <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(release)

	postings, err := client.Search(context.Background(), Query{Text: "go"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Go Engineer", postings[0].Title)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchTreatsNoResultsAsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"error": "Google hasn't returned any results for this query.",
		})
	}, Config{})

	postings, err := client.Search(context.Background(), Query{Text: "cobol wizard"})
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestSearchReportsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"error": "Invalid API key."})
	}, Config{})

	_, err := client.Search(context.Background(), Query{Text: "go"})
	require.ErrorContains(t, err, "Invalid API key.")
	assert.Equal(t, ai.KindOther, ai.Classify(err))
}

func TestSearchDecodesGzip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		gz := gzip.NewWriter(w)
		require.NoError(t, json.NewEncoder(gz).Encode(jobsPayload(map[string]any{"title": "Zipped"})))
		require.NoError(t, gz.Close())
	}, Config{})

	postings, err := client.Search(context.Background(), Query{Text: "go"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Zipped", postings[0].Title)
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	}, Config{})

	_, err := client.Search(context.Background(), Query{Text: "   "})
	require.Error(t, err)
}

func TestResultCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newResultCache(time.Hour, 2)

	cache.put("a", []Posting{{Title: "a"}})
	cache.put("b", []Posting{{Title: "b"}})
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", []Posting{{Title: "c"}})
	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
}

func TestResultCacheExpires(t *testing.T) {
	cache := newResultCache(20*time.Millisecond, 2)
	cache.put("a", []Posting{{Title: "a"}})

	_, ok := cache.get("a")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := cache.get("a")
		return !ok
	}, time.Second, 10*time.Millisecond, "expired entry should be dropped")
}

func TestResultCacheCopiesPostings(t *testing.T) {
	cache := newResultCache(time.Hour, 2)
	stored := []Posting{{Title: "a", DetectedSkills: []string{"Go"}}}
	cache.put("a", stored)
	stored[0].DetectedSkills[0] = "Rust"

	got, ok := cache.get("a")
	require.True(t, ok)
	got[0].Title = "mutated"

	again, _ := cache.get("a")
	assert.Equal(t, "a", again[0].Title)
	assert.Equal(t, []string{"Go"}, again[0].DetectedSkills)
}

func TestPostingApplyLinkPrecedence(t *testing.T) {
	option := []applyOption{{Link: "https://option.example"}}
	tests := []struct {
		name string
		job  rawJob
		want string
	}{
		{
			name: "apply option first",
			job:  rawJob{ApplyOptions: option, ApplyLink: "https://apply.example", ShareLink: "https://share.example", SerpAPILink: "https://serp.example"},
			want: "https://option.example",
		},
		{
			name: "apply link next",
			job:  rawJob{ApplyLink: "https://apply.example", ShareLink: "https://share.example", SerpAPILink: "https://serp.example"},
			want: "https://apply.example",
		},
		{
			name: "share link before serpapi link",
			job:  rawJob{ShareLink: "https://share.example", SerpAPILink: "https://serp.example"},
			want: "https://share.example",
		},
		{
			name: "serpapi link last",
			job:  rawJob{SerpAPILink: "https://serp.example"},
			want: "https://serp.example",
		},
		{
			name: "blank option link is skipped",
			job:  rawJob{ApplyOptions: []applyOption{{Link: ""}}, SerpAPILink: "https://serp.example"},
			want: "https://serp.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.posting().ApplyLink)
		})
	}
}
