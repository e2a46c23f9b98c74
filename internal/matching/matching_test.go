package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/jobsearch"
	"github.com/spigell/skillbuddy/internal/profile"
	s "github.com/spigell/skillbuddy/internal/structured"
)

type stubSearcher struct {
	postings []jobsearch.Posting
	err      error
	queries  []jobsearch.Query
}

func (f *stubSearcher) Search(_ context.Context, q jobsearch.Query) ([]jobsearch.Posting, error) {
	f.queries = append(f.queries, q)
	return f.postings, f.err
}

type stubRequester struct {
	raw      string
	err      error
	requests []ai.Request
}

func (f *stubRequester) Complete(_ context.Context, req ai.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.raw, f.err
}

// stubRunner calls the tool with args, then answers with raw.
type stubRunner struct {
	args    map[string]any
	raw     string
	err     error
	skip    bool
	toolOut map[string]any
}

func (f *stubRunner) CompleteWithTool(ctx context.Context, _ ai.Request, tool ai.Tool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if !f.skip {
		out, err := tool.Call(ctx, f.args)
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		f.toolOut = out
	}
	return f.raw, nil
}

type stubStrategy struct {
	name    string
	matches []Match
	err     error
	calls   int
}

func (f *stubStrategy) Name() string { return f.name }

func (f *stubStrategy) Match(context.Context, Request) ([]Match, error) {
	f.calls++
	return f.matches, f.err
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Skills:  []string{"Go", "PostgreSQL"},
		Level:   "Senior",
		Summary: "Backend engineer",
		Experience: []profile.Experience{
			{Title: "Backend Engineer", Company: "Acme", Duration: "3 years"},
			{Title: "Intern"},
		},
	}
}

func matchesJSON(t *testing.T, wrap bool, scores ...float64) string {
	t.Helper()

	items := make([]map[string]any, 0, len(scores))
	for i, score := range scores {
		items = append(items, map[string]any{
			"posting": map[string]any{
				"title":           fmt.Sprintf("Job %d", i+1),
				"company_name":    "Acme",
				"location":        "Remote",
				"description":     "Build things",
				"apply_link":      "https://example.com",
				"detected_skills": []string{"Go"},
			},
			"match_score":    score,
			"missing_skills": []string{"Kafka"},
		})
	}

	var v any = items
	if wrap {
		v = map[string]any{"matches": items}
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestParseMatchesAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "object", raw: matchesJSON(t, true, 0.4, 0.9)},
		{name: "bare list", raw: matchesJSON(t, false, 0.4, 0.9)},
		{name: "fenced list", raw: "```json\n" + matchesJSON(t, false, 0.4, 0.9) + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := parseMatches(tt.raw)
			require.NoError(t, err)
			require.Len(t, matches, 2)
			assert.Equal(t, "Job 2", matches[0].Posting.Title)
			assert.InDelta(t, 0.9, matches[0].Score, 1e-9)
			assert.Equal(t, []string{"Kafka"}, matches[1].MissingSkills)
		})
	}
}

func TestParseMatchesRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage s.Stage
	}{
		{name: "score above one", raw: matchesJSON(t, true, 1.5), stage: s.StageValidate},
		{name: "negative score", raw: matchesJSON(t, false, -0.1), stage: s.StageValidate},
		{name: "missing matches", raw: `{"results": []}`, stage: s.StageDecode},
		{name: "object without matches", raw: `{}`, stage: s.StageDecode},
		{name: "untitled posting", raw: `[{"posting": {"title": ""}, "match_score": 0.5, "missing_skills": []}]`, stage: s.StageValidate},
		{name: "scalar", raw: `42`, stage: s.StageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMatches(tt.raw)
			var perr *s.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.stage, perr.Stage)
		})
	}
}

func TestParseMatchesEmptyList(t *testing.T) {
	matches, err := parseMatches(`{"matches": []}`)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
}

func TestDirectSkipsModelWithoutPostings(t *testing.T) {
	searcher := &stubSearcher{}
	requester := &stubRequester{}

	matches, err := NewDirect(requester, searcher, false, nil).Match(context.Background(), Request{
		Profile:    testProfile(),
		TargetRole: "Go developer",
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, requester.requests)
	require.Len(t, searcher.queries, 1)
	assert.Equal(t, defaultCount, searcher.queries[0].Count)
}

func TestDirectScoresPostings(t *testing.T) {
	searcher := &stubSearcher{postings: []jobsearch.Posting{{Title: "Job 1"}, {Title: "Job 2"}}}
	requester := &stubRequester{raw: matchesJSON(t, true, 0.2, 0.8)}

	matches, err := NewDirect(requester, searcher, true, nil).Match(context.Background(), Request{
		Profile:    testProfile(),
		TargetRole: "Go developer",
		Location:   "Berlin",
		Count:      2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Job 2", matches[0].Posting.Title)

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, jobsearch.Query{Text: "Go developer", Location: "Berlin", Count: 2, Fresh: true}, searcher.queries[0])

	require.Len(t, requester.requests, 1)
	prompt := requester.requests[0].Parts[0].Text
	assert.Contains(t, prompt, "Candidate skills: Go, PostgreSQL")
	assert.Contains(t, prompt, "Target role: Go developer")
	assert.Contains(t, prompt, `"title":"Job 1"`)
	assert.NotNil(t, requester.requests[0].Schema)
}

func TestDirectWrapsSearchFailure(t *testing.T) {
	searcher := &stubSearcher{err: fmt.Errorf("serp: %w", ai.ErrQuotaExhausted)}

	_, err := NewDirect(&stubRequester{}, searcher, false, nil).Match(context.Background(), Request{TargetRole: "Go"})
	require.ErrorIs(t, err, ai.ErrQuotaExhausted)
}

func TestAgentUsesToolArguments(t *testing.T) {
	searcher := &stubSearcher{postings: []jobsearch.Posting{{Title: "Job 1"}}}
	runner := &stubRunner{
		args: map[string]any{"query": "golang engineer", "location": "Remote", "num_results": "3"},
		raw:  matchesJSON(t, false, 0.7),
	}

	matches, err := NewAgent(runner, searcher, false, nil).Match(context.Background(), Request{
		Profile:    testProfile(),
		TargetRole: "Go developer",
		Location:   "Berlin",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, jobsearch.Query{Text: "golang engineer", Location: "Remote", Count: 3}, searcher.queries[0])
	assert.Equal(t, searcher.postings, runner.toolOut["jobs"])
}

func TestAgentFallsBackToRequestDefaults(t *testing.T) {
	searcher := &stubSearcher{}
	runner := &stubRunner{args: map[string]any{}, raw: `{"matches": []}`}

	_, err := NewAgent(runner, searcher, true, nil).Match(context.Background(), Request{
		TargetRole: "Go developer",
		Location:   "Berlin",
		Count:      4,
	})
	require.NoError(t, err)
	assert.Equal(t, jobsearch.Query{Text: "Go developer", Location: "Berlin", Count: 4, Fresh: true}, searcher.queries[0])
}

func TestAgentRequiresSearch(t *testing.T) {
	runner := &stubRunner{skip: true, raw: matchesJSON(t, true, 0.9)}

	_, err := NewAgent(runner, &stubSearcher{}, false, nil).Match(context.Background(), Request{TargetRole: "Go"})
	require.ErrorIs(t, err, ErrNoSearch)
}

func TestAgentPropagatesToolFailure(t *testing.T) {
	searcher := &stubSearcher{err: fmt.Errorf("serp: %w", ai.ErrQuotaExhausted)}
	runner := &stubRunner{args: map[string]any{"query": "go"}}

	_, err := NewAgent(runner, searcher, false, nil).Match(context.Background(), Request{TargetRole: "Go"})
	require.ErrorIs(t, err, ai.ErrQuotaExhausted)
}

func TestMatcherStopsAtFirstSuccess(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	failing := &stubStrategy{name: "agent", err: errors.New("tool loop failed")}
	working := &stubStrategy{name: "direct", matches: []Match{{Posting: jobsearch.Posting{Title: "Job"}, Score: 0.5}}}
	unused := &stubStrategy{name: "spare"}

	result, err := NewMatcher(zap.New(core), failing, working, unused).Match(context.Background(), Request{TargetRole: " Go "})
	require.NoError(t, err)
	assert.Equal(t, "direct", result.Strategy)
	assert.Len(t, result.Matches, 1)
	assert.Equal(t, 0, unused.calls)
	assert.Equal(t, 1, logs.FilterMessage("matching strategy failed").Len())
}

func TestMatcherJoinsErrors(t *testing.T) {
	first := &stubStrategy{name: "agent", err: errors.New("first failure")}
	second := &stubStrategy{name: "direct", err: fmt.Errorf("score: %w", ai.ErrBackendInternal)}

	_, err := NewMatcher(nil, first, second).Match(context.Background(), Request{TargetRole: "Go"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "agent: first failure"))
	assert.True(t, strings.Contains(err.Error(), "direct: score"))
	assert.ErrorIs(t, err, ai.ErrBackendInternal)
}

func TestMatcherStopsOnQuota(t *testing.T) {
	first := &stubStrategy{name: "agent", err: fmt.Errorf("tool search_jobs: %w", ai.ErrQuotaExhausted)}
	second := &stubStrategy{name: "direct"}

	_, err := NewMatcher(nil, first, second).Match(context.Background(), Request{TargetRole: "Go"})
	require.ErrorIs(t, err, ai.ErrQuotaExhausted)
	assert.Equal(t, 0, second.calls)
}

func TestMatcherRequiresRole(t *testing.T) {
	_, err := NewMatcher(nil, &stubStrategy{name: "direct"}).Match(context.Background(), Request{TargetRole: "  "})
	require.Error(t, err)
}

func TestRecommend(t *testing.T) {
	requester := &stubRequester{raw: `{
		"recommended_roles": ["Backend Engineer", "Platform Engineer"],
		"matching_companies": [{"company_type": "Fintech", "reason": "Go heavy", "example_companies": ["Stripe"]}],
		"keywords_to_add": ["gRPC"],
		"domain_fit": "Infrastructure and payments"
	}`}

	recs, err := NewRecommender(requester, nil).Recommend(context.Background(), testProfile(), "Go developer", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend Engineer", "Platform Engineer"}, recs.RecommendedRoles)
	assert.Equal(t, "Fintech", recs.MatchingCompanies[0].CompanyType)

	prompt := requester.requests[0].Parts[0].Text
	assert.Contains(t, prompt, "Preferred location: Flexible")
	assert.Contains(t, prompt, "- Backend Engineer at Acme (3 years)")
	assert.Contains(t, prompt, "- Intern (Duration not specified)")
}

func TestRecommendRejectsEmptyRoles(t *testing.T) {
	requester := &stubRequester{raw: `{"recommended_roles": [], "matching_companies": [], "keywords_to_add": [], "domain_fit": "x"}`}

	_, err := NewRecommender(requester, nil).Recommend(context.Background(), testProfile(), "Go", "Berlin")
	var perr *s.ParseError
	require.ErrorAs(t, err, &perr)
}
