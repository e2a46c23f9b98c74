package matching

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
	s "github.com/spigell/skillbuddy/internal/structured"
)

//go:embed prompts/agent.md
var agentInstructions string

//go:embed prompts/direct.md
var directInstructions string

const (
	searchToolName = "search_jobs"
	maxToolResults = 50
)

// ErrNoSearch is returned when the model answers without calling the search tool.
var ErrNoSearch = errors.New("model answered without searching")

// Strategy is one way of producing matches.
type Strategy interface {
	Name() string
	Match(ctx context.Context, req Request) ([]Match, error)
}

type searchArgs struct {
	Query      string `mapstructure:"query"`
	Location   string `mapstructure:"location"`
	NumResults int    `mapstructure:"num_results"`
}

type agentStrategy struct {
	runner   ai.ToolRunner
	searcher Searcher
	fresh    bool
	logger   *zap.Logger
}

// NewAgent lets the model drive the search through a search_jobs tool.
func NewAgent(runner ai.ToolRunner, searcher Searcher, fresh bool, logger *zap.Logger) Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &agentStrategy{runner: runner, searcher: searcher, fresh: fresh, logger: logger}
}

func (a *agentStrategy) Name() string { return "agent" }

func (a *agentStrategy) Match(ctx context.Context, req Request) ([]Match, error) {
	searches := 0
	defaults := req.query(a.fresh)

	tool := ai.Tool{
		Name:        searchToolName,
		Description: "Search current job postings. Returns a list of postings with title, company, location, description, apply link and detected skills.",
		Parameters: s.Object(map[string]*s.Def{
			"query":       s.String("Job title or keywords"),
			"location":    s.String("City, country or 'Remote'. Empty for anywhere"),
			"num_results": s.Integer("How many postings to return", 1, maxToolResults),
		}, "query"),
		Call: func(ctx context.Context, raw map[string]any) (map[string]any, error) {
			var args searchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", searchToolName, err)
			}

			q := defaults
			if v := strings.TrimSpace(args.Query); v != "" {
				q.Text = v
			}
			if v := strings.TrimSpace(args.Location); v != "" {
				q.Location = v
			}
			if args.NumResults > 0 {
				q.Count = min(args.NumResults, maxToolResults)
			}

			postings, err := a.searcher.Search(ctx, q)
			if err != nil {
				return nil, err
			}
			searches++

			a.logger.Debug("search tool called",
				zap.String("query", q.Text),
				zap.String("location", q.Location),
				zap.Int("postings", len(postings)),
			)
			return map[string]any{"jobs": postings}, nil
		},
	}

	raw, err := a.runner.CompleteWithTool(ctx, ai.Request{
		Operation:    "match_jobs_agent",
		Instructions: agentInstructions,
		Schema:       matchSetSchema.Definition,
		Parts:        []ai.Part{ai.Text(candidatePrompt(req))},
	}, tool)
	if err != nil {
		return nil, err
	}
	if searches == 0 {
		return nil, ErrNoSearch
	}

	return parseMatches(raw)
}

func decodeArgs(raw map[string]any, target *searchArgs) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

type directStrategy struct {
	requester ai.Requester
	searcher  Searcher
	fresh     bool
	logger    *zap.Logger
}

// NewDirect searches first and asks the model to score the results in one request.
func NewDirect(requester ai.Requester, searcher Searcher, fresh bool, logger *zap.Logger) Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &directStrategy{requester: requester, searcher: searcher, fresh: fresh, logger: logger}
}

func (d *directStrategy) Name() string { return "direct" }

func (d *directStrategy) Match(ctx context.Context, req Request) ([]Match, error) {
	postings, err := d.searcher.Search(ctx, req.query(d.fresh))
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	if len(postings) == 0 {
		d.logger.Info("no postings found, nothing to score", zap.String("role", req.TargetRole))
		return []Match{}, nil
	}

	encoded, err := json.Marshal(postings)
	if err != nil {
		return nil, err
	}

	prompt := candidatePrompt(req) + "\nJob postings:\n" + string(encoded)
	raw, err := d.requester.Complete(ctx, ai.Request{
		Operation:    "match_jobs_direct",
		Instructions: directInstructions,
		Schema:       matchSetSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, err
	}

	return parseMatches(raw)
}

func candidatePrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate skills: %s\n", req.Profile.SkillList(0))
	fmt.Fprintf(&b, "Candidate level: %s\n", req.Profile.LevelOrDefault())
	fmt.Fprintf(&b, "Candidate summary: %s\n", summaryOf(req.Profile))
	fmt.Fprintf(&b, "Target role: %s\n", req.TargetRole)
	if req.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.Location)
	}
	fmt.Fprintf(&b, "Number of postings: %d\n", req.query(false).Count)
	return b.String()
}

func summaryOf(p *profile.Profile) string {
	if p == nil || strings.TrimSpace(p.Summary) == "" {
		return "Not provided"
	}
	return p.Summary
}
