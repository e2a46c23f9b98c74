package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
)

type stubReply struct {
	text string
	err  error
}

type stubRequester struct {
	mu       sync.Mutex
	replies  []stubReply
	requests []ai.Request
}

func (s *stubRequester) reply(text string) *stubRequester {
	s.replies = append(s.replies, stubReply{text: text})
	return s
}

func (s *stubRequester) fail(err error) *stubRequester {
	s.replies = append(s.replies, stubReply{err: err})
	return s
}

func (s *stubRequester) Complete(ctx context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return "", errors.New("unexpected call")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
		Experience: []profile.Experience{{
			Title:      "Backend Engineer",
			Company:    "Acme",
			Highlights: []string{"Built billing", "Cut latency by 40%", "Mentored juniors"},
		}},
		Projects: []profile.Project{{Name: "job-radar", Description: "Job reply bot", Technologies: []string{"Go", "Gemini"}}},
		Level:    "Mid",
		Summary:  "Backend engineer focused on Go services.",
	}
}

var liveCategoryOrder = []Category{
	CategoryIntro, CategoryProject, CategoryProject, CategoryTechnical,
	CategoryTechnical, CategoryProblemSolving, CategoryHRCulture,
}

func liveQuestionsJSON(categories ...Category) string {
	if len(categories) == 0 {
		categories = liveCategoryOrder
	}
	items := make([]map[string]any, len(categories))
	for i, c := range categories {
		items[i] = map[string]any{
			"question_number": i + 1,
			"question":        "Live question " + string(rune('A'+i)),
			"category":        c,
		}
	}
	return mustJSON(map[string]any{"questions": items})
}

func standardQuestionsJSON(n int) string {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"question": "Standard question " + string(rune('A'+i)),
			"category": standardCategories[i%len(standardCategories)],
			"context":  "Relevant to their projects",
		}
	}
	return mustJSON(map[string]any{"questions": items})
}

func clarityJSON(needs bool, prompt string, feedback string) string {
	var p any
	if prompt != "" {
		p = prompt
	}
	return mustJSON(map[string]any{
		"is_clear":             !needs,
		"needs_clarification":  needs,
		"clarification_prompt": p,
		"brief_feedback":       feedback,
	})
}

func liveResultJSON(score int) string {
	return mustJSON(map[string]any{
		"interview_score":        score,
		"strengths_in_answering": []string{"Concrete examples"},
		"improvement_areas":      []string{"Structure"},
		"communication_score":    7,
		"weak_points":            []string{"System design"},
		"suggestions":            []string{"Practice STAR"},
	})
}

func standardResultJSON(evaluations int) string {
	evals := make([]map[string]any, evaluations)
	for i := range evals {
		evals[i] = map[string]any{
			"question_number": i + 1,
			"score":           6,
			"strengths":       []string{"Clear"},
			"improvements":    []string{fmt.Sprintf("Depth on question %d", i+1)},
			"missing_points":  []string{},
		}
	}
	return mustJSON(map[string]any{
		"overall_score":        6,
		"evaluations":          evals,
		"overall_strengths":    []string{"Hands-on"},
		"overall_improvements": []string{"Scalability"},
		"weak_topics":          []string{"Caching"},
		"soft_skills": map[string]any{
			"communication_clarity": 8,
			"structure":             6,
			"confidence":            7,
			"feedback":              "Confident delivery",
		},
	})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
