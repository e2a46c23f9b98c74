package interview

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
)

//go:embed prompts/live_questions.md
var liveQuestionsInstructions string

//go:embed prompts/standard_questions.md
var standardQuestionsInstructions string

// Generator produces the question set for a session.
type Generator struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewGenerator(requester ai.Requester, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{requester: requester, logger: logger}
}

// Generate returns exactly mode.QuestionCount() questions numbered from 1.
// Any other shape is rejected; nothing is truncated or padded.
func (g *Generator) Generate(ctx context.Context, p *profile.Profile, targetRole string, mode Mode) ([]Question, error) {
	var (
		questions []Question
		err       error
	)

	switch mode {
	case ModeLive:
		questions, err = g.generateLive(ctx, p, targetRole)
	case ModeStandard:
		questions, err = g.generateStandard(ctx, p, targetRole)
	default:
		err = fmt.Errorf("unknown interview mode %q", mode)
	}
	if err != nil {
		return nil, &GenerationError{Mode: mode, Err: err}
	}

	g.logger.Info("interview questions generated",
		zap.String("mode", string(mode)),
		zap.Int("count", len(questions)),
	)

	return questions, nil
}

func (g *Generator) generateLive(ctx context.Context, p *profile.Profile, targetRole string) ([]Question, error) {
	prompt := fmt.Sprintf(`Generate 7 live interview questions for this candidate.

Target Role: %s
Candidate Level: %s
Skills: %s

Projects:
%s

Summary: %s

Generate professional, specific questions following the required structure.`,
		targetRole, p.LevelOrDefault(), p.SkillList(0), p.ProjectDigest(0), summaryOf(p))

	raw, err := g.requester.Complete(ctx, ai.Request{
		Operation:    "generate_live_questions",
		Instructions: liveQuestionsInstructions,
		Schema:       liveQuestionsSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, err
	}

	set, err := liveQuestionsSchema.Parse(raw)
	if err != nil {
		return nil, err
	}

	questions := make([]Question, len(set.Questions))
	for i, q := range set.Questions {
		questions[i] = Question{Number: q.Number, Text: strings.TrimSpace(q.Question), Category: q.Category}
	}

	if err := checkLiveShape(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (g *Generator) generateStandard(ctx context.Context, p *profile.Profile, targetRole string) ([]Question, error) {
	prompt := fmt.Sprintf(`Generate 5 technical interview questions for this candidate.

Target Role: %s
Candidate Level: %s

Skills: %s

Projects:
%s

Experience:
%s

Generate specific, challenging questions that test their actual knowledge.`,
		targetRole, p.LevelOrDefault(), p.SkillList(0), p.ProjectDigest(0), experienceWithHighlights(p))

	raw, err := g.requester.Complete(ctx, ai.Request{
		Operation:    "generate_standard_questions",
		Instructions: standardQuestionsInstructions,
		Schema:       standardQuestionsSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, err
	}

	set, err := standardQuestionsSchema.Parse(raw)
	if err != nil {
		return nil, err
	}

	if want := ModeStandard.QuestionCount(); len(set.Questions) != want {
		return nil, &ValidationFailure{Reason: fmt.Sprintf("expected %d questions, got %d", want, len(set.Questions))}
	}

	questions := make([]Question, len(set.Questions))
	for i, q := range set.Questions {
		questions[i] = Question{Number: i + 1, Text: strings.TrimSpace(q.Question), Category: q.Category}
		if q.Context != nil {
			questions[i].Context = strings.TrimSpace(*q.Context)
		}
	}
	return questions, nil
}

func checkLiveShape(questions []Question) error {
	if want := ModeLive.QuestionCount(); len(questions) != want {
		return &ValidationFailure{Reason: fmt.Sprintf("expected %d questions, got %d", want, len(questions))}
	}

	for i, q := range questions {
		if q.Number != i+1 {
			return &ValidationFailure{Reason: fmt.Sprintf("question at position %d is numbered %d", i+1, q.Number)}
		}
	}

	if first := questions[0].Category; first != CategoryIntro {
		return &ValidationFailure{Reason: fmt.Sprintf("first question must be %s, got %s", CategoryIntro, first)}
	}
	if last := questions[len(questions)-1].Category; last != CategoryHRCulture {
		return &ValidationFailure{Reason: fmt.Sprintf("last question must be %s, got %s", CategoryHRCulture, last)}
	}

	return nil
}

func summaryOf(p *profile.Profile) string {
	if p == nil || strings.TrimSpace(p.Summary) == "" {
		return "Not provided"
	}
	return p.Summary
}

func experienceWithHighlights(p *profile.Profile) string {
	if p == nil || len(p.Experience) == 0 {
		return "No experience listed"
	}

	lines := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		company := e.Company
		if company == "" {
			company = "Unknown"
		}
		highlights := "No highlights"
		if len(e.Highlights) > 0 {
			top := e.Highlights
			if len(top) > 2 {
				top = top[:2]
			}
			highlights = strings.Join(top, ", ")
		}
		lines = append(lines, fmt.Sprintf("- %s at %s: %s", e.Title, company, highlights))
	}
	return strings.Join(lines, "\n")
}
