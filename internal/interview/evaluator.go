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

//go:embed prompts/live_evaluation.md
var liveEvaluationInstructions string

//go:embed prompts/standard_evaluation.md
var standardEvaluationInstructions string

// Evaluation is the final assessment of a finished interview. Scores use a 1-10 scale.
type Evaluation struct {
	OverallScore       int      `json:"overall_score"`
	Strengths          []string `json:"strengths"`
	ImprovementAreas   []string `json:"improvement_areas"`
	CommunicationScore int      `json:"communication_score"`
	WeakTopics         []string `json:"weak_topics"`
	Suggestions        []string `json:"suggestions"`

	// Answers and SoftSkills are only filled for standard interviews.
	Answers    []AnswerEvaluation `json:"answers,omitempty"`
	SoftSkills *SoftSkills        `json:"soft_skills,omitempty"`
}

// Evaluator scores a finished question and answer set. It never touches session state.
type Evaluator struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewEvaluator(requester ai.Requester, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{requester: requester, logger: logger}
}

// Evaluate returns an EvaluationError on any failure.
func (e *Evaluator) Evaluate(ctx context.Context, mode Mode, questions []Question, answers []Answer, p *profile.Profile) (*Evaluation, error) {
	if len(questions) == 0 || len(questions) != len(answers) {
		return nil, &EvaluationError{Mode: mode, Err: fmt.Errorf("%w: %d questions, %d answers", ErrAnswerMismatch, len(questions), len(answers))}
	}

	var (
		result *Evaluation
		err    error
	)
	switch mode {
	case ModeLive:
		result, err = e.evaluateLive(ctx, questions, answers, p)
	case ModeStandard:
		result, err = e.evaluateStandard(ctx, questions, answers, p)
	default:
		err = fmt.Errorf("unknown interview mode %q", mode)
	}
	if err != nil {
		return nil, &EvaluationError{Mode: mode, Err: err}
	}

	e.logger.Info("interview evaluated",
		zap.String("mode", string(mode)),
		zap.Int("overall_score", result.OverallScore),
		zap.Int("communication_score", result.CommunicationScore),
	)

	return result, nil
}

func (e *Evaluator) evaluateLive(ctx context.Context, questions []Question, answers []Answer, p *profile.Profile) (*Evaluation, error) {
	pairs := make([]string, len(questions))
	for i, q := range questions {
		pairs[i] = fmt.Sprintf("Q%d (%s): %s\nAnswer: %s", q.Number, q.Category, q.Text, answers[i].Text)
	}

	prompt := fmt.Sprintf(`Evaluate this complete live interview.

Candidate Profile:
- Level: %s
- Skills: %s

Interview Transcript:
%s

Provide comprehensive evaluation.`, p.LevelOrDefault(), p.SkillList(0), strings.Join(pairs, "\n\n"))

	raw, err := e.requester.Complete(ctx, ai.Request{
		Operation:    "evaluate_live_interview",
		Instructions: liveEvaluationInstructions,
		Schema:       liveResultSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, err
	}

	res, err := liveResultSchema.Parse(raw)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		OverallScore:       res.InterviewScore,
		Strengths:          res.StrengthsInAnswering,
		ImprovementAreas:   res.ImprovementAreas,
		CommunicationScore: res.CommunicationScore,
		WeakTopics:         res.WeakPoints,
		Suggestions:        res.Suggestions,
	}, nil
}

func (e *Evaluator) evaluateStandard(ctx context.Context, questions []Question, answers []Answer, p *profile.Profile) (*Evaluation, error) {
	pairs := make([]string, len(questions))
	for i, q := range questions {
		pairs[i] = fmt.Sprintf("Question %d (%s):\n%s\n\nAnswer %d:\n%s", i+1, q.Category, q.Text, i+1, answers[i].Text)
	}

	prompt := fmt.Sprintf(`Evaluate these interview responses.

Candidate Skills: %s
Candidate Level: %s

%s

Provide detailed evaluation with scores, strengths, improvements, and soft skills assessment.`,
		p.SkillList(0), p.LevelOrDefault(), strings.Join(pairs, "\n\n"))

	raw, err := e.requester.Complete(ctx, ai.Request{
		Operation:    "evaluate_standard_interview",
		Instructions: standardEvaluationInstructions,
		Schema:       standardResultSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, err
	}

	res, err := standardResultSchema.Parse(raw)
	if err != nil {
		return nil, err
	}

	if len(res.Evaluations) != len(questions) {
		return nil, &ValidationFailure{Reason: fmt.Sprintf("expected %d answer evaluations, got %d", len(questions), len(res.Evaluations))}
	}
	for _, ev := range res.Evaluations {
		if ev.QuestionNumber > len(questions) {
			return nil, &ValidationFailure{Reason: fmt.Sprintf("evaluation references unknown question %d", ev.QuestionNumber)}
		}
	}

	soft := res.SoftSkills
	return &Evaluation{
		OverallScore:       res.OverallScore,
		Strengths:          res.OverallStrengths,
		ImprovementAreas:   res.OverallImprovements,
		CommunicationScore: soft.CommunicationClarity,
		WeakTopics:         res.WeakTopics,
		Suggestions:        flattenImprovements(res.Evaluations),
		Answers:            res.Evaluations,
		SoftSkills:         &soft,
	}, nil
}

// flattenImprovements collects per-answer improvements in question order, dropping blanks.
func flattenImprovements(evaluations []AnswerEvaluation) []string {
	suggestions := []string{}
	for _, ev := range evaluations {
		for _, improvement := range ev.Improvements {
			if improvement = strings.TrimSpace(improvement); improvement != "" {
				suggestions = append(suggestions, improvement)
			}
		}
	}
	return suggestions
}
