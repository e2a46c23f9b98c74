package interview

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
	s "github.com/spigell/skillbuddy/internal/structured"
)

//go:embed prompts/quiz.md
var quizInstructions string

const quizLength = 5

var optionLabels = []string{"A", "B", "C", "D"}

type QuizOption struct {
	Label string `json:"label" validate:"oneof=A B C D"`
	Text  string `json:"text" validate:"required"`
}

type QuizQuestion struct {
	Number        int          `json:"question_number" validate:"min=1"`
	Question      string       `json:"question" validate:"required"`
	Options       []QuizOption `json:"options" validate:"len=4,dive"`
	CorrectAnswer string       `json:"correct_answer" validate:"oneof=A B C D"`
	Explanation   string       `json:"explanation" validate:"required"`
}

// Quiz is a five question multiple-choice quiz built from the resume.
type Quiz struct {
	Questions []QuizQuestion `json:"questions" validate:"len=5,dive"`
}

var quizSchema = s.Schema[Quiz]{
	Name: "quiz",
	Definition: s.Object(map[string]*s.Def{
		"questions": s.FixedArray(s.Object(map[string]*s.Def{
			"question_number": s.Integer("Question number", 1, quizLength),
			"question":        s.String("The quiz question"),
			"options": s.FixedArray(s.Object(map[string]*s.Def{
				"label": s.Enum("Option label", optionLabels...),
				"text":  s.String("Option text"),
			}, "label", "text"), "Options A to D", int64(len(optionLabels))),
			"correct_answer": s.Enum("Label of the correct option", optionLabels...),
			"explanation":    s.String("Why the answer is correct"),
		}, "question_number", "question", "options", "correct_answer", "explanation"), "The quiz questions", quizLength),
	}, "questions"),
	Check: func(q *Quiz) error {
		for i, question := range q.Questions {
			if question.Number != i+1 {
				return fmt.Errorf("question at position %d is numbered %d", i+1, question.Number)
			}
			for j, opt := range question.Options {
				if opt.Label != optionLabels[j] {
					return fmt.Errorf("question %d option %d is labelled %q", question.Number, j+1, opt.Label)
				}
			}
		}
		return nil
	},
}

// QuizMaker generates quizzes.
type QuizMaker struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewQuizMaker(requester ai.Requester, logger *zap.Logger) *QuizMaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizMaker{requester: requester, logger: logger}
}

func (m *QuizMaker) Generate(ctx context.Context, p *profile.Profile) (*Quiz, error) {
	projects := "No projects"
	technologies := map[string]struct{}{}
	if p != nil && len(p.Projects) > 0 {
		names := make([]string, len(p.Projects))
		for i, project := range p.Projects {
			names[i] = project.Name
			for _, tech := range project.Technologies {
				technologies[tech] = struct{}{}
			}
		}
		projects = strings.Join(names, ", ")
	}

	techList := p.SkillList(0)
	if len(technologies) > 0 {
		techs := make([]string, 0, len(technologies))
		for tech := range technologies {
			techs = append(techs, tech)
		}
		sort.Strings(techs)
		techList = strings.Join(techs, ", ")
	}

	prompt := fmt.Sprintf(`Create a 5-question MCQ quiz for this candidate.

Candidate Level: %s
Skills: %s
Projects: %s
Technologies Used: %s

Generate questions that test their claimed expertise. Questions should be practical and relevant.`,
		p.LevelOrDefault(), p.SkillList(0), projects, techList)

	raw, err := m.requester.Complete(ctx, ai.Request{
		Operation:    "generate_quiz",
		Instructions: quizInstructions,
		Schema:       quizSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	quiz, err := quizSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	m.logger.Info("quiz generated", zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

type QuizItemResult struct {
	Number    int
	Chosen    string
	Correct   string
	IsCorrect bool
}

type QuizResult struct {
	Score int
	Total int
	Items []QuizItemResult
}

// Grade scores the chosen labels keyed by question number. Missing answers count as wrong.
func (q *Quiz) Grade(chosen map[int]string) QuizResult {
	result := QuizResult{Total: len(q.Questions), Items: make([]QuizItemResult, 0, len(q.Questions))}
	for _, question := range q.Questions {
		pick := strings.ToUpper(strings.TrimSpace(chosen[question.Number]))
		item := QuizItemResult{
			Number:    question.Number,
			Chosen:    pick,
			Correct:   question.CorrectAnswer,
			IsCorrect: pick != "" && pick == question.CorrectAnswer,
		}
		if item.IsCorrect {
			result.Score++
		}
		result.Items = append(result.Items, item)
	}
	return result
}
