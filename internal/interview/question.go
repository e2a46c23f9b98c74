// Package interview drives mock interviews: question generation, the per-turn
// clarity gate, audio transcription, evaluation and the session state machine
// tying them together. It also hosts the quiz and recorded-answer review.
package interview

import (
	"fmt"
	"strings"
)

// Mode selects the interview flavour.
type Mode string

const (
	// ModeStandard is a five question technical interview answered without clarification turns.
	ModeStandard Mode = "standard"
	// ModeLive is a seven question conversational interview with a clarity gate per turn.
	ModeLive Mode = "live"
)

// ParseMode converts a user supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive, "":
		return ModeLive, nil
	case ModeStandard:
		return ModeStandard, nil
	default:
		return "", fmt.Errorf("unknown interview mode %q (want %q or %q)", s, ModeLive, ModeStandard)
	}
}

// QuestionCount is the exact number of questions a session of this mode has.
func (m Mode) QuestionCount() int {
	if m == ModeStandard {
		return 5
	}
	return 7
}

type Category string

// Standard mode categories.
const (
	CategoryArchitecture            Category = "project_architecture"
	CategoryChallenges              Category = "challenges"
	CategoryTechnologyDeepDive      Category = "technology_deep_dive"
	CategoryRealWorldApplication    Category = "real_world_application"
	CategoryOptimizationScalability Category = "optimization_scalability"
)

// Live mode categories.
const (
	CategoryIntro          Category = "intro"
	CategoryProject        Category = "project"
	CategoryTechnical      Category = "technical"
	CategoryProblemSolving Category = "problem_solving"
	CategoryHRCulture      Category = "hr_culture"
)

var (
	standardCategories = []Category{
		CategoryArchitecture,
		CategoryChallenges,
		CategoryTechnologyDeepDive,
		CategoryRealWorldApplication,
		CategoryOptimizationScalability,
	}
	liveCategories = []Category{
		CategoryIntro,
		CategoryProject,
		CategoryTechnical,
		CategoryProblemSolving,
		CategoryHRCulture,
	}
)

// Question is one interview question. Number is 1-based and contiguous.
type Question struct {
	Number   int      `json:"question_number"`
	Text     string   `json:"question"`
	Category Category `json:"category"`
	Context  string   `json:"context,omitempty"`
}

const (
	// SkippedAnswer is recorded for questions the candidate skipped.
	SkippedAnswer = "[Skipped]"
	// ErrorPlaceholderAnswer is recorded when a spoken answer could not be transcribed
	// and no typed answer accompanied it.
	ErrorPlaceholderAnswer = "[Error processing answer]"
)

// Answer is an accepted answer bound to a question by position.
type Answer struct {
	Text       string `json:"text"`
	Spoken     bool   `json:"spoken,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// Verdict is the clarity gate's decision for one answer. FollowUp is set only
// when clarification is needed and Acknowledgement only when it is not.
type Verdict struct {
	NeedsClarification bool
	FollowUp           string
	Acknowledgement    string
}

const answerNoted = "Answer noted."

// AcceptVerdict is the verdict used whenever the gate cannot decide.
func AcceptVerdict() Verdict {
	return Verdict{Acknowledgement: answerNoted}
}
