package interview

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
)

//go:embed prompts/clarity.md
var clarityInstructions string

// ClarityGate decides whether an answer is good enough to move to the next question.
type ClarityGate struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewClarityGate(requester ai.Requester, logger *zap.Logger) *ClarityGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClarityGate{requester: requester, logger: logger}
}

// Check returns the gate's verdict. An empty backend response accepts the answer.
func (c *ClarityGate) Check(ctx context.Context, q Question, answer string, p *profile.Profile) (Verdict, error) {
	prompt := fmt.Sprintf(`Question: %s

Candidate's Answer: %s

Candidate Skills: %s

Is this answer clear enough to proceed, or should we ask for clarification?`, q.Text, answer, p.SkillList(0))

	raw, err := c.requester.Complete(ctx, ai.Request{
		Operation:    "check_answer_clarity",
		Instructions: clarityInstructions,
		Schema:       claritySchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if errors.Is(err, ai.ErrEmptyResponse) {
		c.logger.Warn("clarity check returned nothing, accepting answer", zap.Int("question", q.Number))
		return AcceptVerdict(), nil
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("check answer clarity: %w", err)
	}

	resp, err := claritySchema.Parse(raw)
	if err != nil {
		return Verdict{}, fmt.Errorf("check answer clarity: %w", err)
	}

	return resp.verdict(), nil
}

// verdict keeps follow-up and acknowledgement mutually exclusive. A request for
// clarification without a follow-up question cannot be acted on and accepts the answer.
func (r *clarityResponse) verdict() Verdict {
	if *r.NeedsClarification && r.ClarificationPrompt != nil {
		if followUp := strings.TrimSpace(*r.ClarificationPrompt); followUp != "" {
			return Verdict{NeedsClarification: true, FollowUp: followUp}
		}
	}

	ack := strings.TrimSpace(r.BriefFeedback)
	if ack == "" {
		ack = answerNoted
	}
	return Verdict{Acknowledgement: ack}
}
