package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/logger"
	"github.com/spigell/skillbuddy/internal/profile"
)

// State is a session lifecycle stage.
type State string

const (
	StateAwaitingQuestions State = "awaiting_questions"
	StateInTurn            State = "in_turn"
	StateEvaluating        State = "evaluating"
	StateComplete          State = "complete"
	StateAborted           State = "aborted"
)

const defaultMaxClarifications = 2

// QuestionGenerator produces a question set for a profile.
type QuestionGenerator interface {
	Generate(ctx context.Context, p *profile.Profile, targetRole string, mode Mode) ([]Question, error)
}

// AnswerChecker is the per-turn clarity gate.
type AnswerChecker interface {
	Check(ctx context.Context, q Question, answer string, p *profile.Profile) (Verdict, error)
}

// AudioTranscriber turns a spoken answer into text.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// AnswerEvaluator scores a finished question and answer set.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, mode Mode, questions []Question, answers []Answer, p *profile.Profile) (*Evaluation, error)
}

type SessionConfig struct {
	Mode       Mode
	TargetRole string
	// MaxClarifications caps consecutive follow-ups on one question. Once reached
	// the next answer is accepted without consulting the gate. Zero means no cap.
	MaxClarifications int
}

type SessionDeps struct {
	Generator   QuestionGenerator
	Checker     AnswerChecker
	Transcriber AudioTranscriber
	Evaluator   AnswerEvaluator
	Logger      *zap.Logger
}

// Submission is one answer attempt. When Audio is set it is transcribed and Text
// serves as the fallback if transcription fails.
type Submission struct {
	Text      string
	Audio     []byte
	AudioMIME string
}

// TurnOutcome describes what a submission did to the session.
type TurnOutcome struct {
	// Accepted is false when the gate asked for clarification.
	Accepted        bool
	FollowUp        string
	Acknowledgement string
	// Forced is true when the answer was accepted without a gate decision.
	Forced              bool
	Transcript          string
	TranscriptionFailed bool
	// Position is the cursor after the turn.
	Position int
	// Result is set once the final answer has been accepted and evaluated.
	Result *Evaluation
}

// Snapshot is a copy of the session state that is safe to keep.
type Snapshot struct {
	ID        string
	Mode      Mode
	State     State
	Questions []Question
	Answers   []Answer
	Cursor    int
	Result    *Evaluation
}

// Session is the interview state machine. All methods are safe for concurrent
// use; mutations are serialized and a turn is applied as a whole.
type Session struct {
	mu sync.Mutex

	cfg     SessionConfig
	deps    SessionDeps
	profile *profile.Profile

	id             string
	state          State
	questions      []Question
	answers        []Answer
	clarifications int
	result         *Evaluation
	logger         *zap.Logger
}

func NewSession(p *profile.Profile, cfg SessionConfig, deps SessionDeps) (*Session, error) {
	if p == nil {
		return nil, errors.New("profile is required")
	}
	if deps.Generator == nil || deps.Evaluator == nil {
		return nil, errors.New("question generator and evaluator are required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLive
	}
	if cfg.Mode == ModeLive && deps.Checker == nil {
		return nil, errors.New("live interviews require an answer checker")
	}
	if cfg.MaxClarifications < 0 {
		cfg.MaxClarifications = 0
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Session{cfg: cfg, deps: deps, profile: p}
	s.resetLocked()
	return s, nil
}

// Start generates the question set. It is a no-op once questions exist. A
// generation failure leaves the session Aborted with nothing retained; calling
// Start again retries from scratch.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAwaitingQuestions:
	case StateAborted:
		s.resetLocked()
	default:
		return nil
	}

	questions, err := s.deps.Generator.Generate(ctx, s.profile, s.cfg.TargetRole, s.cfg.Mode)
	if err != nil {
		s.resetLocked()
		s.state = StateAborted
		s.logger.Error("question generation failed, session aborted", zap.Error(err))
		return err
	}
	if len(questions) != s.cfg.Mode.QuestionCount() {
		s.resetLocked()
		s.state = StateAborted
		err := &GenerationError{Mode: s.cfg.Mode, Err: &ValidationFailure{
			Reason: fmt.Sprintf("expected %d questions, got %d", s.cfg.Mode.QuestionCount(), len(questions)),
		}}
		s.logger.Error("question generation failed, session aborted", zap.Error(err))
		return err
	}

	s.questions = append([]Question(nil), questions...)
	s.answers = make([]Answer, 0, len(questions))
	s.state = StateInTurn
	s.logger.Info("interview started", zap.Int("questions", len(questions)))

	return nil
}

// Current returns the question waiting for an answer.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInTurn {
		return Question{}, false
	}
	return s.questions[len(s.answers)], true
}

// Submit processes one answer attempt for the current question. Transcription
// and clarity check failures never block the turn. When the last answer is
// accepted the session evaluates itself; an evaluation failure is returned
// alongside the outcome and the session stays in Evaluating.
func (s *Session) Submit(ctx context.Context, sub Submission) (*TurnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInTurn {
		return nil, fmt.Errorf("%w (state %s)", ErrNotInTurn, s.state)
	}

	question := s.questions[len(s.answers)]
	outcome := &TurnOutcome{}

	answer, forced, err := s.resolveAnswer(ctx, sub, outcome)
	if err != nil {
		return nil, err
	}

	verdict := AcceptVerdict()
	switch {
	case forced:
		outcome.Forced = true
	case s.cfg.Mode == ModeStandard:
		verdict = Verdict{}
	case s.cfg.MaxClarifications > 0 && s.clarifications >= s.cfg.MaxClarifications:
		s.logger.Info("clarification limit reached, accepting answer", zap.Int("question", question.Number))
		outcome.Forced = true
	default:
		verdict, err = s.deps.Checker.Check(ctx, question, answer.Text, s.profile)
		if err != nil {
			s.logger.Warn("clarity check failed, accepting answer",
				zap.Int("question", question.Number),
				zap.String("kind", ai.Classify(err).String()),
				zap.Error(err),
			)
			verdict = AcceptVerdict()
			outcome.Forced = true
		}
	}

	if verdict.NeedsClarification && verdict.FollowUp != "" {
		s.clarifications++
		outcome.FollowUp = verdict.FollowUp
		outcome.Position = len(s.answers)
		s.logger.Info("clarification requested",
			zap.Int("question", question.Number),
			zap.Int("clarifications", s.clarifications),
		)
		return outcome, nil
	}

	outcome.Accepted = true
	outcome.Acknowledgement = verdict.Acknowledgement
	s.acceptLocked(answer)
	outcome.Position = len(s.answers)

	if s.state == StateEvaluating {
		result, err := s.evaluateLocked(ctx)
		if err != nil {
			return outcome, err
		}
		outcome.Result = result
	}

	return outcome, nil
}

// Skip records the skip placeholder for the current question without consulting the gate.
func (s *Session) Skip(ctx context.Context) (*TurnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInTurn {
		return nil, fmt.Errorf("%w (state %s)", ErrNotInTurn, s.state)
	}

	s.acceptLocked(Answer{Text: SkippedAnswer, Skipped: true})
	outcome := &TurnOutcome{Accepted: true, Position: len(s.answers)}

	if s.state == StateEvaluating {
		result, err := s.evaluateLocked(ctx)
		if err != nil {
			return outcome, err
		}
		outcome.Result = result
	}

	return outcome, nil
}

// Evaluate returns the session result, computing it at most once per session.
func (s *Session) Evaluate(ctx context.Context) (*Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return s.result, nil
	}
	if s.state != StateEvaluating {
		return nil, fmt.Errorf("%w (state %s)", ErrNotReadyToEvaluate, s.state)
	}

	return s.evaluateLocked(ctx)
}

// Result returns the evaluation once the session is complete.
func (s *Session) Result() *Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:        s.id,
		Mode:      s.cfg.Mode,
		State:     s.state,
		Questions: append([]Question(nil), s.questions...),
		Answers:   append([]Answer(nil), s.answers...),
		Cursor:    len(s.answers),
		Result:    s.result,
	}
}

// Reset discards questions, answers and result. The next Start generates a new question set.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("session reset")
	s.resetLocked()
}

// UseProfile switches the session to a newly analyzed profile, resetting it when the profile changed.
func (s *Session) UseProfile(p *profile.Profile) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p == s.profile {
		return
	}
	s.profile = p
	s.resetLocked()
}

// resolveAnswer turns a submission into the answer to record. forced reports
// that the answer must be accepted without a gate decision.
func (s *Session) resolveAnswer(ctx context.Context, sub Submission, outcome *TurnOutcome) (Answer, bool, error) {
	text := strings.TrimSpace(sub.Text)

	if len(sub.Audio) == 0 || s.deps.Transcriber == nil {
		if text == "" {
			return Answer{}, false, ErrEmptyAnswer
		}
		return Answer{Text: text}, false, nil
	}

	transcript, err := s.deps.Transcriber.Transcribe(ctx, sub.Audio, sub.AudioMIME)
	if err == nil {
		outcome.Transcript = transcript
		return Answer{Text: transcript, Spoken: true, Transcript: transcript}, false, nil
	}

	outcome.TranscriptionFailed = true
	s.logger.Warn("transcription failed, falling back", zap.Bool("typed_answer", text != ""), zap.Error(err))

	if text != "" {
		return Answer{Text: text}, false, nil
	}
	return Answer{Text: ErrorPlaceholderAnswer}, true, nil
}

// acceptLocked is the only place answers grow and the cursor moves.
func (s *Session) acceptLocked(a Answer) {
	s.answers = append(s.answers, a)
	s.clarifications = 0

	s.logger.Info("answer accepted",
		zap.Int("position", len(s.answers)),
		zap.Int("total", len(s.questions)),
		zap.Bool("spoken", a.Spoken),
		zap.Bool("skipped", a.Skipped),
	)

	if len(s.answers) == len(s.questions) {
		s.state = StateEvaluating
	}
}

func (s *Session) evaluateLocked(ctx context.Context) (*Evaluation, error) {
	if s.result != nil {
		return s.result, nil
	}

	result, err := s.deps.Evaluator.Evaluate(ctx, s.cfg.Mode,
		append([]Question(nil), s.questions...),
		append([]Answer(nil), s.answers...),
		s.profile,
	)
	if err != nil {
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			err = &EvaluationError{Mode: s.cfg.Mode, Err: err}
		}
		s.logger.Error("evaluation failed, retry is possible", zap.Error(err))
		return nil, err
	}

	s.result = result
	s.state = StateComplete
	s.logger.Info("interview complete", zap.Int("overall_score", result.OverallScore))

	return result, nil
}

func (s *Session) resetLocked() {
	s.id = uuid.NewString()
	s.state = StateAwaitingQuestions
	s.questions = nil
	s.answers = nil
	s.clarifications = 0
	s.result = nil
	s.logger = logger.WithSession(s.deps.Logger, s.id, string(s.cfg.Mode))
}
