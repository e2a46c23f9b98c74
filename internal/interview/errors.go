package interview

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrNotInTurn          = errors.New("session is not waiting for an answer")
	ErrNotReadyToEvaluate = errors.New("session has unanswered questions")
	ErrAnswerMismatch     = errors.New("answer count does not match question count")
)

// GenerationError reports that no usable question set could be produced.
type GenerationError struct {
	Mode Mode
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s interview questions: %v", e.Mode, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// EvaluationError reports a failed evaluation. The session keeps its answers
// so evaluation can be retried.
type EvaluationError struct {
	Mode Mode
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s interview: %v", e.Mode, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// ValidationFailure reports a well-formed response whose overall shape is wrong,
// such as an unexpected number of questions.
type ValidationFailure struct {
	Reason string
}

func (e *ValidationFailure) Error() string {
	return "response shape mismatch: " + e.Reason
}
