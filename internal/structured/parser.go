// Package structured turns raw model output into validated typed records.
//
// Every record type carries its contract twice: as a genai.Schema sent to the
// backend to steer generation, and as validator struct tags enforced locally
// after decoding. The backend schema is advisory; the local checks are not.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"

	"github.com/spigell/skillbuddy/internal/utils"
)

const rawPreviewLimit = 200

var validate = validator.New(validator.WithRequiredStructEnabled())

// Stage identifies where parsing failed.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// ParseError reports model output that could not be turned into a record.
type ParseError struct {
	Schema string
	Stage  Stage
	// Raw is a truncated preview of the offending output.
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response (%s): %v", e.Schema, e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Schema binds a record type to its backend schema and local checks.
type Schema[T any] struct {
	Name       string
	Definition *genai.Schema
	// Check runs after tag validation for constraints tags cannot express.
	Check func(*T) error
}

// Parse strips code fences, decodes strictly and validates the record.
func (s Schema[T]) Parse(raw string) (*T, error) {
	body := StripFences(raw)
	if body == "" {
		return nil, s.fail(StageDecode, raw, errors.New("empty output"))
	}

	var record T
	if err := DecodeStrict([]byte(body), &record); err != nil {
		return nil, s.fail(StageDecode, raw, err)
	}

	if reflect.Indirect(reflect.ValueOf(&record)).Kind() == reflect.Struct {
		if err := validate.Struct(&record); err != nil {
			return nil, s.fail(StageValidate, raw, err)
		}
	}

	if s.Check != nil {
		if err := s.Check(&record); err != nil {
			return nil, s.fail(StageValidate, raw, err)
		}
	}

	return &record, nil
}

func (s Schema[T]) fail(stage Stage, raw string, err error) error {
	return &ParseError{
		Schema: s.Name,
		Stage:  stage,
		Raw:    utils.Preview(raw, rawPreviewLimit),
		Err:    err,
	}
}

// DecodeStrict decodes a single JSON value, rejecting unknown fields and trailing data.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected content after JSON value")
	}
	return nil
}

// Validate runs the struct tag checks on v.
func Validate(v any) error {
	return validate.Struct(v)
}

// StripFences removes markdown code fence lines when the text starts with one.
// Everything else is kept verbatim and the result is trimmed.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
