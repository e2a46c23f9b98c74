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
	s "github.com/spigell/skillbuddy/internal/structured"
)

//go:embed prompts/recording_review.md
var recordingReviewInstructions string

type Delivery struct {
	FillerCount       *int    `json:"filler_count" validate:"omitnil,min=0"`
	Tone              *string `json:"tone"`
	VisualObservation *string `json:"visual_observation"`
}

// RecordingFeedback reviews one recorded answer.
type RecordingFeedback struct {
	Question        string   `json:"question" validate:"required"`
	AnswerQuality   string   `json:"answer_quality" validate:"required"`
	Delivery        Delivery `json:"delivery"`
	ImprovementTips string   `json:"improvement_tips" validate:"required"`
}

var recordingFeedbackSchema = s.Schema[RecordingFeedback]{
	Name: "recording feedback",
	Definition: s.Object(map[string]*s.Def{
		"question":       s.String("The question that was asked"),
		"answer_quality": s.String("Evaluation of the answer content"),
		"delivery": s.Object(map[string]*s.Def{
			"filler_count":       s.NullableInteger("Estimated filler word count", 0),
			"tone":               s.NullableString("Tone and confidence"),
			"visual_observation": s.NullableString("Visual communication, when video is present"),
		}),
		"improvement_tips": s.String("Actionable suggestions"),
	}, "question", "answer_quality", "delivery", "improvement_tips"),
}

// Recording is a recorded answer. Either medium may be absent but not both.
type Recording struct {
	Audio     []byte
	AudioMIME string
	Video     []byte
	VideoMIME string
	// Transcript is an optional approximate transcript.
	Transcript string
}

// Reviewer gives delivery and content feedback on recorded answers.
type Reviewer struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewReviewer(requester ai.Requester, logger *zap.Logger) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{requester: requester, logger: logger}
}

func (r *Reviewer) Review(ctx context.Context, question string, rec Recording, p *profile.Profile) (*RecordingFeedback, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question is required")
	}
	if len(rec.Audio) == 0 && len(rec.Video) == 0 {
		return nil, errors.New("recording has neither audio nor video")
	}

	parts := make([]ai.Part, 0, 3)
	if len(rec.Audio) > 0 {
		mime := rec.AudioMIME
		if mime == "" {
			mime = DetectMedia(rec.Audio, "audio/", fallbackAudioMIME)
		}
		parts = append(parts, ai.Media(rec.Audio, mime))
	}
	if len(rec.Video) > 0 {
		mime := rec.VideoMIME
		if mime == "" {
			mime = DetectMedia(rec.Video, "video/", fallbackVideoMIME)
		}
		parts = append(parts, ai.Media(rec.Video, mime))
	}

	prompt := fmt.Sprintf("Question: %s\nCandidate core skills: %s\nAssess the recorded answer for technical correctness, communication clarity, and confidence.",
		question, p.SkillList(0))
	if transcript := strings.TrimSpace(rec.Transcript); transcript != "" {
		prompt += "\nTranscript (approximate): " + transcript
	}
	parts = append(parts, ai.Text(prompt))

	raw, err := r.requester.Complete(ctx, ai.Request{
		Operation:    "review_recording",
		Instructions: recordingReviewInstructions,
		Schema:       recordingFeedbackSchema.Definition,
		Parts:        parts,
	})
	if err != nil {
		return nil, fmt.Errorf("review recording: %w", err)
	}

	feedback, err := recordingFeedbackSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("review recording: %w", err)
	}

	r.logger.Info("recording reviewed", zap.Bool("audio", len(rec.Audio) > 0), zap.Bool("video", len(rec.Video) > 0))
	return feedback, nil
}
