package interview

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
)

//go:embed prompts/transcription.md
var transcriptionInstructions string

const (
	transcribePrompt  = "Transcribe this audio exactly as spoken."
	fallbackAudioMIME = "audio/wav"
	fallbackVideoMIME = "video/mp4"
)

// Transcriber converts spoken answers into text.
type Transcriber struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewTranscriber(requester ai.Requester, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{requester: requester, logger: logger}
}

// Transcribe returns the spoken text. An empty mimeType is detected from the audio bytes.
// Every failure wraps ai.ErrTranscription.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: no audio data", ai.ErrTranscription)
	}

	if strings.TrimSpace(mimeType) == "" {
		mimeType = DetectMedia(audio, "audio/", fallbackAudioMIME)
	}

	raw, err := t.requester.Complete(ctx, ai.Request{
		Operation:    "transcribe_audio",
		Instructions: transcriptionInstructions,
		Parts:        []ai.Part{ai.Media(audio, mimeType), ai.Text(transcribePrompt)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrTranscription, err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ai.ErrTranscription)
	}

	t.logger.Debug("audio transcribed", zap.String("mime", mimeType), zap.Int("chars", len(text)))

	return text, nil
}

// DetectMedia sniffs the media type of data. When the detected type does not
// start with prefix, fallback is returned. WebM is reported under the prefix's
// top-level type since browsers record audio-only WebM.
func DetectMedia(data []byte, prefix, fallback string) string {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), prefix) {
			return m.String()
		}
	}

	if detected.Extension() == ".webm" {
		return strings.TrimSuffix(prefix, "/") + "/webm"
	}

	return fallback
}
