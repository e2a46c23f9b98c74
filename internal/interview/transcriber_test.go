package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillbuddy/internal/ai"
)

var wavHeader = []byte("RIFF\x24\x08\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00\x88\x58\x01\x00\x02\x00\x10\x00data\x00\x08\x00\x00")

func TestTranscribe(t *testing.T) {
	requester := (&stubRequester{}).reply("  I designed the queue consumer.  \n")
	tr := NewTranscriber(requester, nil)

	text, err := tr.Transcribe(context.Background(), wavHeader, "")
	require.NoError(t, err)
	assert.Equal(t, "I designed the queue consumer.", text)

	req := requester.requests[0]
	require.Len(t, req.Parts, 2)
	assert.Equal(t, "audio/wav", req.Parts[0].MIMEType)
	assert.Equal(t, "Transcribe this audio exactly as spoken.", req.Parts[1].Text)
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.Instructions, "Transcribe the audio exactly as spoken")
}

func TestTranscribeKeepsDeclaredMIME(t *testing.T) {
	requester := (&stubRequester{}).reply("hello")
	tr := NewTranscriber(requester, nil)

	_, err := tr.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/ogg")
	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", requester.requests[0].Parts[0].MIMEType)
}

func TestTranscribeFailures(t *testing.T) {
	tr := NewTranscriber(&stubRequester{}, nil)
	_, err := tr.Transcribe(context.Background(), nil, "")
	assert.ErrorIs(t, err, ai.ErrTranscription)

	tr = NewTranscriber((&stubRequester{}).fail(ai.ErrEmptyResponse), nil)
	_, err = tr.Transcribe(context.Background(), wavHeader, "")
	assert.ErrorIs(t, err, ai.ErrTranscription)
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)

	tr = NewTranscriber((&stubRequester{}).reply("   "), nil)
	_, err = tr.Transcribe(context.Background(), wavHeader, "")
	assert.ErrorIs(t, err, ai.ErrTranscription)
}

func TestDetectMediaFallback(t *testing.T) {
	assert.Equal(t, "audio/wav", DetectMedia([]byte("plain text, not audio"), "audio/", "audio/wav"))
	assert.Equal(t, "video/mp4", DetectMedia([]byte{0, 1, 2, 3}, "video/", "video/mp4"))
}
