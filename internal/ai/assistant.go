package ai

import (
	"context"

	"google.golang.org/genai"
)

// Part is one piece of request content: either text or inline media.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// Text returns a textual content part.
func Text(s string) Part {
	return Part{Text: s}
}

// Media returns an inline binary content part with the declared media type.
func Media(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// IsMedia reports whether the part carries binary data.
func (p Part) IsMedia() bool {
	return len(p.Data) > 0
}

// Request is a single completion request: system instructions, an optional
// output schema and one or more content parts.
type Request struct {
	// Operation names the calling operation in logs.
	Operation    string
	Instructions string
	// Schema steers the backend towards structured JSON output. Nil means plain text.
	Schema *genai.Schema
	Parts  []Part
}

// Requester sends one request to the LLM backend and returns the first textual
// part of the first usable candidate. It never retries.
type Requester interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Tool is a function the model may call while answering a request.
type Tool struct {
	Name        string
	Description string
	Parameters  *genai.Schema
	Call        func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// ToolRunner completes a request while letting the model call the provided tool.
type ToolRunner interface {
	CompleteWithTool(ctx context.Context, req Request, tool Tool) (string, error)
}
