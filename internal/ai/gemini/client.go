package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/logger"
	"github.com/spigell/skillbuddy/internal/utils"
)

const (
	// Provider is the value logged under the ai_provider field.
	Provider = "gemini"

	defaultModel        = "gemini-flash-latest"
	defaultMaxLogLength = 200
	maxToolRounds       = 4
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends single requests to the Gemini API. It never retries: callers
// decide what a failure means for them.
type Generator struct {
	models    contentModels
	model     string
	maxLogLen int
	logger    *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxLogLength int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, maxLogLength, log), nil
}

func newGenerator(models contentModels, model string, maxLogLength int, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Generator{
		models:    models,
		model:     model,
		maxLogLen: maxLogLength,
		logger:    logger.WithBackend(log, Provider, model),
	}
}

// Complete sends the request and returns the first textual part of the first
// usable candidate.
func (g *Generator) Complete(ctx context.Context, req ai.Request) (string, error) {
	contents, err := userContents(req)
	if err != nil {
		return "", err
	}

	resp, err := g.generate(ctx, req.Operation, contents, buildConfig(req))
	if err != nil {
		return "", err
	}

	return g.firstText(req.Operation, resp)
}

// CompleteWithTool lets the model call tool before producing its final text answer.
// Structured output is requested through the instructions only, since the API
// does not combine function calling with a response schema.
func (g *Generator) CompleteWithTool(ctx context.Context, req ai.Request, tool ai.Tool) (string, error) {
	if tool.Call == nil || strings.TrimSpace(tool.Name) == "" {
		return "", errors.New("tool name and handler are required")
	}

	contents, err := userContents(req)
	if err != nil {
		return "", err
	}

	cfg := buildConfig(req)
	cfg.ResponseMIMEType = ""
	cfg.ResponseSchema = nil
	cfg.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		}},
	}}

	for round := 1; round <= maxToolRounds; round++ {
		resp, err := g.generate(ctx, req.Operation, contents, cfg)
		if err != nil {
			return "", err
		}

		modelContent, calls := functionCalls(resp)
		if len(calls) == 0 {
			return g.firstText(req.Operation, resp)
		}

		responses := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			g.logger.Debug("model requested tool call",
				zap.String(logger.FieldOperation, req.Operation),
				zap.String("tool", call.Name),
				zap.Int("round", round),
				zap.Any("args", call.Args),
			)

			if call.Name != tool.Name {
				responses = append(responses, genai.NewPartFromFunctionResponse(call.Name, map[string]any{
					"error": fmt.Sprintf("unknown tool %q", call.Name),
				}))
				continue
			}

			out, err := tool.Call(ctx, call.Args)
			if err != nil {
				return "", fmt.Errorf("tool %s: %w", tool.Name, err)
			}
			responses = append(responses, genai.NewPartFromFunctionResponse(call.Name, out))
		}

		contents = append(contents, modelContent, genai.NewContentFromParts(responses, genai.RoleUser))
	}

	return "", fmt.Errorf("model kept calling tools after %d rounds: %w", maxToolRounds, ai.ErrEmptyResponse)
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) generate(ctx context.Context, operation string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	g.logger.Debug("sending gemini request",
		zap.String(logger.FieldOperation, operation),
		zap.Int("contents", len(contents)),
		zap.Bool("structured", cfg.ResponseSchema != nil),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		err = classifyError(err)
		g.logger.Warn("gemini request failed",
			zap.String(logger.FieldOperation, operation),
			zap.String("kind", ai.Classify(err).String()),
			zap.Error(err),
		)
		return nil, err
	}

	return resp, nil
}

func (g *Generator) firstText(operation string, resp *genai.GenerateContentResponse) (string, error) {
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil || strings.TrimSpace(part.Text) == "" {
					continue
				}

				g.logger.Debug("gemini response",
					zap.String(logger.FieldOperation, operation),
					zap.String("preview", utils.Preview(part.Text, g.maxLogLen)),
				)
				return part.Text, nil
			}
		}
	}

	return "", fmt.Errorf("gemini api returned empty response: %w", ai.ErrEmptyResponse)
}

func buildConfig(req ai.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: instructions}}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	return cfg
}

func userContents(req ai.Request) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch {
		case p.IsMedia():
			if strings.TrimSpace(p.MIMEType) == "" {
				return nil, errors.New("media part requires a mime type")
			}
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		case strings.TrimSpace(p.Text) != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}

	if len(parts) == 0 {
		return nil, errors.New("request must contain at least one non-empty part")
	}

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

func functionCalls(resp *genai.GenerateContentResponse) (*genai.Content, []*genai.FunctionCall) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	content := resp.Candidates[0].Content
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}

	return content, calls
}
