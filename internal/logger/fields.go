package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log field keys shared across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldOperation = "operation"
	FieldSessionID = "session_id"
	FieldMode      = "interview_mode"
)

// Field is a string-valued log field.
type Field struct {
	Key   string
	Value string
}

// Fields converts key/value pairs into zap fields. Keys and values are trimmed
// and pairs with an empty side are dropped.
func Fields(fields ...Field) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}

	return result
}

// With attaches fields to logger. A nil logger becomes a no-op logger.
func With(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithBackend tags logger with the LLM provider and model.
func WithBackend(logger *zap.Logger, provider, model string) *zap.Logger {
	return With(logger, Fields(
		Field{Key: FieldProvider, Value: provider},
		Field{Key: FieldModel, Value: model},
	)...)
}

// WithSession tags logger with an interview session id and mode.
func WithSession(logger *zap.Logger, sessionID, mode string) *zap.Logger {
	return With(logger, Fields(
		Field{Key: FieldSessionID, Value: sessionID},
		Field{Key: FieldMode, Value: mode},
	)...)
}
