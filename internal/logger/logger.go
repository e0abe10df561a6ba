// Package logger provides structured logging for the scheduling and
// resilience core, grounded on the teacher's zap wrapper
// (reimplement/internal/logger): environment-switched zap.Config,
// request/correlation ID context propagation, and a handful of
// domain-shaped log helpers.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	requestIDKey     contextKey = "request-id"
	correlationIDKey contextKey = "correlation-id"
)

// NewLogger builds a SugaredLogger configured for env ("development"/"dev"
// for human-readable console output, anything else for production JSON).
// If env is empty it reads APP_ENV.
func NewLogger(env string) (*zap.SugaredLogger, error) {
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	var config zap.Config

	switch env {
	case "development", "dev":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.LevelKey = "level"
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	built, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return built.Sugar(), nil
}

// WithRequestID injects a per-request ID into ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ExtractRequestID retrieves the request ID, or "" if absent.
func ExtractRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID injects a cross-request correlation ID into ctx. Used
// to tie a webhook's verification log lines to the import batch or
// scheduled task it ultimately triggers.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// ExtractCorrelationID retrieves the correlation ID, or "" if absent.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// LogServiceCall logs a call into one of the core's services (compliance,
// contingency, scheduler, import staging, ...).
func LogServiceCall(log *zap.SugaredLogger, service, operation string, durationMS int64, err error) {
	if err != nil {
		log.Errorw("service call failed",
			"service", service, "operation", operation, "duration_ms", durationMS, "error", err)
		return
	}
	log.Infow("service call succeeded",
		"service", service, "operation", operation, "duration_ms", durationMS)
}

// LogError logs an error with arbitrary structured context.
func LogError(log *zap.SugaredLogger, err error, context map[string]interface{}) {
	fields := []interface{}{"error", err}
	for k, v := range context {
		fields = append(fields, k, v)
	}
	log.Errorw("error occurred", fields...)
}

// LogWebhookVerificationFailure logs at Warn level, escalating to Error
// when the failure reason contains "replay", after
// original_source/backend/app/webhooks/verification.py's
// log_verification_failure, which raises its level for that case.
func LogWebhookVerificationFailure(log *zap.SugaredLogger, sourceSystem, reason string, meta map[string]interface{}) {
	fields := []interface{}{"source_system", sourceSystem, "reason", reason}
	for k, v := range meta {
		fields = append(fields, k, v)
	}
	if strings.Contains(reason, "replay") {
		log.Errorw("webhook verification failed: possible replay attack", fields...)
		return
	}
	log.Warnw("webhook verification failed", fields...)
}
