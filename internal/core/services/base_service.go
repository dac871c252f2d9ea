package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// Logger is used when the context carries no request-scoped logger.
	Logger *slog.Logger
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		if s.Logger != nil {
			return s.Logger
		}
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// repoError converts a mirror store error into an AppError for operation op.
// Errors that already carry a kind keep it.
func (s *BaseService) repoError(err error, op, campaignID, msg string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Operation == "" {
			appErr.Operation = op
		}
		if appErr.CampaignID == "" {
			appErr.CampaignID = campaignID
		}
		return appErr
	}
	kind := apperrors.KindInternal
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		kind = apperrors.KindNotFound
	case errors.Is(err, apperrors.ErrStateConflict):
		kind = apperrors.KindStateConflict
	case errors.Is(err, apperrors.ErrConflict):
		kind = apperrors.KindMirrorConflict
	}
	return apperrors.NewAppError(kind, msg, err).WithOperation(op).WithCampaign(campaignID)
}
