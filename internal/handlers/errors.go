package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/gin-gonic/gin"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation:          http.StatusBadRequest,
	apperrors.KindNotFound:            http.StatusNotFound,
	apperrors.KindStateConflict:       http.StatusConflict,
	apperrors.KindMirrorConflict:      http.StatusConflict,
	apperrors.KindLedgerRejected:      http.StatusUnprocessableEntity,
	apperrors.KindLedgerIndeterminate: http.StatusGatewayTimeout,
	apperrors.KindLedgerFatal:         http.StatusBadGateway,
	apperrors.KindContention:          http.StatusServiceUnavailable,
	apperrors.KindDuplicateEffect:     http.StatusConflict,
	apperrors.KindInconsistency:       http.StatusInternalServerError,
	apperrors.KindInternal:            http.StatusInternalServerError,
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperrors.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as a dto.ErrorResponse. Server-side failures are logged at error level.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)
	body := dto.ErrorResponse{Error: fallback, Kind: string(kind)}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			body.Error = appErr.Message
		}
		body.Operation = appErr.Operation
		body.CampaignID = appErr.CampaignID
		body.TransactionHash = appErr.TransactionHash
		body.ContractAddress = appErr.ContractAddress
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("kind", string(kind)), slog.String("error", err.Error()))
	} else {
		logger.Warn(fallback, slog.String("kind", string(kind)), slog.String("error", err.Error()))
	}
	c.JSON(status, body)
}

// respondBindError writes a request binding failure as a validation error.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Kind:  string(apperrors.KindValidation),
	})
}
