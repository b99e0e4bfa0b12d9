package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/services"
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// CompensationHandlers contains error-recording HTTP handlers
type CompensationHandlers struct {
	compensationService *services.CompensationService
	logger              *logging.ChanneledLogger
}

// NewCompensationHandlers creates compensation handlers with injected dependencies
func NewCompensationHandlers(compensationService *services.CompensationService, logger *logging.ChanneledLogger) *CompensationHandlers {
	return &CompensationHandlers{
		compensationService: compensationService,
		logger:              logger,
	}
}

// RecordErrorRequest is the failure classification supplied by the analysis
// layer. Severity and compensation policy are the caller's call, not ours.
type RecordErrorRequest struct {
	ServiceID            string                 `json:"serviceId" binding:"required"`
	ErrorType            string                 `json:"errorType" binding:"required"`
	Severity             tracking.ErrorSeverity `json:"severity" binding:"required"`
	Message              string                 `json:"message"`
	CompensationRequired bool                   `json:"compensationRequired"`
	CompensationAmount   int                    `json:"compensationAmount"`
}

// RecordError handles POST /api/v1/sessions/:sessionId/errors
func (h *CompensationHandlers) RecordError(c *gin.Context) {
	var req RecordErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	switch req.Severity {
	case tracking.SeverityLow, tracking.SeverityMedium, tracking.SeverityHigh, tracking.SeverityCritical:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity"})
		return
	}

	record, err := h.compensationService.RecordServiceError(c.Param("sessionId"), store.AppendErrorInput{
		ServiceID:            req.ServiceID,
		ErrorType:            req.ErrorType,
		Severity:             req.Severity,
		Message:              req.Message,
		CompensationRequired: req.CompensationRequired,
		CompensationAmount:   req.CompensationAmount,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusCreated, record)
}
