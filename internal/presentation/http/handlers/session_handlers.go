// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/services"
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
)

// SessionHandlers contains session and service-usage HTTP handlers
type SessionHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSessionRequest carries the opaque device blob from the browser.
type CreateSessionRequest struct {
	DeviceInfo tracking.DeviceInfo `json:"deviceInfo"`
}

// StartUsageRequest names the paid feature being started. Contact info is
// optional; anonymous users usually have none at this point.
type StartUsageRequest struct {
	ServiceType string                `json:"serviceType" binding:"required"`
	ContactInfo *tracking.ContactInfo `json:"contactInfo,omitempty"`
}

// CompleteUsageRequest identifies the usage record that finished.
type CompleteUsageRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := h.sessionService.CreateSession(req.DeviceInfo)
	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /api/v1/sessions/:sessionId
func (h *SessionHandlers) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// StartUsage handles POST /api/v1/sessions/:sessionId/usage
func (h *SessionHandlers) StartUsage(c *gin.Context) {
	var req StartUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serviceType is required"})
		return
	}

	record, err := h.sessionService.StartServiceUsage(c.Param("sessionId"), req.ServiceType, req.ContactInfo)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// CompleteUsage handles POST /api/v1/sessions/:sessionId/usage/complete.
// A missing service record is reported but not treated as a failure; the
// delivery already happened.
func (h *SessionHandlers) CompleteUsage(c *gin.Context) {
	var req CompleteUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serviceId is required"})
		return
	}

	err := h.sessionService.CompleteServiceUsage(c.Param("sessionId"), req.ServiceID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, tracking.ErrServiceRecordNotFound):
		c.JSON(http.StatusOK, gin.H{"success": true, "warning": "service record not found"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
}
