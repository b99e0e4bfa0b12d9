package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/services"
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// PaymentHandlers contains payment-correlation HTTP handlers. These accept
// the normalized gateway tuple; raw gateway payloads are parsed upstream.
type PaymentHandlers struct {
	paymentService *services.PaymentService
	logger         *logging.ChanneledLogger
}

// NewPaymentHandlers creates payment handlers with injected dependencies
func NewPaymentHandlers(paymentService *services.PaymentService, logger *logging.ChanneledLogger) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
		logger:         logger,
	}
}

// LinkPaymentRequest is the normalized gateway confirmation.
type LinkPaymentRequest struct {
	SessionID   string                `json:"sessionId" binding:"required"`
	ServiceID   string                `json:"serviceId"`
	OrderID     string                `json:"orderId" binding:"required"`
	PaymentID   string                `json:"paymentId" binding:"required"`
	ServiceType string                `json:"serviceType"`
	Amount      int                   `json:"amount" binding:"required"`
	ContactInfo *tracking.ContactInfo `json:"contactInfo,omitempty"`
}

// UpdatePaymentStatusRequest carries a gateway-side terminal status.
type UpdatePaymentStatusRequest struct {
	Status tracking.PaymentStatus `json:"status" binding:"required"`
}

// LinkPayment handles POST /api/v1/payments/link. The tracker is stored even
// when the session is already gone; that case is answered with 404 plus the
// tracker so the gateway integration can log the race.
func (h *PaymentHandlers) LinkPayment(c *gin.Context) {
	var req LinkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tracker, err := h.paymentService.LinkPayment(store.LinkPaymentInput{
		PaymentID:   req.PaymentID,
		OrderID:     req.OrderID,
		SessionID:   req.SessionID,
		ServiceID:   req.ServiceID,
		ServiceType: req.ServiceType,
		Amount:      req.Amount,
		ContactInfo: req.ContactInfo,
	})
	if errors.Is(err, tracking.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "tracker": tracker})
		return
	}
	c.JSON(http.StatusCreated, tracker)
}

// CompletePayment handles POST /api/v1/payments/complete/:paymentId
func (h *PaymentHandlers) CompletePayment(c *gin.Context) {
	tracker, err := h.paymentService.CompletePayment(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, tracker)
}

// UpdatePaymentStatus handles POST /api/v1/payments/status/:paymentId
func (h *PaymentHandlers) UpdatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	switch req.Status {
	case tracking.PaymentPending, tracking.PaymentCompleted, tracking.PaymentFailed, tracking.PaymentRefunded:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status"})
		return
	}

	tracker, err := h.paymentService.UpdatePaymentStatus(c.Param("paymentId"), req.Status)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, tracker)
}
