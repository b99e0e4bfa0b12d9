package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/services"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
)

// SupportHandlers contains the support-agent re-identification surface.
// Everything here is read-mostly and advisory; the only mutation is error
// resolution, which releases a retention pin.
type SupportHandlers struct {
	authService           *services.AuthService
	paymentService        *services.PaymentService
	compensationService   *services.CompensationService
	identificationService *services.IdentificationService
	statsService          *services.StatsService
	logger                *logging.ChanneledLogger
}

// NewSupportHandlers creates support handlers with injected dependencies
func NewSupportHandlers(
	authService *services.AuthService,
	paymentService *services.PaymentService,
	compensationService *services.CompensationService,
	identificationService *services.IdentificationService,
	statsService *services.StatsService,
	logger *logging.ChanneledLogger,
) *SupportHandlers {
	return &SupportHandlers{
		authService:           authService,
		paymentService:        paymentService,
		compensationService:   compensationService,
		identificationService: identificationService,
		statsService:          statsService,
		logger:                logger,
	}
}

// LoginRequest carries support-agent credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IdentifyRequest mirrors the matcher criteria with RFC3339 timestamps.
type IdentifyRequest struct {
	TimeStart    *time.Time `json:"timeStart,omitempty"`
	TimeEnd      *time.Time `json:"timeEnd,omitempty"`
	Amount       *int       `json:"amount,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	CardLastFour string     `json:"cardLastFour,omitempty"`
}

// Login handles POST /api/v1/support/login
func (h *SupportHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetUserByOrderID handles GET /api/v1/support/payments/order/:orderId
func (h *SupportHandlers) GetUserByOrderID(c *gin.Context) {
	correlated, err := h.paymentService.GetUserByOrderID(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, correlated)
}

// GetUserByPaymentID handles GET /api/v1/support/payments/id/:paymentId
func (h *SupportHandlers) GetUserByPaymentID(c *gin.Context) {
	correlated, err := h.paymentService.GetUserByPaymentID(c.Param("paymentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, correlated)
}

// GetContactForOrder handles GET /api/v1/support/contact/:orderId
func (h *SupportHandlers) GetContactForOrder(c *gin.Context) {
	contact, err := h.compensationService.GetContactInfoForCompensation(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Identify handles POST /api/v1/support/identify
func (h *SupportHandlers) Identify(c *gin.Context) {
	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	candidates := h.identificationService.FindByMultipleConditions(services.MatchCriteria{
		TimeStart:    req.TimeStart,
		TimeEnd:      req.TimeEnd,
		Amount:       req.Amount,
		Phone:        req.Phone,
		Email:        req.Email,
		CardLastFour: req.CardLastFour,
	})
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// Report handles POST /api/v1/support/report
func (h *SupportHandlers) Report(c *gin.Context) {
	var report services.UserReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := h.identificationService.ReceiveUserReport(report)
	c.JSON(http.StatusOK, result)
}

// ResolveError handles POST /api/v1/support/sessions/:sessionId/errors/:errorId/resolve
func (h *SupportHandlers) ResolveError(c *gin.Context) {
	if err := h.compensationService.ResolveError(c.Param("sessionId"), c.Param("errorId")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats handles GET /api/v1/support/stats
func (h *SupportHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tracking":    h.statsService.GetAnonymousUserStats(),
		"performance": h.statsService.GetPerformanceStats(),
	})
}
