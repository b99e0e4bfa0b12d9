package services

import (
	"errors"

	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// PaymentService correlates gateway payments with anonymous sessions
type PaymentService struct {
	store       *store.TrackingStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPaymentService creates a new payment service
func NewPaymentService(trackingStore *store.TrackingStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PaymentService {
	return &PaymentService{
		store:       trackingStore,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// CorrelatedUser is a (session, tracker) pair resolved from a payment key.
// Session is nil when it has already been swept; the tracker survives alone.
type CorrelatedUser struct {
	Session *tracking.AnonymousSession `json:"session,omitempty"`
	Tracker tracking.PaymentTracker    `json:"tracker"`
}

// LinkPayment records a normalized gateway confirmation against a session and
// service attempt. The tracker is always created; a missing session still
// comes back as ErrSessionNotFound, and a missing service record as
// ErrServiceRecordNotFound, which this layer logs and swallows since payment
// correlation must not block on an expired usage record.
func (s *PaymentService) LinkPayment(input store.LinkPaymentInput) (tracking.PaymentTracker, error) {
	marker := s.perfTracker.StartOperation("payment:link")
	defer s.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("paymentId", input.PaymentID)
	marker.AddMetadata("amount", input.Amount)

	tracker, err := s.store.LinkPayment(input)
	if err != nil {
		if errors.Is(err, tracking.ErrServiceRecordNotFound) {
			if s.logger != nil {
				s.logger.Payment().Warn("Payment linked without a service record",
					"paymentId", input.PaymentID,
					"serviceId", input.ServiceID,
					"sessionId", logging.SanitizeSessionID(input.SessionID))
			}
			return tracker, nil
		}
		marker.SetError(err)
		return tracker, err
	}
	return tracker, nil
}

// CompletePayment marks the payment as confirmed by the gateway.
func (s *PaymentService) CompletePayment(paymentID string) (tracking.PaymentTracker, error) {
	marker := s.perfTracker.StartOperation("payment:complete")
	defer s.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("paymentId", paymentID)

	tracker, err := s.store.CompletePayment(paymentID)
	if err != nil {
		marker.SetError(err)
		return tracking.PaymentTracker{}, err
	}
	return tracker, nil
}

// UpdatePaymentStatus records a gateway-side failure or refund.
func (s *PaymentService) UpdatePaymentStatus(paymentID string, status tracking.PaymentStatus) (tracking.PaymentTracker, error) {
	marker := s.perfTracker.StartOperation("payment:update_status")
	defer s.perfTracker.CompleteOperation(marker)

	tracker, err := s.store.UpdatePaymentStatus(paymentID, status)
	if err != nil {
		marker.SetError(err)
		return tracking.PaymentTracker{}, err
	}
	return tracker, nil
}

// GetUserByPaymentID resolves the session and tracker behind a payment ID.
func (s *PaymentService) GetUserByPaymentID(paymentID string) (CorrelatedUser, error) {
	marker := s.perfTracker.StartOperation("payment:lookup_by_payment")
	defer s.perfTracker.CompleteOperation(marker)

	tracker, session, err := s.store.LookupByPaymentID(paymentID)
	if err != nil {
		marker.SetError(err)
		return CorrelatedUser{}, err
	}
	return CorrelatedUser{Session: session, Tracker: tracker}, nil
}

// GetUserByOrderID resolves the session and tracker behind an order ID.
func (s *PaymentService) GetUserByOrderID(orderID string) (CorrelatedUser, error) {
	marker := s.perfTracker.StartOperation("payment:lookup_by_order")
	defer s.perfTracker.CompleteOperation(marker)

	tracker, session, err := s.store.LookupByOrderID(orderID)
	if err != nil {
		marker.SetError(err)
		return CorrelatedUser{}, err
	}
	return CorrelatedUser{Session: session, Tracker: tracker}, nil
}
