package services

import (
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/email"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// CompensationService records delivery failures and drives the contact-attempt
// policy. The service decides *that* and *whom* to contact; the actual send is
// delegated to the email collaborator and its failures never propagate.
type CompensationService struct {
	store       *store.TrackingStore
	notifier    email.Service
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCompensationService creates a new compensation service. notifier may be
// nil, in which case contact intents are logged but not dispatched.
func NewCompensationService(trackingStore *store.TrackingStore, notifier email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CompensationService {
	return &CompensationService{
		store:       trackingStore,
		notifier:    notifier,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// RecordServiceError appends an error record and, for critical compensable
// failures, synchronously runs the contact-attempt procedure before returning.
func (s *CompensationService) RecordServiceError(sessionID string, input store.AppendErrorInput) (tracking.ErrorRecord, error) {
	marker := s.perfTracker.StartOperation("compensation:record_error")
	defer s.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("errorType", input.ErrorType)
	marker.AddMetadata("severity", string(input.Severity))

	record, usage, err := s.store.AppendError(sessionID, input)
	if err != nil {
		marker.SetError(err)
		return tracking.ErrorRecord{}, err
	}

	if input.Severity == tracking.SeverityCritical && input.CompensationRequired {
		record.ContactAttempted = s.attemptContact(sessionID, record, usage)
	}
	return record, nil
}

// attemptContact applies the contact policy for one critical compensable
// error. contactAttempted becomes true iff contact info was present at error
// time; whether the dispatch itself succeeds does not change the flag, only
// the logs.
func (s *CompensationService) attemptContact(sessionID string, record tracking.ErrorRecord, usage *tracking.ServiceUsageRecord) bool {
	var contact *tracking.ContactInfo
	if usage != nil {
		contact = usage.ContactInfo
	}
	if !contact.HasChannel() {
		if s.logger != nil {
			s.logger.Compensation().Warn("Contact failed - no info",
				"sessionId", logging.SanitizeSessionID(sessionID),
				"errorId", record.ErrorID,
				"serviceId", record.ServiceID)
		}
		return false
	}

	if err := s.store.MarkContactAttempted(sessionID, record.ErrorID); err != nil {
		if s.logger != nil {
			s.logger.Compensation().Error("Failed to flag contact attempt",
				"sessionId", logging.SanitizeSessionID(sessionID),
				"errorId", record.ErrorID,
				"error", err.Error())
		}
	}

	channel := "email"
	if contact.Email == "" {
		channel = "phone"
	}
	if s.logger != nil {
		s.logger.LogContactAttempt(sessionID, record.ErrorID, channel, true)
	}

	if contact.Email != "" && s.notifier != nil {
		notice := email.CompensationNotice{
			ToEmail:     contact.Email,
			ToName:      contact.Name,
			ServiceName: usage.ServiceType,
			OrderID:     usage.OrderID,
			ErrorID:     record.ErrorID,
			Amount:      record.CompensationAmount,
		}
		if err := s.notifier.SendCompensationNotice(notice); err != nil {
			if s.logger != nil {
				s.logger.Compensation().Error("Compensation notice dispatch failed",
					"errorId", record.ErrorID,
					"error", err.Error())
			}
		}
	} else if contact.Email == "" {
		if s.logger != nil {
			s.logger.Compensation().Info("Contact intent recorded for phone follow-up",
				"errorId", record.ErrorID,
				"phone", logging.SanitizePhone(contact.Phone))
		}
	}
	return true
}

// GetContactInfoForCompensation resolves the contact channel behind an order,
// preferring the payment tracker and falling back to the usage record.
func (s *CompensationService) GetContactInfoForCompensation(orderID string) (tracking.ContactInfo, error) {
	marker := s.perfTracker.StartOperation("compensation:contact_lookup")
	defer s.perfTracker.CompleteOperation(marker)

	tracker, session, err := s.store.LookupByOrderID(orderID)
	if err != nil {
		marker.SetError(err)
		return tracking.ContactInfo{}, err
	}

	if tracker.ContactInfo.HasChannel() {
		return *tracker.ContactInfo, nil
	}
	if session != nil {
		for _, usage := range session.ServiceUsage {
			if usage.OrderID == orderID && usage.ContactInfo.HasChannel() {
				return *usage.ContactInfo, nil
			}
		}
	}

	if s.logger != nil {
		s.logger.Compensation().Warn("No contact info for order", "orderId", orderID)
	}
	return tracking.ContactInfo{}, tracking.ErrContactInfoMissing
}

// ResolveError clears an error's retention pin once support has settled it.
func (s *CompensationService) ResolveError(sessionID, errorID string) error {
	marker := s.perfTracker.StartOperation("compensation:resolve")
	defer s.perfTracker.CompleteOperation(marker)

	if err := s.store.ResolveError(sessionID, errorID); err != nil {
		marker.SetError(err)
		return err
	}
	return nil
}
