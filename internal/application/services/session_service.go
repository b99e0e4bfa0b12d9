// Package services provides application-level orchestration services
package services

import (
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// SessionService handles anonymous session and service usage lifecycles
type SessionService struct {
	store       *store.TrackingStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a new session service
func NewSessionService(trackingStore *store.TrackingStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		store:       trackingStore,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// CreateSession registers a new anonymous session for a first-time visitor.
// The device blob is stored opaquely; nothing in it is ever parsed.
func (s *SessionService) CreateSession(deviceInfo tracking.DeviceInfo) tracking.AnonymousSession {
	marker := s.perfTracker.StartOperation("session:create")
	defer s.perfTracker.CompleteOperation(marker)

	session := s.store.CreateSession(deviceInfo)
	marker.AddMetadata("sessionId", session.SessionID)

	if s.logger != nil {
		s.logger.Session().Info("Anonymous session created",
			"sessionId", logging.SanitizeSessionID(session.SessionID),
			"platform", deviceInfo.Platform)
	}
	return session
}

// GetSession returns the session and advances its lastActivity.
func (s *SessionService) GetSession(sessionID string) (tracking.AnonymousSession, error) {
	marker := s.perfTracker.StartOperation("session:get")
	defer s.perfTracker.CompleteOperation(marker)

	session, err := s.store.GetSession(sessionID)
	if err != nil {
		marker.SetError(err)
		return tracking.AnonymousSession{}, err
	}
	return session, nil
}

// StartServiceUsage records that the session began consuming a paid feature.
// Contact info supplied here becomes the compensation-contact channel should
// the delivery later fail.
func (s *SessionService) StartServiceUsage(sessionID, serviceType string, contact *tracking.ContactInfo) (tracking.ServiceUsageRecord, error) {
	marker := s.perfTracker.StartOperation("session:start_usage")
	defer s.perfTracker.CompleteOperation(marker)

	record, err := s.store.StartUsage(sessionID, serviceType, contact)
	if err != nil {
		marker.SetError(err)
		return tracking.ServiceUsageRecord{}, err
	}
	marker.AddMetadata("serviceId", record.ServiceID)
	marker.AddMetadata("serviceType", serviceType)
	return record, nil
}

// CompleteServiceUsage marks the usage as delivered. A missing service record
// surfaces as ErrServiceRecordNotFound so callers and metrics can see the
// race, but handlers may treat it as non-fatal.
func (s *SessionService) CompleteServiceUsage(sessionID, serviceID string) error {
	marker := s.perfTracker.StartOperation("session:complete_usage")
	defer s.perfTracker.CompleteOperation(marker)

	if err := s.store.CompleteUsage(sessionID, serviceID); err != nil {
		marker.SetError(err)
		if s.logger != nil {
			s.logger.Session().Warn("Service usage completion failed",
				"sessionId", logging.SanitizeSessionID(sessionID),
				"serviceId", serviceID,
				"error", err.Error())
		}
		return err
	}
	return nil
}
