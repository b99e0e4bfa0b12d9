// Package store provides the in-memory tracking store: anonymous sessions,
// their usage and error records, and the payment tracker index.
package store

import (
	"sync"
	"time"

	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/security"
)

// TrackingStore holds all engine state behind a single RWMutex. Sessions and
// payment trackers are mutated together in the linking path, so one lock
// keeps those transitions atomic. Everything lives in memory; a restart
// loses all state.
type TrackingStore struct {
	sessions map[string]*tracking.AnonymousSession
	payments map[string]*tracking.PaymentTracker

	// paymentOrder preserves tracker insertion order for deterministic
	// iteration; map iteration alone would randomize scan results.
	paymentOrder []string

	orphanedPayments int64

	mu     sync.RWMutex
	logger *logging.ChanneledLogger
}

// NewTrackingStore creates an empty tracking store
func NewTrackingStore(logger *logging.ChanneledLogger) *TrackingStore {
	if logger != nil {
		logger.System().Info("Initializing tracking store")
	}
	return &TrackingStore{
		sessions: make(map[string]*tracking.AnonymousSession),
		payments: make(map[string]*tracking.PaymentTracker),
		logger:   logger,
	}
}

// =============================================================================
// Session Operations
// =============================================================================

// CreateSession registers a new anonymous session and returns a copy of it.
func (ts *TrackingStore) CreateSession(deviceInfo tracking.DeviceInfo) tracking.AnonymousSession {
	start := time.Now()
	now := time.Now().UTC()

	session := &tracking.AnonymousSession{
		SessionID:    security.NewSessionID(),
		UserID:       security.NewUserID(),
		CreatedAt:    now,
		LastActivity: now,
		DeviceInfo:   deviceInfo,
		ServiceUsage: make([]*tracking.ServiceUsageRecord, 0),
		Errors:       make([]*tracking.ErrorRecord, 0),
	}

	ts.mu.Lock()
	ts.sessions[session.SessionID] = session
	snapshot := copySession(session)
	ts.mu.Unlock()

	if ts.logger != nil {
		ts.logger.Session().Debug("Session created",
			"sessionId", logging.SanitizeSessionID(session.SessionID),
			"duration", time.Since(start))
	}
	return snapshot
}

// GetSession returns a copy of the session and advances its lastActivity.
// This is the only read path that counts as user activity.
func (ts *TrackingStore) GetSession(sessionID string) (tracking.AnonymousSession, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.AnonymousSession{}, tracking.ErrSessionNotFound
	}
	touchLocked(session)
	return copySession(session), nil
}

// PeekSession returns a copy of the session without touching lastActivity.
// Support-agent lookups and background scans go through here.
func (ts *TrackingStore) PeekSession(sessionID string) (tracking.AnonymousSession, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.AnonymousSession{}, tracking.ErrSessionNotFound
	}
	return copySession(session), nil
}

// StartUsage appends a new service usage record in status "started". Contact
// info is optional at this point; it can also arrive later with the payment.
func (ts *TrackingStore) StartUsage(sessionID, serviceType string, contact *tracking.ContactInfo) (tracking.ServiceUsageRecord, error) {
	start := time.Now()
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.ServiceUsageRecord{}, tracking.ErrSessionNotFound
	}
	touchLocked(session)

	record := &tracking.ServiceUsageRecord{
		ServiceID:   security.NewServiceID(),
		ServiceType: serviceType,
		Status:      tracking.StatusStarted,
		ContactInfo: contact,
		Timestamp:   time.Now().UTC(),
	}
	session.ServiceUsage = append(session.ServiceUsage, record)

	if ts.logger != nil {
		ts.logger.Session().Debug("Service usage started",
			"sessionId", logging.SanitizeSessionID(sessionID),
			"serviceId", record.ServiceID,
			"serviceType", serviceType,
			"duration", time.Since(start))
	}
	return *record, nil
}

// CompleteUsage marks a usage record as completed, meaning the result was
// delivered to the user.
func (ts *TrackingStore) CompleteUsage(sessionID, serviceID string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.ErrSessionNotFound
	}
	touchLocked(session)

	record := session.FindUsage(serviceID)
	if record == nil {
		return tracking.ErrServiceRecordNotFound
	}
	// An errored record never transitions back to a success state; a fresh
	// attempt needs a new record.
	if record.Status != tracking.StatusError {
		record.Status = tracking.StatusCompleted
	}

	if ts.logger != nil {
		ts.logger.Session().Debug("Service usage completed",
			"sessionId", logging.SanitizeSessionID(sessionID),
			"serviceId", serviceID)
	}
	return nil
}

// =============================================================================
// Payment Operations
// =============================================================================

// LinkPaymentInput carries everything a gateway callback knows about a payment.
type LinkPaymentInput struct {
	PaymentID   string
	OrderID     string
	SessionID   string
	ServiceID   string
	ServiceType string
	Amount      int
	ContactInfo *tracking.ContactInfo
}

// LinkPayment records a payment tracker and, when the session and service
// record can be found, marks the usage as payment_pending. The tracker is
// created and indexed unconditionally, even when the session is gone; the
// money has already moved, so the payment must stay retrievable by ID for
// support. A missing session is still reported as ErrSessionNotFound, and a
// missing service record as ErrServiceRecordNotFound, so callers can observe
// the race without losing the tracker.
func (ts *TrackingStore) LinkPayment(input LinkPaymentInput) (tracking.PaymentTracker, error) {
	start := time.Now()
	now := time.Now().UTC()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	tracker := &tracking.PaymentTracker{
		PaymentID:     input.PaymentID,
		OrderID:       input.OrderID,
		SessionID:     input.SessionID,
		ServiceType:   input.ServiceType,
		Amount:        input.Amount,
		PaymentStatus: tracking.PaymentPending,
		ContactInfo:   input.ContactInfo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, dup := ts.payments[input.PaymentID]; !dup {
		ts.paymentOrder = append(ts.paymentOrder, input.PaymentID)
	}
	ts.payments[input.PaymentID] = tracker

	var linkErr error
	session, exists := ts.sessions[input.SessionID]
	if !exists {
		ts.orphanedPayments++
		linkErr = tracking.ErrSessionNotFound
	} else {
		touchLocked(session)
		tracker.UserID = session.UserID

		if record := session.FindUsage(input.ServiceID); record != nil {
			record.Status = tracking.StatusPaymentPending
			record.OrderID = input.OrderID
			record.PaymentID = input.PaymentID
			if input.ContactInfo != nil {
				record.ContactInfo = input.ContactInfo
			}
		} else {
			ts.orphanedPayments++
			linkErr = tracking.ErrServiceRecordNotFound
		}
	}

	if ts.logger != nil {
		ts.logger.Payment().Info("Payment linked",
			"paymentId", input.PaymentID,
			"orderId", input.OrderID,
			"sessionId", logging.SanitizeSessionID(input.SessionID),
			"amount", input.Amount,
			"linked", linkErr == nil,
			"duration", time.Since(start))
	}
	return *tracker, linkErr
}

// CompletePayment marks a tracker as completed and advances the linked usage
// record to paid when it still exists and has not errored.
func (ts *TrackingStore) CompletePayment(paymentID string) (tracking.PaymentTracker, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tracker, exists := ts.payments[paymentID]
	if !exists {
		return tracking.PaymentTracker{}, tracking.ErrPaymentNotFound
	}

	tracker.PaymentStatus = tracking.PaymentCompleted
	tracker.UpdatedAt = time.Now().UTC()

	if session, ok := ts.sessions[tracker.SessionID]; ok {
		touchLocked(session)
		for _, record := range session.ServiceUsage {
			if record.PaymentID == paymentID {
				// The webhook may land after a delivery error was already
				// recorded; the error keeps the record, only the tracker
				// advances.
				if record.Status != tracking.StatusError {
					record.Status = tracking.StatusPaid
				}
				break
			}
		}
	}

	if ts.logger != nil {
		ts.logger.Payment().Info("Payment completed", "paymentId", paymentID, "orderId", tracker.OrderID)
	}
	return *tracker, nil
}

// UpdatePaymentStatus sets an arbitrary gateway-side status (failed, refunded).
func (ts *TrackingStore) UpdatePaymentStatus(paymentID string, status tracking.PaymentStatus) (tracking.PaymentTracker, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tracker, exists := ts.payments[paymentID]
	if !exists {
		return tracking.PaymentTracker{}, tracking.ErrPaymentNotFound
	}
	tracker.PaymentStatus = status
	tracker.UpdatedAt = time.Now().UTC()

	if ts.logger != nil {
		ts.logger.Payment().Info("Payment status updated", "paymentId", paymentID, "status", string(status))
	}
	return *tracker, nil
}

// LookupByPaymentID returns the tracker and, when it still exists, the owning
// session. The session copy is taken without touching lastActivity.
func (ts *TrackingStore) LookupByPaymentID(paymentID string) (tracking.PaymentTracker, *tracking.AnonymousSession, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	tracker, exists := ts.payments[paymentID]
	if !exists {
		return tracking.PaymentTracker{}, nil, tracking.ErrPaymentNotFound
	}

	var session *tracking.AnonymousSession
	if s, ok := ts.sessions[tracker.SessionID]; ok {
		copied := copySession(s)
		session = &copied
	}
	return *tracker, session, nil
}

// LookupByOrderID scans trackers in insertion order and returns the first
// match for the order ID.
func (ts *TrackingStore) LookupByOrderID(orderID string) (tracking.PaymentTracker, *tracking.AnonymousSession, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	for _, paymentID := range ts.paymentOrder {
		tracker := ts.payments[paymentID]
		if tracker == nil || tracker.OrderID != orderID {
			continue
		}
		var session *tracking.AnonymousSession
		if s, ok := ts.sessions[tracker.SessionID]; ok {
			copied := copySession(s)
			session = &copied
		}
		return *tracker, session, nil
	}
	return tracking.PaymentTracker{}, nil, tracking.ErrPaymentNotFound
}

// PaymentSnapshot returns value copies of all trackers in insertion order.
func (ts *TrackingStore) PaymentSnapshot() []tracking.PaymentTracker {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	snapshot := make([]tracking.PaymentTracker, 0, len(ts.paymentOrder))
	for _, paymentID := range ts.paymentOrder {
		if tracker, ok := ts.payments[paymentID]; ok {
			snapshot = append(snapshot, *tracker)
		}
	}
	return snapshot
}

// =============================================================================
// Error Operations
// =============================================================================

// AppendErrorInput describes a delivery failure reported by the analysis layer.
type AppendErrorInput struct {
	ServiceID            string
	ErrorType            string
	Severity             tracking.ErrorSeverity
	Message              string
	CompensationRequired bool
	CompensationAmount   int
}

// AppendError records an error against a session. When the service ID matches
// a usage record, that record is forced to status error regardless of its
// previous state. Returns the stored record and a copy of the affected usage
// record (nil when no record matched); the compensation policy acts on the
// usage record's contact info.
func (ts *TrackingStore) AppendError(sessionID string, input AppendErrorInput) (tracking.ErrorRecord, *tracking.ServiceUsageRecord, error) {
	start := time.Now()
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.ErrorRecord{}, nil, tracking.ErrSessionNotFound
	}
	touchLocked(session)

	record := &tracking.ErrorRecord{
		ErrorID:              security.NewErrorID(),
		ServiceID:            input.ServiceID,
		ErrorType:            input.ErrorType,
		Severity:             input.Severity,
		Message:              input.Message,
		CompensationRequired: input.CompensationRequired,
		CompensationAmount:   input.CompensationAmount,
		Timestamp:            time.Now().UTC(),
	}
	session.Errors = append(session.Errors, record)

	var affected *tracking.ServiceUsageRecord
	if usage := session.FindUsage(input.ServiceID); usage != nil {
		usage.Status = tracking.StatusError
		copied := *usage
		if usage.ContactInfo != nil {
			c := *usage.ContactInfo
			copied.ContactInfo = &c
		}
		affected = &copied
	}

	if ts.logger != nil {
		ts.logger.Compensation().Info("Error recorded",
			"sessionId", logging.SanitizeSessionID(sessionID),
			"errorId", record.ErrorID,
			"errorType", input.ErrorType,
			"severity", string(input.Severity),
			"compensationRequired", input.CompensationRequired,
			"duration", time.Since(start))
	}
	return *record, affected, nil
}

// MarkContactAttempted flags an error record after a contact decision was made.
func (ts *TrackingStore) MarkContactAttempted(sessionID, errorID string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.ErrSessionNotFound
	}
	record := session.FindError(errorID)
	if record == nil {
		return tracking.ErrServiceRecordNotFound
	}
	record.ContactAttempted = true
	return nil
}

// ResolveError marks an error record as resolved, releasing its retention pin.
func (ts *TrackingStore) ResolveError(sessionID, errorID string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	session, exists := ts.sessions[sessionID]
	if !exists {
		return tracking.ErrSessionNotFound
	}
	record := session.FindError(errorID)
	if record == nil {
		return tracking.ErrServiceRecordNotFound
	}
	record.Resolved = true

	if ts.logger != nil {
		ts.logger.Compensation().Info("Error resolved",
			"sessionId", logging.SanitizeSessionID(sessionID),
			"errorId", errorID)
	}
	return nil
}

// =============================================================================
// Stats and Retention
// =============================================================================

// Stats aggregates the observability snapshot in one pass under a read lock.
func (ts *TrackingStore) Stats(activeWindow time.Duration) tracking.Stats {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-activeWindow)
	stats := tracking.Stats{
		TotalSessions:    len(ts.sessions),
		TotalPayments:    len(ts.payments),
		OrphanedPayments: ts.orphanedPayments,
	}

	for _, session := range ts.sessions {
		if session.LastActivity.After(cutoff) {
			stats.ActiveSessions++
		}
		for _, rec := range session.Errors {
			stats.TotalErrors++
			if rec.CompensationRequired && !rec.ContactAttempted {
				stats.UncontactedErrors++
			}
		}
	}
	return stats
}

// SweepResult summarizes one retention pass.
type SweepResult struct {
	Examined  int           `json:"examined"`
	Removed   int           `json:"removed"`
	Pinned    int           `json:"pinned"`
	Retained  int           `json:"retained"`
	Duration  time.Duration `json:"duration"`
	SweptAt   time.Time     `json:"sweptAt"`
	RemovedID []string      `json:"-"`
}

// Sweep removes sessions idle past the TTL. Sessions with money in flight or
// an unresolved compensable error are pinned and never removed, whatever
// their age. Payment trackers are kept even when their session goes.
func (ts *TrackingStore) Sweep(now time.Time, ttl time.Duration) SweepResult {
	start := time.Now()
	cutoff := now.Add(-ttl)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	result := SweepResult{SweptAt: now}
	for sessionID, session := range ts.sessions {
		result.Examined++
		if !session.LastActivity.Before(cutoff) {
			result.Retained++
			continue
		}
		if session.Pinned() {
			result.Pinned++
			continue
		}
		delete(ts.sessions, sessionID)
		result.Removed++
		result.RemovedID = append(result.RemovedID, sessionID)
	}
	result.Duration = time.Since(start)

	if ts.logger != nil {
		ts.logger.Retention().Info("Retention sweep finished",
			"examined", result.Examined,
			"removed", result.Removed,
			"pinned", result.Pinned,
			"retained", result.Retained,
			"duration", result.Duration)
	}
	return result
}

// SessionCount returns the number of live sessions.
func (ts *TrackingStore) SessionCount() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.sessions)
}

// =============================================================================
// Helpers
// =============================================================================

// touchLocked advances lastActivity, never backwards. Caller holds the lock.
func touchLocked(session *tracking.AnonymousSession) {
	now := time.Now().UTC()
	if now.After(session.LastActivity) {
		session.LastActivity = now
	}
}

// copySession deep-copies a session so callers can serialize it without
// holding the store lock.
func copySession(session *tracking.AnonymousSession) tracking.AnonymousSession {
	copied := *session
	copied.ServiceUsage = make([]*tracking.ServiceUsageRecord, len(session.ServiceUsage))
	for i, rec := range session.ServiceUsage {
		r := *rec
		if rec.ContactInfo != nil {
			c := *rec.ContactInfo
			r.ContactInfo = &c
		}
		copied.ServiceUsage[i] = &r
	}
	copied.Errors = make([]*tracking.ErrorRecord, len(session.Errors))
	for i, rec := range session.Errors {
		r := *rec
		copied.Errors[i] = &r
	}
	return copied
}
