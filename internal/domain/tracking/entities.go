// Package tracking defines the anonymous-user tracking domain model:
// sessions, service usage records, payment trackers, and error records.
package tracking

import "time"

// ServiceStatus represents the lifecycle state of a single paid-feature attempt.
type ServiceStatus string

const (
	StatusStarted        ServiceStatus = "started"
	StatusPaymentPending ServiceStatus = "payment_pending"
	StatusPaid           ServiceStatus = "paid"
	StatusCompleted      ServiceStatus = "completed"
	StatusError          ServiceStatus = "error"
)

// PaymentStatus represents the gateway-side state of a tracked payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ErrorSeverity classifies a delivery failure. Severity is supplied by the
// calling analysis layer, never inferred here.
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// DeviceInfo is an opaque browser metadata blob. The engine never parses it.
type DeviceInfo struct {
	UserAgent string `json:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Screen    string `json:"screen,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// ContactInfo holds how to reach an otherwise anonymous user for refunds.
type ContactInfo struct {
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Name             string `json:"name,omitempty"`
	PreferredContact string `json:"preferredContact,omitempty"`
}

// HasChannel reports whether at least one reachable channel is present.
func (c *ContactInfo) HasChannel() bool {
	return c != nil && (c.Email != "" || c.Phone != "")
}

// ServiceUsageRecord is one attempt by a session to consume a paid feature.
// Records are append-only within their session and preserve insertion order.
type ServiceUsageRecord struct {
	ServiceID   string        `json:"serviceId"`
	ServiceType string        `json:"serviceType"`
	OrderID     string        `json:"orderId,omitempty"`
	PaymentID   string        `json:"paymentId,omitempty"`
	Status      ServiceStatus `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
	ContactInfo *ContactInfo  `json:"contactInfo,omitempty"`
}

// ErrorRecord is a delivery failure recorded against a service usage record.
// Only contactAttempted and resolved are mutated after creation.
type ErrorRecord struct {
	ErrorID              string        `json:"errorId"`
	ServiceID            string        `json:"serviceId"`
	ErrorType            string        `json:"errorType"`
	Severity             ErrorSeverity `json:"severity"`
	Message              string        `json:"message,omitempty"`
	CompensationRequired bool          `json:"compensationRequired"`
	// CompensationAmount is meaningful only when CompensationRequired is true.
	CompensationAmount int       `json:"compensationAmount,omitempty"`
	ContactAttempted   bool      `json:"contactAttempted"`
	Resolved           bool      `json:"resolved"`
	Timestamp          time.Time `json:"timestamp"`
}

// AnonymousSession is the transient identity of a user who never registers.
// The session is the sole owner of its usage and error records; they never
// outlive it. Invariant: LastActivity >= CreatedAt.
type AnonymousSession struct {
	SessionID    string                `json:"sessionId"`
	UserID       string                `json:"userId"`
	CreatedAt    time.Time             `json:"createdAt"`
	LastActivity time.Time             `json:"lastActivity"`
	DeviceInfo   DeviceInfo            `json:"deviceInfo"`
	ServiceUsage []*ServiceUsageRecord `json:"serviceUsage"`
	Errors       []*ErrorRecord        `json:"errors"`
}

// FindUsage returns the usage record with the given service ID, or nil.
func (s *AnonymousSession) FindUsage(serviceID string) *ServiceUsageRecord {
	for _, rec := range s.ServiceUsage {
		if rec.ServiceID == serviceID {
			return rec
		}
	}
	return nil
}

// FindError returns the error record with the given error ID, or nil.
func (s *AnonymousSession) FindError(errorID string) *ErrorRecord {
	for _, rec := range s.Errors {
		if rec.ErrorID == errorID {
			return rec
		}
	}
	return nil
}

// Pinned reports whether the session must survive retention sweeps: money in
// flight (payment_pending/paid usage) or an unresolved compensable error keeps
// a session in memory regardless of age.
func (s *AnonymousSession) Pinned() bool {
	for _, rec := range s.Errors {
		if rec.CompensationRequired && !rec.Resolved {
			return true
		}
	}
	for _, rec := range s.ServiceUsage {
		if rec.Status == StatusPaymentPending || rec.Status == StatusPaid {
			return true
		}
	}
	return false
}

// PaymentTracker correlates a gateway payment to a session/service attempt.
// PaymentID is globally unique across all sessions; it is the correlation key
// for later re-identification. SessionID is a back-reference, not ownership —
// a tracker may outlive its session.
type PaymentTracker struct {
	PaymentID     string        `json:"paymentId"`
	OrderID       string        `json:"orderId"`
	SessionID     string        `json:"sessionId"`
	UserID        string        `json:"userId"`
	ServiceType   string        `json:"serviceType"`
	Amount        int           `json:"amount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	ContactInfo   *ContactInfo  `json:"contactInfo,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Stats is the observability snapshot exposed to the admin surface.
type Stats struct {
	TotalSessions     int   `json:"totalSessions"`
	ActiveSessions    int   `json:"activeSessions"`
	TotalPayments     int   `json:"totalPayments"`
	TotalErrors       int   `json:"totalErrors"`
	UncontactedErrors int   `json:"uncontactedErrors"`
	OrphanedPayments  int64 `json:"orphanedPayments"`
}
