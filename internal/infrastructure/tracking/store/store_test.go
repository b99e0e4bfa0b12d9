package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
)

func newTestStore() *TrackingStore {
	return NewTrackingStore(nil)
}

func TestCreateSessionInitialState(t *testing.T) {
	ts := newTestStore()

	session := ts.CreateSession(tracking.DeviceInfo{Platform: "iPhone", Timezone: "Asia/Seoul"})

	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.UserID)
	assert.Equal(t, "iPhone", session.DeviceInfo.Platform)
	assert.Empty(t, session.ServiceUsage)
	assert.Empty(t, session.Errors)
	assert.False(t, session.LastActivity.Before(session.CreatedAt))
}

func TestGetSessionAdvancesLastActivity(t *testing.T) {
	ts := newTestStore()
	created := ts.CreateSession(tracking.DeviceInfo{})

	time.Sleep(5 * time.Millisecond)

	got, err := ts.GetSession(created.SessionID)
	require.NoError(t, err)
	assert.True(t, got.LastActivity.After(created.LastActivity))
	assert.False(t, got.LastActivity.Before(got.CreatedAt))

	again, err := ts.GetSession(created.SessionID)
	require.NoError(t, err)
	assert.False(t, again.LastActivity.Before(got.LastActivity), "lastActivity must never move backward")
}

func TestGetSessionNotFound(t *testing.T) {
	ts := newTestStore()

	_, err := ts.GetSession("sess_missing")
	assert.ErrorIs(t, err, tracking.ErrSessionNotFound)
}

func TestPeekSessionDoesNotTouch(t *testing.T) {
	ts := newTestStore()
	created := ts.CreateSession(tracking.DeviceInfo{})

	time.Sleep(5 * time.Millisecond)

	peeked, err := ts.PeekSession(created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.LastActivity, peeked.LastActivity)
}

func TestUsageLifecycle(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})

	record, err := ts.StartUsage(session.SessionID, "mbti-face", nil)
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusStarted, record.Status)
	assert.Equal(t, "mbti-face", record.ServiceType)

	require.NoError(t, ts.CompleteUsage(session.SessionID, record.ServiceID))

	got, err := ts.PeekSession(session.SessionID)
	require.NoError(t, err)
	require.Len(t, got.ServiceUsage, 1)
	assert.Equal(t, tracking.StatusCompleted, got.ServiceUsage[0].Status)
}

func TestCompleteUsageMissingRecord(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})

	err := ts.CompleteUsage(session.SessionID, "svc_missing")
	assert.ErrorIs(t, err, tracking.ErrServiceRecordNotFound)
}

func TestLinkPaymentHappyPath(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, err := ts.StartUsage(session.SessionID, "mbti-face", nil)
	require.NoError(t, err)

	contact := &tracking.ContactInfo{Phone: "010-1111-2222", PreferredContact: "phone"}
	tracker, err := ts.LinkPayment(LinkPaymentInput{
		PaymentID:   "P1",
		OrderID:     "O1",
		SessionID:   session.SessionID,
		ServiceID:   record.ServiceID,
		ServiceType: "mbti-face",
		Amount:      2900,
		ContactInfo: contact,
	})
	require.NoError(t, err)
	assert.Equal(t, tracking.PaymentPending, tracker.PaymentStatus)
	assert.Equal(t, session.UserID, tracker.UserID)

	got, _ := ts.PeekSession(session.SessionID)
	usage := got.FindUsage(record.ServiceID)
	require.NotNil(t, usage)
	assert.Equal(t, tracking.StatusPaymentPending, usage.Status)
	assert.Equal(t, "O1", usage.OrderID)
	assert.Equal(t, "P1", usage.PaymentID)
	require.NotNil(t, usage.ContactInfo)
	assert.Equal(t, "010-1111-2222", usage.ContactInfo.Phone)

	foundTracker, foundSession, err := ts.LookupByPaymentID("P1")
	require.NoError(t, err)
	assert.Equal(t, 2900, foundTracker.Amount)
	require.NotNil(t, foundSession)
	assert.Equal(t, session.SessionID, foundSession.SessionID)
}

func TestStartUsageContactInfoSurvivesLink(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, err := ts.StartUsage(session.SessionID, "mbti-face", &tracking.ContactInfo{Email: "a@example.com"})
	require.NoError(t, err)

	// A link without contact info must not erase what arrived at start time.
	_, err = ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: session.SessionID, ServiceID: record.ServiceID, Amount: 2900,
	})
	require.NoError(t, err)

	got, _ := ts.PeekSession(session.SessionID)
	usage := got.FindUsage(record.ServiceID)
	require.NotNil(t, usage.ContactInfo)
	assert.Equal(t, "a@example.com", usage.ContactInfo.Email)
}

func TestLinkPaymentSessionGone(t *testing.T) {
	ts := newTestStore()

	tracker, err := ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P-orphan",
		OrderID:   "O-orphan",
		SessionID: "sess_expired",
		Amount:    4900,
	})
	assert.ErrorIs(t, err, tracking.ErrSessionNotFound)

	// The tracker must be retrievable regardless; the money already moved.
	found, session, lookupErr := ts.LookupByPaymentID("P-orphan")
	require.NoError(t, lookupErr)
	assert.Nil(t, session)
	assert.Equal(t, tracker.PaymentID, found.PaymentID)
	assert.EqualValues(t, 1, ts.Stats(time.Hour).OrphanedPayments)
}

func TestLinkPaymentMissingServiceRecord(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})

	_, err := ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P2",
		OrderID:   "O2",
		SessionID: session.SessionID,
		ServiceID: "svc_missing",
		Amount:    1900,
	})
	assert.ErrorIs(t, err, tracking.ErrServiceRecordNotFound)

	_, _, lookupErr := ts.LookupByPaymentID("P2")
	assert.NoError(t, lookupErr)
}

func TestCompletePaymentAdvancesUsage(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	_, err := ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: session.SessionID, ServiceID: record.ServiceID, Amount: 2900,
	})
	require.NoError(t, err)

	tracker, err := ts.CompletePayment("P1")
	require.NoError(t, err)
	assert.Equal(t, tracking.PaymentCompleted, tracker.PaymentStatus)

	got, _ := ts.PeekSession(session.SessionID)
	assert.Equal(t, tracking.StatusPaid, got.FindUsage(record.ServiceID).Status)
}

func TestCompletePaymentKeepsErroredUsage(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	_, err := ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: session.SessionID, ServiceID: record.ServiceID, Amount: 2900,
	})
	require.NoError(t, err)
	_, _, err = ts.AppendError(session.SessionID, AppendErrorInput{
		ServiceID: record.ServiceID, ErrorType: "gemini_api_error",
		Severity: tracking.SeverityCritical, CompensationRequired: true,
	})
	require.NoError(t, err)

	// The gateway webhook lands after the delivery error was recorded. The
	// tracker still advances; the usage record stays errored.
	tracker, err := ts.CompletePayment("P1")
	require.NoError(t, err)
	assert.Equal(t, tracking.PaymentCompleted, tracker.PaymentStatus)

	got, _ := ts.PeekSession(session.SessionID)
	assert.Equal(t, tracking.StatusError, got.FindUsage(record.ServiceID).Status)
}

func TestCompleteUsageKeepsErroredRecord(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	_, _, err := ts.AppendError(session.SessionID, AppendErrorInput{
		ServiceID: record.ServiceID, ErrorType: "render_glitch",
		Severity: tracking.SeverityHigh, CompensationRequired: true,
	})
	require.NoError(t, err)

	require.NoError(t, ts.CompleteUsage(session.SessionID, record.ServiceID))

	got, _ := ts.PeekSession(session.SessionID)
	assert.Equal(t, tracking.StatusError, got.FindUsage(record.ServiceID).Status)
}

func TestCompletePaymentNotFound(t *testing.T) {
	ts := newTestStore()

	_, err := ts.CompletePayment("P-missing")
	assert.ErrorIs(t, err, tracking.ErrPaymentNotFound)
}

func TestLookupByOrderID(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "saju", nil)
	ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: session.SessionID, ServiceID: record.ServiceID, Amount: 5900,
	})

	tracker, found, err := ts.LookupByOrderID("O1")
	require.NoError(t, err)
	assert.Equal(t, "P1", tracker.PaymentID)
	require.NotNil(t, found)

	_, _, err = ts.LookupByOrderID("O-missing")
	assert.ErrorIs(t, err, tracking.ErrPaymentNotFound)
}

func TestAppendErrorOverridesStatus(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: session.SessionID, ServiceID: record.ServiceID, Amount: 2900,
	})
	ts.CompletePayment("P1")

	errRecord, usage, err := ts.AppendError(session.SessionID, AppendErrorInput{
		ServiceID:            record.ServiceID,
		ErrorType:            "gemini_api_error",
		Severity:             tracking.SeverityCritical,
		Message:              "timeout",
		CompensationRequired: true,
		CompensationAmount:   2900,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, errRecord.ErrorID)
	require.NotNil(t, usage)
	// An error always overrides paid.
	assert.Equal(t, tracking.StatusError, usage.Status)

	got, _ := ts.PeekSession(session.SessionID)
	assert.Equal(t, tracking.StatusError, got.FindUsage(record.ServiceID).Status)
	require.Len(t, got.Errors, 1)
	assert.False(t, got.Errors[0].ContactAttempted)
	assert.False(t, got.Errors[0].Resolved)
}

func TestAppendErrorSessionNotFound(t *testing.T) {
	ts := newTestStore()

	_, _, err := ts.AppendError("sess_missing", AppendErrorInput{ServiceID: "svc", ErrorType: "x", Severity: tracking.SeverityLow})
	assert.ErrorIs(t, err, tracking.ErrSessionNotFound)
}

func TestMarkContactAttemptedAndResolve(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	errRecord, _, err := ts.AppendError(session.SessionID, AppendErrorInput{
		ServiceID: record.ServiceID, ErrorType: "x", Severity: tracking.SeverityHigh,
		CompensationRequired: true,
	})
	require.NoError(t, err)

	require.NoError(t, ts.MarkContactAttempted(session.SessionID, errRecord.ErrorID))
	require.NoError(t, ts.ResolveError(session.SessionID, errRecord.ErrorID))

	got, _ := ts.PeekSession(session.SessionID)
	assert.True(t, got.Errors[0].ContactAttempted)
	assert.True(t, got.Errors[0].Resolved)
}

func TestPaymentSnapshotPreservesInsertionOrder(t *testing.T) {
	ts := newTestStore()
	for _, id := range []string{"P3", "P1", "P2"} {
		ts.LinkPayment(LinkPaymentInput{PaymentID: id, OrderID: "O-" + id, SessionID: "none", Amount: 100})
	}

	snapshot := ts.PaymentSnapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "P3", snapshot[0].PaymentID)
	assert.Equal(t, "P1", snapshot[1].PaymentID)
	assert.Equal(t, "P2", snapshot[2].PaymentID)
}

func TestStatsCounters(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(session.SessionID, "mbti-face", nil)
	ts.AppendError(session.SessionID, AppendErrorInput{
		ServiceID: record.ServiceID, ErrorType: "x", Severity: tracking.SeverityCritical,
		CompensationRequired: true,
	})

	stats := ts.Stats(time.Hour)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 1, stats.TotalErrors)
	assert.Equal(t, 1, stats.UncontactedErrors)

	ts.MarkContactAttempted(session.SessionID, firstErrorID(t, ts, session.SessionID))
	stats = ts.Stats(time.Hour)
	assert.Equal(t, 0, stats.UncontactedErrors)
}

func firstErrorID(t *testing.T, ts *TrackingStore, sessionID string) string {
	t.Helper()
	session, err := ts.PeekSession(sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, session.Errors)
	return session.Errors[0].ErrorID
}

func TestSweepRemovesIdleKeepsPinned(t *testing.T) {
	ts := newTestStore()
	ttl := 24 * time.Hour

	idle := ts.CreateSession(tracking.DeviceInfo{})

	pinned := ts.CreateSession(tracking.DeviceInfo{})
	record, _ := ts.StartUsage(pinned.SessionID, "mbti-face", nil)
	ts.AppendError(pinned.SessionID, AppendErrorInput{
		ServiceID: record.ServiceID, ErrorType: "x", Severity: tracking.SeverityCritical,
		CompensationRequired: true,
	})

	inFlight := ts.CreateSession(tracking.DeviceInfo{})
	payRecord, _ := ts.StartUsage(inFlight.SessionID, "saju", nil)
	ts.LinkPayment(LinkPaymentInput{
		PaymentID: "P1", OrderID: "O1",
		SessionID: inFlight.SessionID, ServiceID: payRecord.ServiceID, Amount: 2900,
	})

	// 25 hours from now, only the idle session with nothing pinning it goes.
	future := time.Now().UTC().Add(25 * time.Hour)
	result := ts.Sweep(future, ttl)

	assert.Equal(t, 3, result.Examined)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 2, result.Pinned)

	_, err := ts.PeekSession(idle.SessionID)
	assert.ErrorIs(t, err, tracking.ErrSessionNotFound)
	_, err = ts.PeekSession(pinned.SessionID)
	assert.NoError(t, err)
	_, err = ts.PeekSession(inFlight.SessionID)
	assert.NoError(t, err)

	// Resolving the error unpins the session for the next sweep.
	got, _ := ts.PeekSession(pinned.SessionID)
	require.NoError(t, ts.ResolveError(pinned.SessionID, got.Errors[0].ErrorID))

	result = ts.Sweep(future, ttl)
	assert.Equal(t, 1, result.Removed)
	_, err = ts.PeekSession(pinned.SessionID)
	assert.ErrorIs(t, err, tracking.ErrSessionNotFound)
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	ts := newTestStore()
	session := ts.CreateSession(tracking.DeviceInfo{})

	result := ts.Sweep(time.Now().UTC(), 24*time.Hour)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 1, result.Retained)

	_, err := ts.PeekSession(session.SessionID)
	assert.NoError(t, err)
}
