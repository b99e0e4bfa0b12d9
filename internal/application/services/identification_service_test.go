package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

func newIdentificationFixture() (*IdentificationService, *store.TrackingStore) {
	trackingStore := store.NewTrackingStore(nil)
	perfTracker := performance.NewTracker(nil)
	return NewIdentificationService(trackingStore, nil, perfTracker), trackingStore
}

func seedPayment(t *testing.T, trackingStore *store.TrackingStore, paymentID, orderID string, amount int, contact *tracking.ContactInfo) string {
	t.Helper()
	session := trackingStore.CreateSession(tracking.DeviceInfo{})
	record, err := trackingStore.StartUsage(session.SessionID, "mbti-face", nil)
	require.NoError(t, err)
	_, err = trackingStore.LinkPayment(store.LinkPaymentInput{
		PaymentID: paymentID, OrderID: orderID,
		SessionID: session.SessionID, ServiceID: record.ServiceID,
		ServiceType: "mbti-face", Amount: amount, ContactInfo: contact,
	})
	require.NoError(t, err)
	return session.SessionID
}

func TestFindByPhone(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	sessionID := seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Phone: "010-1111-2222"})
	seedPayment(t, trackingStore, "P2", "O2", 2900, &tracking.ContactInfo{Phone: "010-3333-4444"})

	candidates := svc.FindByPhone("010-1111-2222")
	require.Len(t, candidates, 1)
	assert.Equal(t, sessionID, candidates[0].SessionID)
	assert.Equal(t, weightPhone, candidates[0].MatchScore)
	assert.Equal(t, "medium", candidates[0].Confidence)
	require.NotNil(t, candidates[0].Session)
}

func TestFindByEmail(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	sessionID := seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Email: "a@example.com"})

	candidates := svc.FindByEmail("a@example.com")
	require.Len(t, candidates, 1)
	assert.Equal(t, sessionID, candidates[0].SessionID)
	assert.Equal(t, weightEmail, candidates[0].MatchScore)
	assert.Equal(t, "low", candidates[0].Confidence)
}

func TestFindByTimeAndAmount(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	sessionID := seedPayment(t, trackingStore, "P1", "O1", 2900, nil)
	seedPayment(t, trackingStore, "P2", "O2", 5900, nil)

	now := time.Now().UTC()
	candidates := svc.FindByTimeAndAmount(now.Add(-time.Minute), now.Add(time.Minute), 2900)
	require.Len(t, candidates, 1)
	assert.Equal(t, sessionID, candidates[0].SessionID)
	assert.Equal(t, weightTimeAndAmount, candidates[0].MatchScore)
}

func TestScoresAreMonotonicAsFactsAreAdded(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	sessionID := seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Phone: "010-1111-2222"})

	amount := 2900
	// Amount without a time range contributes nothing; phone alone scores 25.
	candidates := svc.FindByMultipleConditions(MatchCriteria{
		Amount: &amount,
		Phone:  "010-1111-2222",
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, sessionID, candidates[0].SessionID)
	assert.Equal(t, 25, candidates[0].MatchScore)
	assert.Equal(t, "medium", candidates[0].Confidence)

	// Adding a time range covering the tracker raises the same session to 55.
	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	candidates = svc.FindByMultipleConditions(MatchCriteria{
		TimeStart: &start,
		TimeEnd:   &end,
		Amount:    &amount,
		Phone:     "010-1111-2222",
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, 55, candidates[0].MatchScore)
	assert.Equal(t, "high", candidates[0].Confidence)
}

func TestRankingIsDescendingWithStableTies(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	weak := seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Email: "a@example.com"})
	strong := seedPayment(t, trackingStore, "P2", "O2", 2900, &tracking.ContactInfo{
		Email: "a@example.com", Phone: "010-1111-2222",
	})

	candidates := svc.FindByMultipleConditions(MatchCriteria{
		Email: "a@example.com",
		Phone: "010-1111-2222",
	})
	require.Len(t, candidates, 2)
	assert.Equal(t, strong, candidates[0].SessionID)
	assert.Equal(t, 45, candidates[0].MatchScore)
	assert.Equal(t, weak, candidates[1].SessionID)
	assert.Equal(t, 20, candidates[1].MatchScore)
}

func TestOrphanTrackerStillMatchable(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	trackingStore.LinkPayment(store.LinkPaymentInput{
		PaymentID: "P-orphan", OrderID: "O-orphan", SessionID: "sess_gone",
		Amount: 2900, ContactInfo: &tracking.ContactInfo{Phone: "010-1111-2222"},
	})

	candidates := svc.FindByPhone("010-1111-2222")
	require.Len(t, candidates, 1)
	assert.Nil(t, candidates[0].Session)
	require.Len(t, candidates[0].Trackers, 1)
	assert.Equal(t, "P-orphan", candidates[0].Trackers[0].PaymentID)
}

func TestReceiveUserReportAutoMatched(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	sessionID := seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Phone: "010-1111-2222"})

	now := time.Now().UTC()
	amount := 2900
	result := svc.ReceiveUserReport(UserReport{
		TransactionTime:    &now,
		TransactionAmount:  &amount,
		PhoneNumber:        "010-1111-2222",
		ProblemDescription: "paid but never got my result",
	})

	assert.Equal(t, ReportAutoMatched, result.Status)
	assert.Equal(t, "immediate_compensation", result.RecommendedAction)
	require.NotNil(t, result.Match)
	assert.Equal(t, sessionID, result.Match.SessionID)
	assert.Equal(t, 55, result.Match.MatchScore)
}

func TestReceiveUserReportManualReview(t *testing.T) {
	svc, trackingStore := newIdentificationFixture()
	seedPayment(t, trackingStore, "P1", "O1", 2900, &tracking.ContactInfo{Phone: "010-1111-2222"})
	seedPayment(t, trackingStore, "P2", "O2", 2900, &tracking.ContactInfo{Phone: "010-1111-2222"})

	now := time.Now().UTC()
	amount := 2900
	result := svc.ReceiveUserReport(UserReport{
		TransactionTime:    &now,
		TransactionAmount:  &amount,
		PhoneNumber:        "010-1111-2222",
		ProblemDescription: "two sessions share this phone",
	})

	assert.Equal(t, ReportManualReviewNeeded, result.Status)
	assert.Nil(t, result.Match)
	assert.Len(t, result.Candidates, 2)

	// Phone alone is never enough to auto-match.
	weakResult := svc.ReceiveUserReport(UserReport{
		PhoneNumber:        "010-1111-2222",
		ProblemDescription: "no time or amount known",
	})
	assert.Equal(t, ReportManualReviewNeeded, weakResult.Status)
}
