package services

import (
	"sort"
	"time"

	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// Additive match weights. Time and amount only count together; supplying one
// without the other contributes nothing.
const (
	weightTimeAndAmount = 30
	weightPhone         = 25
	weightEmail         = 20
	weightCard          = 15
)

// Confidence bucket cutoffs over the additive score. The weights alone leave
// the cutoffs open, so they are fixed here: a high match needs at least two
// strong facts (e.g. time+amount plus phone), a medium match one.
const (
	highConfidenceThreshold   = 50
	mediumConfidenceThreshold = 25
)

// IdentificationService ranks candidate sessions from partial facts supplied
// in a support conversation. It is advisory and never mutates state.
type IdentificationService struct {
	store       *store.TrackingStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewIdentificationService creates a new identification service
func NewIdentificationService(trackingStore *store.TrackingStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IdentificationService {
	return &IdentificationService{
		store:       trackingStore,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// MatchCriteria are free-text-derived structured fragments from a support
// conversation. Nil/empty fields mean "not supplied".
type MatchCriteria struct {
	TimeStart    *time.Time `json:"timeStart,omitempty"`
	TimeEnd      *time.Time `json:"timeEnd,omitempty"`
	Amount       *int       `json:"amount,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	CardLastFour string     `json:"cardLastFour,omitempty"`
}

// MatchCandidate is one ranked (session, trackers) pair.
type MatchCandidate struct {
	SessionID  string                     `json:"sessionId"`
	Session    *tracking.AnonymousSession `json:"session,omitempty"`
	Trackers   []tracking.PaymentTracker  `json:"trackers"`
	MatchScore int                        `json:"matchScore"`
	Confidence string                     `json:"confidence"`
}

// UserReport is a structured self-report from an affected user.
type UserReport struct {
	TransactionTime    *time.Time `json:"transactionTime,omitempty"`
	TransactionAmount  *int       `json:"transactionAmount,omitempty"`
	CardLastFour       string     `json:"cardLastFour,omitempty"`
	PhoneNumber        string     `json:"phoneNumber,omitempty"`
	Email              string     `json:"email,omitempty"`
	ServiceType        string     `json:"serviceType,omitempty"`
	ProblemDescription string     `json:"problemDescription"`
}

// Report statuses
const (
	ReportAutoMatched        = "auto_matched"
	ReportManualReviewNeeded = "manual_review_needed"
)

// ReportResult is the triage outcome for one user report.
type ReportResult struct {
	Status            string           `json:"status"`
	RecommendedAction string           `json:"recommendedAction,omitempty"`
	Match             *MatchCandidate  `json:"match,omitempty"`
	Candidates        []MatchCandidate `json:"candidates"`
}

// FindByTimeAndAmount returns all candidates whose tracker was created inside
// [start, end] with exactly the given amount.
func (s *IdentificationService) FindByTimeAndAmount(start, end time.Time, amount int) []MatchCandidate {
	return s.FindByMultipleConditions(MatchCriteria{
		TimeStart: &start,
		TimeEnd:   &end,
		Amount:    &amount,
	})
}

// FindByPhone returns candidates whose tracker contact info carries the exact phone.
func (s *IdentificationService) FindByPhone(phone string) []MatchCandidate {
	return s.FindByMultipleConditions(MatchCriteria{Phone: phone})
}

// FindByEmail returns candidates whose tracker contact info carries the exact email.
func (s *IdentificationService) FindByEmail(email string) []MatchCandidate {
	return s.FindByMultipleConditions(MatchCriteria{Email: email})
}

// FindByMultipleConditions scores every session against the supplied facts.
// Each satisfied condition adds its fixed weight once per session; scores are
// sorted descending, ties broken by discovery order over the tracker index.
// Card-digit matching carries a defined weight but trackers hold no card
// data, so that condition never fires; it is kept so the scoring contract is
// complete when card data arrives.
func (s *IdentificationService) FindByMultipleConditions(criteria MatchCriteria) []MatchCandidate {
	marker := s.perfTracker.StartOperation("identify:scan")
	defer s.perfTracker.CompleteOperation(marker)

	type accum struct {
		sessionID     string
		trackers      []tracking.PaymentTracker
		timeAndAmount bool
		phone         bool
		email         bool
	}

	snapshot := s.store.PaymentSnapshot()
	marker.AddMetadata("trackersScanned", len(snapshot))

	var order []string
	bySession := make(map[string]*accum)

	for _, tracker := range snapshot {
		matchedAny := false

		timeAndAmount := criteria.TimeStart != nil && criteria.TimeEnd != nil && criteria.Amount != nil &&
			!tracker.CreatedAt.Before(*criteria.TimeStart) && !tracker.CreatedAt.After(*criteria.TimeEnd) &&
			tracker.Amount == *criteria.Amount
		phone := criteria.Phone != "" && tracker.ContactInfo != nil && tracker.ContactInfo.Phone == criteria.Phone
		emailMatch := criteria.Email != "" && tracker.ContactInfo != nil && tracker.ContactInfo.Email == criteria.Email
		matchedAny = timeAndAmount || phone || emailMatch
		if !matchedAny {
			continue
		}

		key := tracker.SessionID
		if key == "" {
			key = "payment:" + tracker.PaymentID
		}
		acc, seen := bySession[key]
		if !seen {
			acc = &accum{sessionID: tracker.SessionID}
			bySession[key] = acc
			order = append(order, key)
		}
		acc.trackers = append(acc.trackers, tracker)
		acc.timeAndAmount = acc.timeAndAmount || timeAndAmount
		acc.phone = acc.phone || phone
		acc.email = acc.email || emailMatch
	}

	candidates := make([]MatchCandidate, 0, len(order))
	for _, key := range order {
		acc := bySession[key]
		score := 0
		if acc.timeAndAmount {
			score += weightTimeAndAmount
		}
		if acc.phone {
			score += weightPhone
		}
		if acc.email {
			score += weightEmail
		}

		candidate := MatchCandidate{
			SessionID:  acc.sessionID,
			Trackers:   acc.trackers,
			MatchScore: score,
			Confidence: confidenceBucket(score),
		}
		if acc.sessionID != "" {
			if session, err := s.store.PeekSession(acc.sessionID); err == nil {
				candidate.Session = &session
			}
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	if len(candidates) > config.MaxCandidatesPerScan {
		candidates = candidates[:config.MaxCandidatesPerScan]
	}

	if s.logger != nil {
		s.logger.Identify().Info("Identification scan finished",
			"trackersScanned", len(snapshot),
			"candidates", len(candidates))
	}
	return candidates
}

// ReceiveUserReport triages a structured self-report. Exactly one high
// confidence match short-circuits to auto_matched with an immediate
// compensation recommendation; anything else goes to a human.
func (s *IdentificationService) ReceiveUserReport(report UserReport) ReportResult {
	marker := s.perfTracker.StartOperation("identify:user_report")
	defer s.perfTracker.CompleteOperation(marker)

	criteria := MatchCriteria{
		Amount:       report.TransactionAmount,
		Phone:        report.PhoneNumber,
		Email:        report.Email,
		CardLastFour: report.CardLastFour,
	}
	if report.TransactionTime != nil {
		start := report.TransactionTime.Add(-config.ReportTimeWindow)
		end := report.TransactionTime.Add(config.ReportTimeWindow)
		criteria.TimeStart = &start
		criteria.TimeEnd = &end
	}

	candidates := s.FindByMultipleConditions(criteria)

	var high []int
	for i, c := range candidates {
		if c.Confidence == "high" {
			high = append(high, i)
		}
	}

	if len(high) == 1 {
		match := candidates[high[0]]
		if s.logger != nil {
			s.logger.Identify().Info("User report auto-matched",
				"sessionId", logging.SanitizeSessionID(match.SessionID),
				"matchScore", match.MatchScore)
		}
		return ReportResult{
			Status:            ReportAutoMatched,
			RecommendedAction: "immediate_compensation",
			Match:             &match,
			Candidates:        candidates,
		}
	}

	if s.logger != nil {
		s.logger.Identify().Info("User report needs manual review",
			"candidates", len(candidates),
			"highConfidence", len(high))
	}
	return ReportResult{
		Status:     ReportManualReviewNeeded,
		Candidates: candidates,
	}
}

func confidenceBucket(score int) string {
	switch {
	case score >= highConfidenceThreshold:
		return "high"
	case score >= mediumConfidenceThreshold:
		return "medium"
	default:
		return "low"
	}
}
