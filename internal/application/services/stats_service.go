package services

import (
	"github.com/syab726/project2-face-sub001/internal/domain/tracking"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// StatsService exposes the observability snapshot for the admin surface
type StatsService struct {
	store       *store.TrackingStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewStatsService creates a new stats service
func NewStatsService(trackingStore *store.TrackingStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StatsService {
	return &StatsService{
		store:       trackingStore,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetAnonymousUserStats aggregates session, payment, and error counters.
// activeSessions counts sessions with activity inside the configured window.
func (s *StatsService) GetAnonymousUserStats() tracking.Stats {
	marker := s.perfTracker.StartOperation("stats:snapshot")
	defer s.perfTracker.CompleteOperation(marker)

	return s.store.Stats(config.ActiveSessionWindow)
}

// GetPerformanceStats returns the performance tracker's overall counters.
func (s *StatsService) GetPerformanceStats() map[string]any {
	return s.perfTracker.GetOverallStats()
}
