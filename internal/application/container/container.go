// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/syab726/project2-face-sub001/internal/application/services"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/email"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Tracking Services (stateless singletons over the shared store)
	SessionService        *services.SessionService
	PaymentService        *services.PaymentService
	CompensationService   *services.CompensationService
	IdentificationService *services.IdentificationService
	StatsService          *services.StatsService
	AuthService           *services.AuthService

	// Infrastructure Dependencies
	TrackingStore *store.TrackingStore
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
	EmailService  email.Service
}

// NewContainer creates and wires all singleton services. emailService may be
// nil when no dispatch credentials are configured; compensation then degrades
// to logged contact intents.
func NewContainer(trackingStore *store.TrackingStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, emailService email.Service) *Container {
	return &Container{
		SessionService:        services.NewSessionService(trackingStore, logger, perfTracker),
		PaymentService:        services.NewPaymentService(trackingStore, logger, perfTracker),
		CompensationService:   services.NewCompensationService(trackingStore, emailService, logger, perfTracker),
		IdentificationService: services.NewIdentificationService(trackingStore, logger, perfTracker),
		StatsService:          services.NewStatsService(trackingStore, logger, perfTracker),
		AuthService:           services.NewAuthService(logger),

		TrackingStore: trackingStore,
		Logger:        logger,
		PerfTracker:   perfTracker,
		EmailService:  emailService,
	}
}
