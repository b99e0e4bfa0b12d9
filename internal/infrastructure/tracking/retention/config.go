// Package retention provides the background sweep worker that ages out idle
// anonymous sessions.
package retention

import (
	"time"

	"github.com/syab726/project2-face-sub001/pkg/config"
)

// Config controls sweep cadence and reporting
type Config struct {
	SessionTTL       time.Duration
	SweepInterval    time.Duration
	VerboseReporting bool
}

// DefaultConfig returns retention configuration from the central defaults
func DefaultConfig() *Config {
	return &Config{
		SessionTTL:       config.SessionTTL,
		SweepInterval:    config.SweepInterval,
		VerboseReporting: config.SweepVerboseReports,
	}
}
