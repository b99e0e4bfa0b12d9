package performance

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers    map[string]*Marker
	alerts     []*Alert
	thresholds *AlertThresholds
	mu         sync.RWMutex
	started    time.Time
	config     *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`   // Maximum number of markers to retain
	MaxAlerts    int  `json:"maxAlerts"`    // Maximum number of alerts to retain
	EnableAlerts bool `json:"enableAlerts"` // Whether to generate performance alerts
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   10000,
		MaxAlerts:    500,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`
	IdentifyScanThreshold     time.Duration `json:"identifyScanThreshold"`
	RetentionSweepThreshold   time.Duration `json:"retentionSweepThreshold"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		SlowResponseThreshold:     500 * time.Millisecond,
		CriticalResponseThreshold: 5 * time.Second,
		IdentifyScanThreshold:     time.Second,
		RetentionSweepThreshold:   10 * time.Second,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers:    make(map[string]*Marker),
		alerts:     make([]*Alert, 0),
		thresholds: DefaultAlertThresholds(),
		started:    time.Now(),
		config:     config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%d", operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// CompleteOperation manually completes an operation and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}

	marker.Complete()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}
}

// checkForAlerts evaluates a completed marker against alert thresholds
func (t *Tracker) checkForAlerts(marker *Marker) {
	var alerts []*Alert

	if marker.Duration > t.thresholds.CriticalResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertCritical,
			"Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.thresholds.SlowResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertWarning,
			"Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.HasPrefix(marker.Operation, "identify"):
		if marker.Duration > t.thresholds.IdentifyScanThreshold {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Identification scan exceeded threshold"))
		}
	case strings.HasPrefix(marker.Operation, "retention"):
		if marker.Duration > t.thresholds.RetentionSweepThreshold {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Retention sweep exceeded threshold"))
		}
	}

	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

// createAlert creates a new performance alert
func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, message string) *Alert {
	return &Alert{
		ID:        fmt.Sprintf("alert_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		Actual:    marker.Duration,
		Message:   message,
	}
}

// GetRecentMetrics returns markers for operations completed within the specified duration
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker

	for _, marker := range t.markers {
		if marker.Completed && marker.EndTime.After(cutoff) {
			metrics = append(metrics, *marker)
		}
	}
	return metrics
}

// GetAlerts returns the retained performance alerts
func (t *Tracker) GetAlerts() []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	alerts := make([]*Alert, len(t.alerts))
	copy(alerts, t.alerts)
	return alerts
}

// Cleanup removes old markers to prevent unbounded growth
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour) // Keep last hour of markers
	for id, marker := range t.markers {
		if marker.Completed && marker.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}

	if len(t.markers) > t.config.MaxMarkers {
		count := 0
		for id := range t.markers {
			if count > t.config.MaxMarkers/2 {
				delete(t.markers, id)
			}
			count++
		}
	}
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	activeCount := 0
	completedCount := 0

	for _, marker := range t.markers {
		if marker.Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
	}
}
