// Package logging provides structured logging channels for the anonymous-user
// tracking engine, one slog logger per logical subsystem.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelSession      Channel = "session"      // Anonymous session lifecycle
	ChannelPayment      Channel = "payment"      // Payment correlation
	ChannelCompensation Channel = "compensation" // Error recording and compensation
	ChannelIdentify     Channel = "identify"     // Support-agent re-identification
	ChannelRetention    Channel = "retention"    // Background retention sweeps

	// Performance and monitoring channels
	ChannelPerf  Channel = "performance" // Performance monitoring and metrics
	ChannelAlert Channel = "alert"       // Performance alerts and warnings

	// Development and debugging channels
	ChannelDebug Channel = "debug" // Debug information
)

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels map[Channel]*slog.Logger
	config   *LoggerConfig
	configMu sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   `json:"outputToFile"`    // Whether to write logs to files
	OutputToConsole bool   `json:"outputToConsole"` // Whether to write logs to console
	LogDirectory    string `json:"logDirectory"`    // Directory for log files
	JSONFormat      bool   `json:"jsonFormat"`      // Use JSON format for structured logging
	IncludeSource   bool   `json:"includeSource"`   // Include source file and line in logs

	DefaultLevel  slog.Level             `json:"defaultLevel"`  // Default log level
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"` // Per-channel log levels
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	channels := []Channel{
		ChannelSystem, ChannelStartup, ChannelShutdown,
		ChannelSession, ChannelPayment, ChannelCompensation, ChannelIdentify,
		ChannelRetention, ChannelPerf, ChannelAlert, ChannelDebug,
	}

	for _, channel := range channels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()

	level := cl.config.DefaultLevel
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level = channelLevel
	}

	var writers []io.Writer

	if cl.config.OutputToConsole {
		writers = append(writers, os.Stdout)
	}

	if cl.config.OutputToFile {
		filename := fmt.Sprintf("%s.log", string(channel))
		path := filepath.Join(cl.config.LogDirectory, filename)

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}

		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) System() *slog.Logger       { return cl.channels[ChannelSystem] }
func (cl *ChanneledLogger) Startup() *slog.Logger      { return cl.channels[ChannelStartup] }
func (cl *ChanneledLogger) Shutdown() *slog.Logger     { return cl.channels[ChannelShutdown] }
func (cl *ChanneledLogger) Session() *slog.Logger      { return cl.channels[ChannelSession] }
func (cl *ChanneledLogger) Payment() *slog.Logger      { return cl.channels[ChannelPayment] }
func (cl *ChanneledLogger) Compensation() *slog.Logger { return cl.channels[ChannelCompensation] }
func (cl *ChanneledLogger) Identify() *slog.Logger     { return cl.channels[ChannelIdentify] }
func (cl *ChanneledLogger) Retention() *slog.Logger    { return cl.channels[ChannelRetention] }
func (cl *ChanneledLogger) Perf() *slog.Logger         { return cl.channels[ChannelPerf] }
func (cl *ChanneledLogger) Alert() *slog.Logger        { return cl.channels[ChannelAlert] }
func (cl *ChanneledLogger) Debug() *slog.Logger        { return cl.channels[ChannelDebug] }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	if logger, exists := cl.channels[channel]; exists {
		return logger
	}
	return cl.channels[ChannelSystem]
}

// WithOperation returns a logger with operation context
func (cl *ChanneledLogger) WithOperation(channel Channel, operation string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("operation", operation))
}

// SetChannelLevel dynamically sets the log level for a specific channel
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	if _, exists := cl.channels[channel]; !exists {
		return fmt.Errorf("channel %s does not exist", channel)
	}

	cl.configMu.Lock()
	cl.config.ChannelLevels[channel] = level
	cl.configMu.Unlock()

	newLogger, err := cl.createChannelLogger(channel)
	if err != nil {
		return fmt.Errorf("failed to recreate logger for channel %s: %w", channel, err)
	}
	cl.channels[channel] = newLogger

	cl.System().Info("Channel log level updated",
		slog.String("channel", string(channel)),
		slog.String("level", level.String()),
	)
	return nil
}

// LogContactAttempt logs a compensation contact decision with masked identifiers.
func (cl *ChanneledLogger) LogContactAttempt(sessionID, errorID, channelUsed string, attempted bool) {
	cl.Compensation().Info("Compensation contact decision",
		slog.String("sessionId", SanitizeSessionID(sessionID)),
		slog.String("errorId", errorID),
		slog.String("contactChannel", channelUsed),
		slog.Bool("attempted", attempted),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// SanitizeSessionID partially masks session IDs for privacy
func SanitizeSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return "********"
	}
	return sessionID[:4] + "****" + sessionID[len(sessionID)-4:]
}

// SanitizePhone partially masks a phone number for privacy
func SanitizePhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

// Close flushes and releases logger resources.
func (cl *ChanneledLogger) Close() error {
	cl.System().Info("Channeled logger shutting down")
	return nil
}
