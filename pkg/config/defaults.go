// Package config provides centralized default values for the tracking engine
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Retention Configuration
	SessionTTL           time.Duration
	SweepInterval        time.Duration
	SweepVerboseReports  bool
	ActiveSessionWindow  time.Duration
	ReportTimeWindow     time.Duration
	MaxCandidatesPerScan int

	// Support Agent Access
	SupportAgentEmail        string
	SupportAgentPasswordHash string
	SupportJWTSecret         string
	SupportTokenTTL          time.Duration

	// Compensation Contact
	CompensationEmailFrom     string
	CompensationEmailFromName string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Retention Configuration
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	SweepInterval = time.Duration(getEnvInt("SWEEP_INTERVAL_HOURS", 24)) * time.Hour
	SweepVerboseReports = getEnvString("SWEEP_VERBOSE_REPORTS", "true") == "true"
	ActiveSessionWindow = time.Duration(getEnvInt("ACTIVE_SESSION_WINDOW_MINUTES", 60)) * time.Minute
	ReportTimeWindow = time.Duration(getEnvInt("REPORT_TIME_WINDOW_MINUTES", 60)) * time.Minute
	MaxCandidatesPerScan = getEnvInt("MAX_CANDIDATES_PER_SCAN", 50)

	// Support Agent Access
	SupportAgentEmail = getEnvString("SUPPORT_AGENT_EMAIL", "support@facewisdom-ai.xyz")
	SupportAgentPasswordHash = getEnvString("SUPPORT_AGENT_PASSWORD_HASH", "")
	SupportJWTSecret = getEnvString("SUPPORT_JWT_SECRET", "")
	SupportTokenTTL = time.Duration(getEnvInt("SUPPORT_TOKEN_TTL_HOURS", 12)) * time.Hour

	// Compensation Contact
	CompensationEmailFrom = getEnvString("COMPENSATION_EMAIL_FROM", "noreply@facewisdom-ai.xyz")
	CompensationEmailFromName = getEnvString("COMPENSATION_EMAIL_FROM_NAME", "FaceWisdom Support")
}
