package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/security"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// ErrInvalidCredentials is returned for any failed support login. The reason
// is never disclosed to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates support agents and issues their access tokens
type AuthService struct {
	agentEmail   string
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
	logger       *logging.ChanneledLogger
}

// NewAuthService creates a new auth service from the central configuration
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		agentEmail:   config.SupportAgentEmail,
		passwordHash: config.SupportAgentPasswordHash,
		jwtSecret:    config.SupportJWTSecret,
		tokenTTL:     config.SupportTokenTTL,
		logger:       logger,
	}
}

// Login verifies support-agent credentials and returns a signed token.
func (s *AuthService) Login(agentEmail, password string) (string, error) {
	if s.passwordHash == "" || s.jwtSecret == "" {
		if s.logger != nil {
			s.logger.System().Error("Support login attempted without configured credentials")
		}
		return "", ErrInvalidCredentials
	}

	if agentEmail != s.agentEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		if s.logger != nil {
			s.logger.System().Warn("Support login failed", "agentEmail", agentEmail)
		}
		return "", ErrInvalidCredentials
	}

	token, err := security.GenerateSupportToken(agentEmail, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.System().Info("Support agent logged in", "agentEmail", agentEmail)
	}
	return token, nil
}

// ValidateToken validates a support token and returns the agent email.
func (s *AuthService) ValidateToken(token string) (string, error) {
	claims, err := security.ValidateSupportToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.AgentEmail, nil
}
