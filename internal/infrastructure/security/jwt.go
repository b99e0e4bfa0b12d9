package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SupportClaims are the claims carried by a support-agent token.
type SupportClaims struct {
	AgentEmail string `json:"agentEmail"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSupportToken creates a signed JWT for an authenticated support agent.
func GenerateSupportToken(agentEmail, jwtSecret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := SupportClaims{
		AgentEmail: agentEmail,
		Role:       "support",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   agentEmail,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateSupportToken validates a support-agent JWT and returns its claims.
func ValidateSupportToken(tokenString, jwtSecret string) (*SupportClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SupportClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SupportClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != "support" {
		return nil, errors.New("token is not a support token")
	}
	return claims, nil
}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")
