// Package security provides identifier generation and support-agent
// authentication utilities.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// NewSessionID returns a prefixed identifier for an anonymous session.
func NewSessionID() string {
	return "sess_" + GenerateULID()
}

// NewUserID returns a prefixed identifier for the anonymous user behind a session.
func NewUserID() string {
	return "anon_" + GenerateULID()
}

// NewServiceID returns a prefixed identifier for a service usage record.
func NewServiceID() string {
	return "svc_" + GenerateULID()
}

// NewErrorID returns a prefixed identifier for an error record.
func NewErrorID() string {
	return "err_" + GenerateULID()
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// This is ideal for generating JWT secrets.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // Each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
