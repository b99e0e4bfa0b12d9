package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportTokenRoundTrip(t *testing.T) {
	token, err := GenerateSupportToken("support@facewisdom-ai.xyz", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSupportToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "support@facewisdom-ai.xyz", claims.AgentEmail)
	assert.Equal(t, "support", claims.Role)
}

func TestSupportTokenWrongSecret(t *testing.T) {
	token, err := GenerateSupportToken("support@facewisdom-ai.xyz", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateSupportToken(token, "other-secret")
	assert.Error(t, err)
}

func TestSupportTokenExpired(t *testing.T) {
	token, err := GenerateSupportToken("support@facewisdom-ai.xyz", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSupportToken(token, "secret")
	assert.Error(t, err)
}

func TestIdentifierPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewSessionID(), "sess_"))
	assert.True(t, strings.HasPrefix(NewUserID(), "anon_"))
	assert.True(t, strings.HasPrefix(NewServiceID(), "svc_"))
	assert.True(t, strings.HasPrefix(NewErrorID(), "err_"))
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
