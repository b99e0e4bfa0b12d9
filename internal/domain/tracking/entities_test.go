package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContactInfoHasChannel(t *testing.T) {
	var nilContact *ContactInfo
	assert.False(t, nilContact.HasChannel())
	assert.False(t, (&ContactInfo{Name: "Kim"}).HasChannel())
	assert.True(t, (&ContactInfo{Email: "a@example.com"}).HasChannel())
	assert.True(t, (&ContactInfo{Phone: "010-1111-2222"}).HasChannel())
}

func TestSessionPinned(t *testing.T) {
	now := time.Now().UTC()
	session := &AnonymousSession{SessionID: "sess_1", CreatedAt: now, LastActivity: now}
	assert.False(t, session.Pinned())

	session.ServiceUsage = append(session.ServiceUsage, &ServiceUsageRecord{
		ServiceID: "svc_1", Status: StatusCompleted,
	})
	assert.False(t, session.Pinned())

	session.ServiceUsage[0].Status = StatusPaymentPending
	assert.True(t, session.Pinned())

	session.ServiceUsage[0].Status = StatusPaid
	assert.True(t, session.Pinned())

	session.ServiceUsage[0].Status = StatusError
	assert.False(t, session.Pinned())

	session.Errors = append(session.Errors, &ErrorRecord{
		ErrorID: "err_1", CompensationRequired: true,
	})
	assert.True(t, session.Pinned())

	session.Errors[0].Resolved = true
	assert.False(t, session.Pinned())

	session.Errors[0].Resolved = false
	session.Errors[0].CompensationRequired = false
	assert.False(t, session.Pinned())
}

func TestFindUsageAndFindError(t *testing.T) {
	session := &AnonymousSession{
		ServiceUsage: []*ServiceUsageRecord{{ServiceID: "svc_1"}, {ServiceID: "svc_2"}},
		Errors:       []*ErrorRecord{{ErrorID: "err_1"}},
	}

	assert.Equal(t, "svc_2", session.FindUsage("svc_2").ServiceID)
	assert.Nil(t, session.FindUsage("svc_9"))
	assert.Equal(t, "err_1", session.FindError("err_1").ErrorID)
	assert.Nil(t, session.FindError("err_9"))
}
