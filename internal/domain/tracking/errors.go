package tracking

import "errors"

// Sentinel errors for the tracking engine. Lookup failures on sessions and
// payments always surface to the caller; ErrServiceRecordNotFound is
// non-fatal in the payment-linking path, and ErrContactInfoMissing never
// aborts the operation that discovered it.
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrServiceRecordNotFound = errors.New("service usage record not found")
	ErrContactInfoMissing    = errors.New("contact info missing")
)
