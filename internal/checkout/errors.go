package checkout

import "fmt"

// ValidationError rejects a checkout attempt before any record is created:
// unknown offering, closed registrations, incomplete guest info, duplicate
// registration, exhausted capacity. Mapped to a 400-class response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// LedgerWriteError signals a database write failure while recording the
// order/payment pair. The checkout attempt aborts; a domain record already
// created as pending stays pending and is superseded on retry.
type LedgerWriteError struct {
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed: %v", e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}

// GatewaySessionError signals that the external gateway rejected or timed out
// on session creation. Order, payment and domain record all remain pending.
type GatewaySessionError struct {
	Err error
}

func (e *GatewaySessionError) Error() string {
	return fmt.Sprintf("gateway session creation failed: %v", e.Err)
}

func (e *GatewaySessionError) Unwrap() error {
	return e.Err
}
