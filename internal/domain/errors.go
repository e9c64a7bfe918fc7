package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrConcurrentAttempt = errors.New("a checkout attempt is already in progress for this session")
)

// ValidationError reports missing or malformed checkout fields. Local,
// raised before any network call, correctable by the customer.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout details: %s", strings.Join(e.Fields, ", "))
}

// Gateway error reasons.
const (
	GatewayReasonCreateFailed = "create_failed"
	GatewayReasonVerifyFailed = "verify_failed"
	GatewayReasonTimeout      = "timeout"
)

// GatewayError is a transport-level failure talking to a payment
// gateway. Retryable by the caller; distinct from a signature
// verification failure, which is a plain false.
type GatewayError struct {
	Gateway string
	Reason  string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Gateway, e.Reason, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Gateway, e.Reason)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the durable order store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("order store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
