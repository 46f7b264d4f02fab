package types

import "fmt"

// ConfigError reports an invalid or missing setting, detected before any
// network traffic (bad credential, unusable account selector).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// AccessError reports a durable refusal: a private inventory or a rejected
// API credential. Never retried.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	if e.Err == nil {
		return e.Op + ": access denied"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// TransportError wraps the last underlying failure after retries were
// exhausted, or a non-success response from a source that is not retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
