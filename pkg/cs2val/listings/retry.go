package listings

import "time"

// RetryPolicy paces repeated attempts against the listings service.
// Generic failures (timeouts, network errors, server errors) share one
// budget; rate limiting has its own delay curve and its own counter.
type RetryPolicy struct {
	MaxAttempts      int           // total attempts for generic failures
	Backoff          time.Duration // base delay between generic attempts
	RateLimitBackoff time.Duration // base delay after a 429
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      2,
		Backoff:          600 * time.Millisecond,
		RateLimitBackoff: 1200 * time.Millisecond,
	}
}

// GenericDelay grows linearly with the zero-based attempt number.
func (p RetryPolicy) GenericDelay(attempt int) time.Duration {
	return p.Backoff * time.Duration(attempt+1)
}

// RateLimitDelay grows linearly with the zero-based rate-limit retry number.
func (p RetryPolicy) RateLimitDelay(try int) time.Duration {
	return p.RateLimitBackoff * time.Duration(try+1)
}
