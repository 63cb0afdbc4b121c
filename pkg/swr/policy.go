package swr

import "time"

// Policy controls deduplication, retry and revalidation for a key.
// Field names follow the YAML policy file loaded by internal/config.
type Policy struct {
	// DedupInterval is how long a fetched result is served without a new fetch.
	DedupInterval time.Duration `yaml:"dedup_interval"`

	// ErrorRetryInterval is the delay before retrying a failed fetch.
	ErrorRetryInterval time.Duration `yaml:"error_retry_interval"`

	// ErrorRetryCount caps consecutive retries of a failing key.
	ErrorRetryCount int `yaml:"error_retry_count"`

	ShouldRetryOnError    bool `yaml:"should_retry_on_error"`
	RevalidateOnFocus     bool `yaml:"revalidate_on_focus"`
	RevalidateOnReconnect bool `yaml:"revalidate_on_reconnect"`
}

// DefaultPolicy returns the store-wide defaults.
func DefaultPolicy() Policy {
	return Policy{
		DedupInterval:         2 * time.Second,
		ErrorRetryInterval:    5 * time.Second,
		ErrorRetryCount:       3,
		ShouldRetryOnError:    true,
		RevalidateOnFocus:     false,
		RevalidateOnReconnect: true,
	}
}

// normalize replaces negative durations and counts with zero.
func (p Policy) normalize() Policy {
	if p.DedupInterval < 0 {
		p.DedupInterval = 0
	}
	if p.ErrorRetryInterval < 0 {
		p.ErrorRetryInterval = 0
	}
	if p.ErrorRetryCount < 0 {
		p.ErrorRetryCount = 0
	}
	return p
}

// ReadOption overrides the store policy for a single read or subscription.
// The latest reader's policy applies to the key.
type ReadOption func(*Policy)

// WithDedupInterval overrides the dedup window.
func WithDedupInterval(d time.Duration) ReadOption {
	return func(p *Policy) {
		p.DedupInterval = d
	}
}

// WithRetry overrides the retry count and interval and enables retry.
func WithRetry(count int, interval time.Duration) ReadOption {
	return func(p *Policy) {
		p.ShouldRetryOnError = true
		p.ErrorRetryCount = count
		p.ErrorRetryInterval = interval
	}
}

// WithoutRetry disables error retry.
func WithoutRetry() ReadOption {
	return func(p *Policy) {
		p.ShouldRetryOnError = false
	}
}

// WithRevalidateOnFocus toggles focus revalidation.
func WithRevalidateOnFocus(enabled bool) ReadOption {
	return func(p *Policy) {
		p.RevalidateOnFocus = enabled
	}
}

// WithRevalidateOnReconnect toggles reconnect revalidation.
func WithRevalidateOnReconnect(enabled bool) ReadOption {
	return func(p *Policy) {
		p.RevalidateOnReconnect = enabled
	}
}

// WithPolicyOverride replaces the whole policy.
func WithPolicyOverride(policy Policy) ReadOption {
	return func(p *Policy) {
		*p = policy
	}
}

func (s *Store) policyFor(opts []ReadOption) Policy {
	p := s.policy
	for _, opt := range opts {
		opt(&p)
	}
	return p.normalize()
}
