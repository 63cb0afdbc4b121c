package redis

import "errors"

// Errors returned by Open and Ping. Causes are joined to them.
var (
	ErrEmptyConnectionURL = errors.New("redis: REDIS_URL is empty")
	ErrFailedToParseURL   = errors.New("redis: connection URL must be redis:// or rediss://")
	ErrConnectionFailed   = errors.New("redis: cache unreachable")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
