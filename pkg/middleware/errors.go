package middleware

import "errors"

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errUnauthorized = errors.New("missing or invalid bearer token")
	errInternal     = errors.New("internal server error")
)
