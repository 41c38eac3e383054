package cache

import "errors"

var (
	// ErrCacheMiss is returned when the requested key is absent.
	ErrCacheMiss = errors.New("cache miss")
)
