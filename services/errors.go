package services

import "errors"

var (
	// ErrValidation marks requests rejected before touching the store.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound marks lookups for users, requests or links that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrConditionFailed marks a conditional write that lost to a concurrent
	// caller. Internal only: callers retry the surrounding operation, it is
	// never surfaced to a client.
	ErrConditionFailed = errors.New("conditional update failed")
)
