package repositories

import "errors"

// Sentinel conditions the route layer translates to HTTP statuses.
// Missing rows and rows owned by another project both surface as
// ErrNotFound so cross-project probing learns nothing.
var (
	ErrNotFound         = errors.New("not found")
	ErrWipLimitExceeded = errors.New("wip limit exceeded")
)
