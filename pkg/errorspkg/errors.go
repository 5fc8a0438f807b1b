// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrStorage indicates that the underlying store is unreachable or a unit of work could not commit.
//
// Repositories log the driver error and return ErrStorage so that no driver details leak to callers.
var ErrStorage = errors.New("storage failure")
