package deferred

import "errors"

// ErrRejected is the error of a promise rejected without a reason.
var ErrRejected = errors.New("deferred: rejected")

// ErrPanicked wraps the recovered value of a function run by Go that panicked.
var ErrPanicked = errors.New("deferred: panic")
