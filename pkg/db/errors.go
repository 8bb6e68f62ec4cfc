package db

import "errors"

// ErrNotFound is returned by store operations for expected absence (missing
// shift, shift type or user). Callers recover locally; only unexpected
// conditions such as a failed connection propagate as wrapped errors.
var ErrNotFound = errors.New("not found")
