package repo

import "errors"

// ErrNotFound is returned by point lookups when no row matches for the current owner.
var ErrNotFound = errors.New("not found")
