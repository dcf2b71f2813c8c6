package store

import "errors"

// ErrOutOfRange is returned by Get when pos has never been written.
var ErrOutOfRange = errors.New("store: position out of range")
