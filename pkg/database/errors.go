package database

import "errors"

// ErrNotReady indicates the database could not be reached.
var ErrNotReady = errors.New("database not reachable")
