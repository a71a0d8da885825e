// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Configuration errors. Both are fatal at startup: the process must not
	// serve requests without a valid category rule set.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoActiveConnection means a company has no active link to the
	// external accounting source. Callers treat this as an empty account
	// mapping, not a hard failure; real-time classification still guarantees
	// that every amount lands in a category.
	ErrNoActiveConnection = errors.New("no active accounting connection")

	// ErrSourceUnavailable means a data source could not deliver its
	// content, such as a statement whose text was never extracted. Callers
	// degrade locally: the statement analyzer turns it into a warning.
	ErrSourceUnavailable = errors.New("source unavailable")
)
