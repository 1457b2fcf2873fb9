// Package apperrors defines structured application error types and exit codes,
// separating configuration problems from integration failures and carrying the
// underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All wrapping types implement Unwrap() so errors.Is() and errors.As() see through them.
package apperrors
