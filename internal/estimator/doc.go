// Package estimator provides a best-effort runtime estimate for a job
// before it runs, derived from the observed runtime of previously
// completed jobs with the same type and a similar payload size.
//
// The estimator is read-only: it only ever consumes completed jobs via
// Refresh and never feeds back into scheduling decisions. Its output is
// an opaque numeric hint for operators and callers, not a correctness
// mechanism — nothing in package relay depends on it.
package estimator
