// Package hint implements the ready-queue hint: an advisory, in-process
// FIFO of job ids that lets workers skip straight to a likely-ready job
// instead of always scanning the store.
//
// The hint is never authoritative. Duplicate entries are expected (the
// same id may be published by Submit and later by a Reconcile sweep).
// Missing entries are always recoverable: a worker that finds the hint
// empty falls back to listing ready jobs directly from the store. No
// transition is ever authorized by the hint's contents.
package hint
