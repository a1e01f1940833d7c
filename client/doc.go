// Package client provides background workers that drive a relay engine's
// lifecycle from the worker side: leasing jobs, dispatching them to
// user-supplied handlers, reporting outcomes, and running the periodic
// maintenance sweeps (reconciliation and retention) an operator needs.
//
// None of the types in this package talk to storage directly. They are
// built against JobClient and relay.Engine/relay.Cleaner-shaped
// interfaces, so the same worker code runs whether it is embedded
// in-process against a *relay.Engine or driven remotely against relay's
// HTTP surface.
package client
