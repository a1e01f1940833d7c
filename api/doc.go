// Package api exposes an *relay.Engine over HTTP: a thin transport layer
// with no business logic of its own, built on net/http's Go 1.22+
// method-and-pattern ServeMux routing.
//
// Every handler does exactly three things: decode the request, call the
// corresponding Engine method, and encode the result or error. The error
// envelope always carries the engine's Kind so clients can distinguish
// validation failures from conflicts without parsing prose.
package api
