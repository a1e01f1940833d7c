package api

import "net/http"

// NewRouter constructs the Scheduler API's router over engine.
func NewRouter(engine Engine) http.Handler {
	h := NewHandler(engine)
	return newMux(h)
}

// newMux wires routes to Handler methods using Go 1.22+ method-and-pattern
// ServeMux matching, so each route only accepts its intended verb.
func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /jobs", h.handleSubmit)
	mux.HandleFunc("GET /jobs", h.handleList)
	mux.HandleFunc("GET /jobs/{id}", h.handleGet)

	mux.HandleFunc("POST /jobs/{id}/lease", h.handleLease)
	mux.HandleFunc("POST /jobs/{id}/start", h.handleStart)
	mux.HandleFunc("POST /jobs/{id}/complete", h.handleComplete)
	mux.HandleFunc("POST /jobs/{id}/fail", h.handleFail)

	mux.HandleFunc("POST /admin/requeue-ready", h.handleRequeueReady)
	mux.HandleFunc("POST /admin/reconcile", h.handleReconcile)

	return mux
}
