package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
)

// Engine is the subset of *relay.Engine's operations the HTTP surface
// depends on. *relay.Engine satisfies it directly.
type Engine interface {
	Submit(ctx context.Context, jobType, payload string, priority, maxAttempts int) (*job.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)
	List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error)
	Lease(ctx context.Context, id uuid.UUID, workerID string, leaseSeconds int) (*job.Job, error)
	Start(ctx context.Context, id uuid.UUID) (*job.Job, error)
	Complete(ctx context.Context, id uuid.UUID, workerID string) (*job.Job, error)
	Fail(ctx context.Context, id uuid.UUID, workerID, reason string) (*job.Job, error)
	RequeueReady(ctx context.Context, limit int) (int, error)
	Reconcile(ctx context.Context, limit int) (relay.ReconcileStats, error)
}

// Handler implements the Scheduler API's RPC surface as plain
// http.HandlerFuncs bound to an Engine.
type Handler struct {
	engine Engine
}

// NewHandler creates a Handler over engine.
func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "malformed JSON body"})
		return
	}
	j, err := h.engine.Submit(r.Context(), req.Type, req.Payload, req.Priority, req.MaxAttempts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobView(j))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	j, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobView(j))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := relay.Filter{Type: q.Get("type")}
	if s := q.Get("status"); s != "" {
		status, err := job.ParseStatus(s)
		if err != nil {
			writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "invalid status: " + s})
			return
		}
		filter.Status = status
	}
	order := relay.OrderCreatedDesc
	if q.Get("order") == "ready" {
		order = relay.OrderReady
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "invalid limit"})
			return
		}
		limit = n
	}
	jobs, err := h.engine.List(r.Context(), filter, order, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobViews(jobs))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "invalid job id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleLease(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req leaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "malformed JSON body"})
		return
	}
	j, err := h.engine.Lease(r.Context(), id, req.WorkerID, req.LeaseSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaseResponse{Id: j.Id.String(), LockedBy: j.LockedBy, LockExpiresAt: j.LockExpiresAt})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	j, err := h.engine.Start(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Id: j.Id.String(), Status: j.Status.String()})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "malformed JSON body"})
		return
	}
	j, err := h.engine.Complete(r.Context(), id, req.WorkerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Id: j.Id.String(), Status: j.Status.String()})
}

func (h *Handler) handleFail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req failRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &relay.Error{Kind: relay.KindValidation, Message: "malformed JSON body"})
		return
	}
	j, err := h.engine.Fail(r.Context(), id, req.WorkerID, req.Error)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, failResponse{Id: j.Id.String(), Status: j.Status.String(), Attempts: j.Attempts, NextRunAt: j.NextRunAt})
}

func (h *Handler) handleRequeueReady(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // a missing/empty body means "unbounded"
	n, err := h.engine.RequeueReady(r.Context(), req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requeueResponse{Requeued: n})
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	stats, err := h.engine.Reconcile(r.Context(), req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reconcileResponse{Recovered: stats.Recovered, Dead: stats.Dead, Requeued: stats.Requeued})
}
