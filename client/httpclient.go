package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
)

// HTTPClient implements JobClient against a remote relay server's
// Scheduler API, for a Worker running outside the process that owns the
// engine and its Store.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates an HTTPClient targeting baseURL (e.g.
// "http://relay:8080"). httpClient may be nil, in which case
// http.DefaultClient is used.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, http: httpClient}
}

type httpErrorEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func kindFromWire(s string) relay.Kind {
	switch s {
	case "validation":
		return relay.KindValidation
	case "not_found":
		return relay.KindNotFound
	case "conflict":
		return relay.KindConflict
	case "storage_unavailable":
		return relay.KindStorageUnavailable
	default:
		return relay.KindInternal
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = *bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &relay.Error{Kind: relay.KindStorageUnavailable, Message: err.Error(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		var env httpErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return &relay.Error{Kind: relay.KindInternal, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
		}
		return &relay.Error{Kind: kindFromWire(env.Kind), Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

type leaseResponseWire struct {
	Id            string     `json:"id"`
	LockedBy      string     `json:"locked_by"`
	LockExpiresAt *time.Time `json:"lock_expires_at"`
}

func (c *HTTPClient) Lease(ctx context.Context, id uuid.UUID, workerID string, leaseSeconds int) (*job.Job, error) {
	var view leaseResponseWire
	req := leaseRequestWire{WorkerID: workerID, LeaseSeconds: leaseSeconds}
	if err := c.do(ctx, http.MethodPost, "/jobs/"+id.String()+"/lease", req, &view); err != nil {
		return nil, err
	}
	return &job.Job{Id: id, LockedBy: view.LockedBy, LockExpiresAt: view.LockExpiresAt, Status: job.Queued}, nil
}

func (c *HTTPClient) Start(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	var view statusResponseWire
	if err := c.do(ctx, http.MethodPost, "/jobs/"+id.String()+"/start", nil, &view); err != nil {
		return nil, err
	}
	status, err := job.ParseStatus(view.Status)
	if err != nil {
		return nil, err
	}
	return &job.Job{Id: id, Status: status}, nil
}

func (c *HTTPClient) Complete(ctx context.Context, id uuid.UUID, workerID string) (*job.Job, error) {
	var view statusResponseWire
	req := completeRequestWire{WorkerID: workerID}
	if err := c.do(ctx, http.MethodPost, "/jobs/"+id.String()+"/complete", req, &view); err != nil {
		return nil, err
	}
	status, err := job.ParseStatus(view.Status)
	if err != nil {
		return nil, err
	}
	return &job.Job{Id: id, Status: status}, nil
}

func (c *HTTPClient) Fail(ctx context.Context, id uuid.UUID, workerID, reason string) (*job.Job, error) {
	var view statusResponseWire
	req := failRequestWire{WorkerID: workerID, Error: reason}
	if err := c.do(ctx, http.MethodPost, "/jobs/"+id.String()+"/fail", req, &view); err != nil {
		return nil, err
	}
	status, err := job.ParseStatus(view.Status)
	if err != nil {
		return nil, err
	}
	return &job.Job{Id: id, Status: status}, nil
}

type listResponseEntryWire struct {
	Id string `json:"id"`
}

// List implements Lister against the remote server's listing endpoint, so
// an HTTPClient can back a PollSource as well as a Worker.
func (c *HTTPClient) List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error) {
	q := url.Values{}
	if filter.Status != job.Unknown {
		q.Set("status", filter.Status.String())
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	if order == relay.OrderReady {
		q.Set("order", "ready")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var entries []listResponseEntryWire
	path := "/jobs"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	jobs := make([]*job.Job, len(entries))
	for i, e := range entries {
		id, err := uuid.Parse(e.Id)
		if err != nil {
			return nil, fmt.Errorf("parse job id %q: %w", e.Id, err)
		}
		jobs[i] = &job.Job{Id: id}
	}
	return jobs, nil
}

type leaseRequestWire struct {
	WorkerID     string `json:"worker_id"`
	LeaseSeconds int    `json:"lease_seconds"`
}

type completeRequestWire struct {
	WorkerID string `json:"worker_id"`
}

type failRequestWire struct {
	WorkerID string `json:"worker_id"`
	Error    string `json:"error"`
}

type statusResponseWire struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}
