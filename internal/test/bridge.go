package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Bridge is an in-memory bridge for tests. Besides the endpoints used by requesting apps
// (POST /request, GET /response/{id}) it serves those used by the World App
// (GET /request/{id}, PUT /response/{id}), so that tests can play the World App's part.
type Bridge struct {
	URL string

	server *httptest.Server

	sync.Mutex
	requests   map[string]*bridgeRequest
	createFail int
}

type bridgeRequest struct {
	status   string
	request  json.RawMessage
	response json.RawMessage
	polls    int
}

// StartBridge starts a Bridge that is stopped when the test finishes.
func StartBridge(t *testing.T) *Bridge {
	b := &Bridge{requests: map[string]*bridgeRequest{}}

	router := chi.NewRouter()
	router.Post("/request", b.handleCreate)
	router.Get("/request/{id}", b.handleRetrieve)
	router.Put("/response/{id}", b.handleRespond)
	router.Get("/response/{id}", b.handlePoll)

	b.server = httptest.NewServer(router)
	b.URL = b.server.URL
	t.Cleanup(b.server.Close)
	return b
}

// Close stops the bridge; subsequent requests fail to connect.
func (b *Bridge) Close() {
	b.server.Close()
}

// FailCreate makes the next request creation fail with the specified HTTP status.
func (b *Bridge) FailCreate(status int) {
	b.Lock()
	defer b.Unlock()
	b.createFail = status
}

// SetStatus overrides the status of a request, regardless of whether it is a valid one.
func (b *Bridge) SetStatus(id, status string) {
	b.Lock()
	defer b.Unlock()
	if r := b.requests[id]; r != nil {
		r.status = status
	}
}

// Request returns the encrypted request as it was posted.
func (b *Bridge) Request(id string) json.RawMessage {
	b.Lock()
	defer b.Unlock()
	if r := b.requests[id]; r != nil {
		return r.request
	}
	return nil
}

// Polls returns how often the status of the request was fetched.
func (b *Bridge) Polls(id string) int {
	b.Lock()
	defer b.Unlock()
	if r := b.requests[id]; r != nil {
		return r.polls
	}
	return 0
}

func (b *Bridge) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.Lock()
	defer b.Unlock()
	if b.createFail != 0 {
		w.WriteHeader(b.createFail)
		b.createFail = 0
		return
	}
	id := uuid.NewString()
	b.requests[id] = &bridgeRequest{status: "initialized", request: body}
	writeJson(w, map[string]string{"request_id": id})
}

func (b *Bridge) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	req := b.requests[chi.URLParam(r, "id")]
	if req == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	req.status = "retrieved"
	writeJson(w, req.request)
}

func (b *Bridge) handleRespond(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.Lock()
	defer b.Unlock()
	req := b.requests[chi.URLParam(r, "id")]
	if req == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	req.status = "completed"
	req.response = body
	w.WriteHeader(http.StatusCreated)
}

func (b *Bridge) handlePoll(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	req := b.requests[chi.URLParam(r, "id")]
	if req == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	req.polls++
	response := req.response
	if response == nil {
		response = json.RawMessage("null")
	}
	writeJson(w, map[string]interface{}{"status": req.status, "response": response})
}

func writeJson(w http.ResponseWriter, object interface{}) {
	bts, err := json.Marshal(object)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bts)
}
