package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"tradeplane/internal/service"
	"tradeplane/pkg/api"
)

type fakeTradeService struct {
	submitSnap  api.TradeSnapshot
	submitErr   error
	statusSnap  api.TradeSnapshot
	statusErr   error
	cancelSnap  api.TradeSnapshot
	cancelErr   error
	owned       []api.TradeSnapshot
	instances   []api.InstanceInfo
	seenSubmit  []api.SubmitTradeRequest
	seenCancel  [][2]string
	batchResult []api.TradeSnapshot
}

func (f *fakeTradeService) Submit(_ context.Context, req api.SubmitTradeRequest) (api.TradeSnapshot, error) {
	f.seenSubmit = append(f.seenSubmit, req)
	return f.submitSnap, f.submitErr
}

func (f *fakeTradeService) SubmitBatch(_ context.Context, reqs []api.SubmitTradeRequest) []api.TradeSnapshot {
	return f.batchResult
}

func (f *fakeTradeService) Status(_ context.Context, jobID string) (api.TradeSnapshot, error) {
	return f.statusSnap, f.statusErr
}

func (f *fakeTradeService) ListByOwner(ownerID string) []api.TradeSnapshot { return f.owned }

func (f *fakeTradeService) Cancel(_ context.Context, jobID, ownerID string) (api.TradeSnapshot, error) {
	f.seenCancel = append(f.seenCancel, [2]string{jobID, ownerID})
	return f.cancelSnap, f.cancelErr
}

func (f *fakeTradeService) Instances() []api.InstanceInfo { return f.instances }

type fakeSubscriber struct{}

func (fakeSubscriber) Subscribe(string, *websocket.Conn)   {}
func (fakeSubscriber) Unsubscribe(string, *websocket.Conn) {}

func newMux(svc TradeService) *http.ServeMux {
	h := New(svc, fakeSubscriber{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /trades", h.SubmitTrade)
	mux.HandleFunc("POST /trades/batch", h.SubmitBatch)
	mux.HandleFunc("GET /trades/{id}", h.GetTrade)
	mux.HandleFunc("DELETE /trades/{id}", h.CancelTrade)
	mux.HandleFunc("GET /users/{id}/trades", h.ListUserTrades)
	mux.HandleFunc("GET /instances", h.ListInstances)
	mux.HandleFunc("GET /healthz", h.Healthz)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSubmitTrade(t *testing.T) {
	svc := &fakeTradeService{submitSnap: api.TradeSnapshot{JobID: "j1", Status: "queued"}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodPost, "/trades", api.SubmitTradeRequest{
		JobID:       "spoofed-id",
		OwnerID:     "u1",
		GameVariant: "swsh",
		ItemSpec:    "Pikachu",
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var snap api.TradeSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.JobID != "j1" {
		t.Errorf("job id = %q", snap.JobID)
	}
	// The handler strips any caller-supplied job ID.
	if svc.seenSubmit[0].JobID != "" {
		t.Errorf("service saw job id %q, want empty", svc.seenSubmit[0].JobID)
	}
}

func TestSubmitTradeBadJSON(t *testing.T) {
	mux := newMux(&fakeTradeService{})

	req := httptest.NewRequest(http.MethodPost, "/trades", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitTradeValidationError(t *testing.T) {
	svc := &fakeTradeService{submitErr: &service.ValidationError{Reason: "owner_id is required"}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodPost, "/trades", api.SubmitTradeRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "owner_id is required" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestSubmitBatch(t *testing.T) {
	svc := &fakeTradeService{batchResult: []api.TradeSnapshot{
		{JobID: "j1", Status: "queued"},
		{Status: "failed", Error: "unsupported game variant"},
	}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodPost, "/trades/batch", api.BatchSubmitRequest{
		Trades: []api.SubmitTradeRequest{{OwnerID: "u1"}, {OwnerID: "u1"}},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp api.BatchSubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
}

func TestSubmitBatchEmpty(t *testing.T) {
	mux := newMux(&fakeTradeService{})
	rec := doJSON(t, mux, http.MethodPost, "/trades/batch", api.BatchSubmitRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetTrade(t *testing.T) {
	svc := &fakeTradeService{statusSnap: api.TradeSnapshot{JobID: "j1", Status: "searching"}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodGet, "/trades/j1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap api.TradeSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Status != "searching" {
		t.Errorf("trade status = %q", snap.Status)
	}
}

func TestGetTradeNotFound(t *testing.T) {
	svc := &fakeTradeService{statusErr: service.ErrNotFound}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodGet, "/trades/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCancelTrade(t *testing.T) {
	svc := &fakeTradeService{cancelSnap: api.TradeSnapshot{JobID: "j1", Status: "cancelled"}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodDelete, "/trades/j1", api.CancelTradeRequest{OwnerID: "u1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.seenCancel[0] != [2]string{"j1", "u1"} {
		t.Errorf("cancel called with %v", svc.seenCancel[0])
	}
}

func TestCancelTradeOwnerFromQuery(t *testing.T) {
	svc := &fakeTradeService{cancelSnap: api.TradeSnapshot{JobID: "j1", Status: "cancelled"}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodDelete, "/trades/j1?owner_id=u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.seenCancel[0][1] != "u1" {
		t.Errorf("owner = %q, want u1", svc.seenCancel[0][1])
	}
}

func TestCancelTradeMissingOwner(t *testing.T) {
	mux := newMux(&fakeTradeService{})
	rec := doJSON(t, mux, http.MethodDelete, "/trades/j1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCancelTradeNotFound(t *testing.T) {
	svc := &fakeTradeService{cancelErr: service.ErrNotFound}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodDelete, "/trades/j1", api.CancelTradeRequest{OwnerID: "u1"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListUserTrades(t *testing.T) {
	svc := &fakeTradeService{owned: []api.TradeSnapshot{{JobID: "j1"}, {JobID: "j2"}}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodGet, "/users/u1/trades", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp api.ListTradesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Trades) != 2 {
		t.Errorf("trades = %d, want 2", len(resp.Trades))
	}
}

func TestListInstances(t *testing.T) {
	svc := &fakeTradeService{instances: []api.InstanceInfo{{Port: 4100, GameVariant: "swsh", Role: "worker"}}}
	mux := newMux(svc)

	rec := doJSON(t, mux, http.MethodGet, "/instances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp api.ListInstancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Instances) != 1 || resp.Instances[0].GameVariant != "swsh" {
		t.Errorf("unexpected instances: %+v", resp.Instances)
	}
}

func TestHealthz(t *testing.T) {
	mux := newMux(&fakeTradeService{})
	rec := doJSON(t, mux, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
