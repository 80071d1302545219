package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hylla/taskboard/internal/adapters/server/common"
	"github.com/hylla/taskboard/internal/adapters/storage/fixture"
	"github.com/hylla/taskboard/internal/app"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubBoardService returns one configured error from every call and records the last request.
type stubBoardService struct {
	common.BoardService
	err        error
	lastDelete common.DeleteRequest
	lastList   common.ListTasksRequest
}

func (s *stubBoardService) ListTasks(_ context.Context, req common.ListTasksRequest) ([]common.Task, error) {
	s.lastList = req
	return nil, s.err
}

func (s *stubBoardService) DeleteTask(_ context.Context, req common.DeleteRequest) error {
	s.lastDelete = req
	return s.err
}

// newLiveHandler builds a handler over a real service on an empty fixture store.
func newLiveHandler(t *testing.T) *Handler {
	t.Helper()
	now := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	next := 0
	svc := app.NewService(fixture.New(fixture.Seed{}, -1), func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}, func() time.Time { return now }, app.ServiceConfig{})
	return NewHandler(common.NewAppServiceAdapter(svc, time.UTC))
}

// do sends one request through handler and returns the recorder.
func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes one JSON response body into the requested type.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

// TestHandlerProjectTaskFlow verifies the REST surface end to end over a real service.
func TestHandlerProjectTaskFlow(t *testing.T) {
	handler := newLiveHandler(t)

	rec := do(t, handler, http.MethodPost, "/projects", `{"name":"Roadmap","color":"#ff6b6b"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project status = %d, body %s", rec.Code, rec.Body.String())
	}
	project := decodeBody[common.Project](t, rec)
	if project.Color != "#FF6B6B" {
		t.Fatalf("color = %q, want #FF6B6B", project.Color)
	}

	rec = do(t, handler, http.MethodPost, "/tasks", fmt.Sprintf(`{"project_id":%q,"title":"Ship","priority":"high","due_date":"2026-02-25"}`, project.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[common.Task](t, rec)

	rec = do(t, handler, http.MethodPost, "/tasks/"+task.ID+"/move", `{"status":"in_progress"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body.String())
	}
	moved := decodeBody[common.MoveTaskResult](t, rec)
	if !moved.Moved || moved.Task.Status != "in_progress" {
		t.Fatalf("unexpected move result %#v", moved)
	}

	rec = do(t, handler, http.MethodPost, "/tasks/"+task.ID+"/move", `{"status":"in_progress"}`)
	if got := decodeBody[common.MoveTaskResult](t, rec); got.Moved {
		t.Fatal("expected no-op move to report moved=false")
	}

	rec = do(t, handler, http.MethodGet, "/board?project_id="+project.ID+"&date_range=week", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d, body %s", rec.Code, rec.Body.String())
	}
	board := decodeBody[common.Board](t, rec)
	if board.Total != 1 || len(board.Columns[1].Tasks) != 1 || board.Filters.DateRange != "week" {
		t.Fatalf("unexpected board %#v", board)
	}

	rec = do(t, handler, http.MethodGet, "/tasks?q=ship&status=in_progress", "")
	list := decodeBody[struct {
		Tasks []common.Task `json:"tasks"`
	}](t, rec)
	if len(list.Tasks) != 1 {
		t.Fatalf("expected one searched task, got %#v", list.Tasks)
	}

	rec = do(t, handler, http.MethodDelete, "/tasks/"+task.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if got := decodeBody[ErrorEnvelope](t, rec); got.Error.Code != "confirmation_required" || got.Error.Hint == "" {
		t.Fatalf("unexpected envelope %#v", got)
	}
	rec = do(t, handler, http.MethodDelete, "/tasks/"+task.ID+"?confirm=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, handler, http.MethodGet, "/tasks/"+task.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted task status = %d, want 404", rec.Code)
	}
}

// TestHandlerLabels verifies label create, rename, and delete.
func TestHandlerLabels(t *testing.T) {
	handler := newLiveHandler(t)

	rec := do(t, handler, http.MethodPost, "/labels", `{"name":"bug"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create label status = %d, body %s", rec.Code, rec.Body.String())
	}
	label := decodeBody[common.Label](t, rec)

	rec = do(t, handler, http.MethodPut, "/labels/"+label.ID, `{"name":"defect","color":"#EF4444"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update label status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[common.Label](t, rec); got.Name != "defect" || got.Color != "#EF4444" {
		t.Fatalf("unexpected label %#v", got)
	}

	rec = do(t, handler, http.MethodDelete, "/labels/"+label.ID+"?confirm=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete label status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, handler, http.MethodGet, "/labels", "")
	list := decodeBody[struct {
		Labels []common.Label `json:"labels"`
	}](t, rec)
	if len(list.Labels) != 0 {
		t.Fatalf("expected no labels, got %#v", list.Labels)
	}
}

// TestHandlerStrictJSONDecoding verifies unknown fields, trailing content, and oversize bodies fail closed.
func TestHandlerStrictJSONDecoding(t *testing.T) {
	handler := newLiveHandler(t)
	cases := []struct {
		name string
		body string
	}{
		{name: "unknown field", body: `{"name":"x","owner":"me"}`},
		{name: "trailing content", body: `{"name":"x"}{"name":"y"}`},
		{name: "malformed", body: `{"name":`},
		{name: "oversize", body: `{"name":"` + strings.Repeat("x", int(maxRequestBodyBytes)) + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/projects", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeBody[ErrorEnvelope](t, rec); got.Error.Code != "invalid_request" {
				t.Fatalf("code = %q, want invalid_request", got.Error.Code)
			}
		})
	}
}

// TestHandlerErrorMapping verifies structured status mapping for adapter errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: common.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "invalid", err: fmt.Errorf("wrapped: %w", common.ErrInvalidRequest), wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "unavailable", err: common.ErrBackendUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "service_unavailable"},
		{name: "conflict", err: common.ErrConflict, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubBoardService{err: tc.err}
			rec := do(t, NewHandler(stub), http.MethodGet, "/tasks?project_id=p1&priority=high&date_range=today&q=x", "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := decodeBody[ErrorEnvelope](t, rec); got.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", got.Error.Code, tc.wantCode)
			}
			if stub.lastList.ProjectID != "p1" || stub.lastList.Priority != "high" || stub.lastList.DateRange != "today" || stub.lastList.Query != "x" {
				t.Fatalf("unexpected list request %#v", stub.lastList)
			}
		})
	}
}

// TestHandlerDeleteConfirmParsing verifies only boolean-true confirm values confirm a delete.
func TestHandlerDeleteConfirmParsing(t *testing.T) {
	for target, want := range map[string]bool{
		"/tasks/t1":              false,
		"/tasks/t1?confirm=yes":  false,
		"/tasks/t1?confirm=true": true,
		"/tasks/t1?confirm=1":    true,
	} {
		stub := &stubBoardService{}
		do(t, NewHandler(stub), http.MethodDelete, target, "")
		if stub.lastDelete.ID != "t1" || stub.lastDelete.Confirm != want {
			t.Fatalf("%s: delete request = %#v, want confirm=%t", target, stub.lastDelete, want)
		}
	}
}

// TestHandlerRoutingFallbacks verifies unknown paths and methods return envelopes.
func TestHandlerRoutingFallbacks(t *testing.T) {
	handler := newLiveHandler(t)

	rec := do(t, handler, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	rec = do(t, handler, http.MethodPatch, "/projects", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := decodeBody[ErrorEnvelope](t, rec); got.Error.Code != "method_not_allowed" {
		t.Fatalf("code = %q, want method_not_allowed", got.Error.Code)
	}

	rec = do(t, NewHandler(nil), http.MethodGet, "/projects", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
