package agenteconomy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthFetchesCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(Health{
			Status:           "ok",
			HederaNetwork:    "testnet",
			TopicID:          "0.0.demo",
			AgentsRegistered: 6,
			DemoMode:         true,
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "ok" {
		t.Fatalf("unexpected status: %q", health.Status)
	}
	if health.AgentsRegistered != 6 {
		t.Fatalf("unexpected agent count: %d", health.AgentsRegistered)
	}
}

func TestSubmitTaskPostsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type: %q", got)
		}

		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TaskType != "summarize" {
			t.Fatalf("unexpected task type: %q", req.TaskType)
		}
		if req.BudgetHBAR == nil || *req.BudgetHBAR != 0.75 {
			t.Fatalf("unexpected budget: %v", req.BudgetHBAR)
		}

		_ = json.NewEncoder(w).Encode(Receipt{
			TaskID:      "task-1a2b3c4d",
			Status:      "completed",
			AssignedTo:  "worker-summarizer",
			CostHBAR:    0.75,
			HCSSequence: 1004,
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.SubmitTask(context.Background(), TaskRequest{
		TaskType:   "summarize",
		Payload:    "draft notes",
		BudgetHBAR: Budget(0.75),
	})
	if err != nil {
		t.Fatalf("submit task: %v", err)
	}
	if receipt.AssignedTo != "worker-summarizer" {
		t.Fatalf("unexpected assignee: %q", receipt.AssignedTo)
	}
	if receipt.HCSSequence != 1004 {
		t.Fatalf("unexpected sequence: %d", receipt.HCSSequence)
	}
}

func TestMessagesLimitQuery(t *testing.T) {
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(MessagePage{Total: 3})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Messages(context.Background(), 5); err != nil {
		t.Fatalf("messages: %v", err)
	}
	if lastQuery != "limit=5" {
		t.Fatalf("expected explicit limit, got query %q", lastQuery)
	}

	if _, err := client.Messages(context.Background(), -1); err != nil {
		t.Fatalf("messages with default window: %v", err)
	}
	if lastQuery != "" {
		t.Fatalf("negative limit must omit the parameter, got query %q", lastQuery)
	}
}

func TestRunDemoReturnsReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/run" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(DemoReport{
			Demo:           "complete",
			TasksExecuted:  3,
			TotalHBARSpent: 2.25,
			Results:        []Receipt{{}, {}, {}},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	report, err := client.RunDemo(context.Background())
	if err != nil {
		t.Fatalf("run demo: %v", err)
	}
	if report.Demo != "complete" || report.TasksExecuted != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSubmitTaskError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(struct {
			Error APIError `json:"error"`
		}{Error: APIError{Code: "TASK_VALIDATION_FAILED", Message: "budget must be finite"}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SubmitTask(context.Background(), TaskRequest{TaskType: "summarize"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status code: %d", apiErr.StatusCode)
	}
	if apiErr.Code != "TASK_VALIDATION_FAILED" {
		t.Fatalf("unexpected error code: %s", apiErr.Code)
	}
}
