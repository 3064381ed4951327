package api

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Hedera-Agent-Economy/internal/economy"
	"Hedera-Agent-Economy/internal/hcs"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	state, err := economy.NewState(economy.DefaultSeed(), hcs.DefaultTopicConfig().TopicMap())
	if err != nil {
		t.Fatalf("build state: %v", err)
	}
	processor := economy.NewProcessor(
		state,
		economy.NewRouter(),
		economy.NewSynthesizer(rand.New(rand.NewSource(7))),
		hcs.NewTransactionIDs(hcs.DefaultOperatorAccount),
	)
	return NewServer(Config{Address: ":0"}, state, processor)
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Status           string `json:"status"`
		HederaNetwork    string `json:"hedera_network"`
		TopicID          string `json:"topic_id"`
		AgentsRegistered int    `json:"agents_registered"`
		DemoMode         bool   `json:"demo_mode"`
		AIEnabled        bool   `json:"ai_enabled"`
		Timestamp        string `json:"timestamp"`
	}
	decodeJSON(t, rec, &got)

	if got.Status != "ok" {
		t.Fatalf("unexpected status: got %q want %q", got.Status, "ok")
	}
	if got.HederaNetwork != "testnet" {
		t.Fatalf("unexpected network: got %q want %q", got.HederaNetwork, "testnet")
	}
	if got.TopicID != "0.0.demo" {
		t.Fatalf("unexpected topic id: got %q want %q", got.TopicID, "0.0.demo")
	}
	if got.AgentsRegistered != 6 {
		t.Fatalf("unexpected agent count: got %d want 6", got.AgentsRegistered)
	}
	if !got.DemoMode {
		t.Fatal("demo_mode must be true")
	}
	if got.AIEnabled {
		t.Fatal("ai_enabled must be false")
	}
	if got.Timestamp == "" {
		t.Fatal("timestamp must not be empty")
	}
}

func TestStateEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var snap economy.Snapshot
	decodeJSON(t, rec, &snap)

	if len(snap.Agents) != 6 {
		t.Fatalf("unexpected agent count: got %d want 6", len(snap.Agents))
	}
	if len(snap.Messages) != 3 {
		t.Fatalf("unexpected message count: got %d want 3", len(snap.Messages))
	}
	if len(snap.Transactions) != 3 {
		t.Fatalf("unexpected transaction count: got %d want 3", len(snap.Transactions))
	}
	if snap.Stats.TasksCompleted != 798 {
		t.Fatalf("unexpected tasks completed: got %d want 798", snap.Stats.TasksCompleted)
	}
	if snap.Stats.TotalHBARSettled != 2.25 {
		t.Fatalf("unexpected settled total: got %v want 2.25", snap.Stats.TotalHBARSettled)
	}
	if snap.Stats.ActiveAgents != 2 {
		t.Fatalf("unexpected active agents: got %d want 2", snap.Stats.ActiveAgents)
	}
	if snap.Stats.Topics["task-negotiation"] != "0.0.5483528" {
		t.Fatalf("unexpected negotiation topic: %q", snap.Stats.Topics["task-negotiation"])
	}
	if snap.Timestamp == "" {
		t.Fatal("timestamp must not be empty")
	}
}

func TestAgentsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/agents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Agents []economy.Agent `json:"agents"`
		Count  int             `json:"count"`
	}
	decodeJSON(t, rec, &got)

	if got.Count != 6 || len(got.Agents) != 6 {
		t.Fatalf("unexpected agent count: got %d/%d want 6/6", got.Count, len(got.Agents))
	}
	if got.Agents[0].ID != "registry-001" {
		t.Fatalf("unexpected first agent: got %q want %q", got.Agents[0].ID, "registry-001")
	}
}

func TestMessagesEndpointLimits(t *testing.T) {
	handler := newTestServer(t).Handler()

	type response struct {
		Messages []economy.Message `json:"messages"`
		Total    int               `json:"total"`
	}

	t.Run("default limit", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/messages", nil)
		var got response
		decodeJSON(t, rec, &got)
		if len(got.Messages) != 3 || got.Total != 3 {
			t.Fatalf("unexpected window: got %d/%d want 3/3", len(got.Messages), got.Total)
		}
	})

	t.Run("limit one returns the newest", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/messages?limit=1", nil)
		var got response
		decodeJSON(t, rec, &got)
		if len(got.Messages) != 1 || got.Total != 3 {
			t.Fatalf("unexpected window: got %d/%d want 1/3", len(got.Messages), got.Total)
		}
		if got.Messages[0].ID != "msg-003" {
			t.Fatalf("unexpected message: got %q want %q", got.Messages[0].ID, "msg-003")
		}
	})

	t.Run("limit zero returns an empty window", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/messages?limit=0", nil)
		var got response
		decodeJSON(t, rec, &got)
		if len(got.Messages) != 0 || got.Total != 3 {
			t.Fatalf("unexpected window: got %d/%d want 0/3", len(got.Messages), got.Total)
		}
		if !strings.Contains(rec.Body.String(), `"messages":[]`) {
			t.Fatalf("messages must encode as an empty array, body %q", rec.Body.String())
		}
	})

	t.Run("unparseable limit falls back to the default", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/messages?limit=abc", nil)
		var got response
		decodeJSON(t, rec, &got)
		if len(got.Messages) != 3 || got.Total != 3 {
			t.Fatalf("unexpected window: got %d/%d want 3/3", len(got.Messages), got.Total)
		}
	})
}

func TestTransactionsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/transactions?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Transactions []economy.Transaction `json:"transactions"`
		Total        int                   `json:"total"`
	}
	decodeJSON(t, rec, &got)

	if len(got.Transactions) != 2 || got.Total != 3 {
		t.Fatalf("unexpected window: got %d/%d want 2/3", len(got.Transactions), got.Total)
	}
	if got.Transactions[1].TaskID != "task-ghi" {
		t.Fatalf("unexpected newest transaction: got %q want %q", got.Transactions[1].TaskID, "task-ghi")
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		TotalAgents      int     `json:"total_agents"`
		TotalTasks       int64   `json:"total_tasks"`
		CompletedTasks   int64   `json:"completed_tasks"`
		PendingTasks     int     `json:"pending_tasks"`
		FailedTasks      int     `json:"failed_tasks"`
		TotalHBARSettled float64 `json:"total_hbar_settled"`
		HCSMessages      int     `json:"hcs_messages"`
		TopicID          string  `json:"topic_id"`
		DemoMode         bool    `json:"demo_mode"`
	}
	decodeJSON(t, rec, &got)

	if got.TotalAgents != 6 {
		t.Fatalf("unexpected total agents: got %d want 6", got.TotalAgents)
	}
	if got.TotalTasks != 798 || got.CompletedTasks != 798 {
		t.Fatalf("task counters must both equal 798: got %d/%d", got.TotalTasks, got.CompletedTasks)
	}
	if got.PendingTasks != 0 || got.FailedTasks != 0 {
		t.Fatalf("pending and failed counters must stay zero: got %d/%d", got.PendingTasks, got.FailedTasks)
	}
	if got.TotalHBARSettled != 2.25 {
		t.Fatalf("unexpected settled total: got %v want 2.25", got.TotalHBARSettled)
	}
	if got.HCSMessages != 3 {
		t.Fatalf("unexpected message count: got %d want 3", got.HCSMessages)
	}
	if got.TopicID != "0.0.demo" || !got.DemoMode {
		t.Fatalf("unexpected status fields: topic %q demo %v", got.TopicID, got.DemoMode)
	}
}

func TestFeedEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/feed?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Messages []economy.Message `json:"messages"`
		TopicID  string            `json:"topic_id"`
		Count    int               `json:"count"`
	}
	decodeJSON(t, rec, &got)

	if len(got.Messages) != 2 {
		t.Fatalf("unexpected window size: got %d want 2", len(got.Messages))
	}
	if got.TopicID != "0.0.demo" {
		t.Fatalf("unexpected topic id: got %q want %q", got.TopicID, "0.0.demo")
	}
	if got.Count != 3 {
		t.Fatalf("count must report the full log: got %d want 3", got.Count)
	}
}

func TestSubmitTaskEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	body := `{"task_type":"summarize","payload":"Hashgraph ordering notes","budget_hbar":0.5}`
	rec := doRequest(t, handler, http.MethodPost, "/task", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var receipt economy.Receipt
	decodeJSON(t, rec, &receipt)

	if receipt.Status != economy.StatusCompleted {
		t.Fatalf("unexpected status: got %q want %q", receipt.Status, economy.StatusCompleted)
	}
	if receipt.AssignedTo != "worker-summarizer" {
		t.Fatalf("unexpected assignee: got %q want %q", receipt.AssignedTo, "worker-summarizer")
	}
	if receipt.CostHBAR != 0.5 {
		t.Fatalf("unexpected cost: got %v want 0.5", receipt.CostHBAR)
	}
	if !strings.HasPrefix(receipt.TxID, hcs.DefaultOperatorAccount+"@") {
		t.Fatalf("transaction id must carry the operator prefix: %q", receipt.TxID)
	}
	if receipt.HCSSequence != economy.SequenceBase+4 {
		t.Fatalf("unexpected sequence: got %d want %d", receipt.HCSSequence, economy.SequenceBase+4)
	}

	// /tasks/submit 是同一处理逻辑的别名，序列号继续递增。
	rec = doRequest(t, handler, http.MethodPost, "/tasks/submit", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected alias status code: got %d want %d", rec.Code, http.StatusOK)
	}
	var second economy.Receipt
	decodeJSON(t, rec, &second)
	if second.HCSSequence != economy.SequenceBase+5 {
		t.Fatalf("unexpected alias sequence: got %d want %d", second.HCSSequence, economy.SequenceBase+5)
	}
}

func TestSubmitTaskErrors(t *testing.T) {
	handler := newTestServer(t).Handler()

	t.Run("invalid method", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/task", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/task", strings.NewReader(`{"task_type":`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
		var got errorResponse
		decodeJSON(t, rec, &got)
		if got.Error.Code != "INVALID_ARGUMENT" {
			t.Fatalf("unexpected error code: got %q want %q", got.Error.Code, "INVALID_ARGUMENT")
		}
	})

	t.Run("missing task type", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/task", strings.NewReader(`{"payload":"x"}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
		var got errorResponse
		decodeJSON(t, rec, &got)
		if got.Error.Code != string(economy.CodeTaskValidation) {
			t.Fatalf("unexpected error code: got %q want %q", got.Error.Code, economy.CodeTaskValidation)
		}
	})

	t.Run("negative budget", func(t *testing.T) {
		body := `{"task_type":"summarize","payload":"x","budget_hbar":-1}`
		rec := doRequest(t, handler, http.MethodPost, "/task", strings.NewReader(body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
		var got errorResponse
		decodeJSON(t, rec, &got)
		if got.Error.Code != string(economy.CodeTaskValidation) {
			t.Fatalf("unexpected error code: got %q want %q", got.Error.Code, economy.CodeTaskValidation)
		}
	})
}

func TestRunDemoEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/demo/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var report economy.DemoReport
	decodeJSON(t, rec, &report)

	if report.Demo != "complete" {
		t.Fatalf("unexpected marker: got %q want %q", report.Demo, "complete")
	}
	if report.TasksExecuted != 3 || len(report.Results) != 3 {
		t.Fatalf("unexpected task count: got %d/%d want 3/3", report.TasksExecuted, len(report.Results))
	}
	if report.TotalHBARSpent != 2.25 {
		t.Fatalf("unexpected total spend: got %v want 2.25", report.TotalHBARSpent)
	}

	t.Run("invalid method", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/demo/run", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/task", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent && rec.Code != http.StatusOK {
		t.Fatalf("unexpected preflight status: %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow origin: got %q want %q", got, "*")
	}
}
