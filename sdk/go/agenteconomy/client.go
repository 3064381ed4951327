package agenteconomy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the Hedera Agent Economy REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Agent describes a registered participant of the economy.
type Agent struct {
	ID             string   `json:"agent_id"`
	Type           string   `json:"agent_type"`
	Name           string   `json:"name"`
	Skills         []string `json:"skills"`
	BalanceHBAR    float64  `json:"hbar_balance"`
	TasksCompleted int      `json:"tasks_completed"`
	EarningsHBAR   float64  `json:"earnings_hbar"`
	Status         string   `json:"status"`
	RegisteredAt   string   `json:"registered_at"`
}

// Message is one entry of the consensus-ordered activity log.
type Message struct {
	ID                 string         `json:"id"`
	Topic              string         `json:"topic"`
	Sender             string         `json:"sender"`
	Type               string         `json:"message_type"`
	Payload            map[string]any `json:"payload"`
	ConsensusTimestamp string         `json:"consensus_timestamp"`
	TxID               string         `json:"tx_id"`
}

// Transaction is one settlement record.
type Transaction struct {
	TaskID     string  `json:"task_id"`
	WorkerID   string  `json:"worker_id"`
	AmountHBAR float64 `json:"amount_hbar"`
	TxID       string  `json:"tx_id"`
	DurationMS int     `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
	Mock       bool    `json:"mock"`
}

// Stats carries the aggregate counters embedded in a snapshot.
type Stats struct {
	TasksCompleted   int64             `json:"tasks_completed"`
	TotalHBARSettled float64           `json:"total_hbar_settled"`
	ActiveAgents     int               `json:"active_agents"`
	TotalAgents      int               `json:"total_agents"`
	Topics           map[string]string `json:"topics"`
}

// Snapshot is a point-in-time view of the whole economy.
type Snapshot struct {
	Agents       []Agent       `json:"agents"`
	Messages     []Message     `json:"messages"`
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
	Timestamp    string        `json:"timestamp"`
}

// Health is the liveness report of the daemon.
type Health struct {
	Status           string `json:"status"`
	HederaNetwork    string `json:"hedera_network"`
	TopicID          string `json:"topic_id"`
	AgentsRegistered int    `json:"agents_registered"`
	DemoMode         bool   `json:"demo_mode"`
	AIEnabled        bool   `json:"ai_enabled"`
	Timestamp        string `json:"timestamp"`
}

// LegacyStats mirrors the flat stats view kept for older dashboards. Pending
// and failed counters never move away from zero.
type LegacyStats struct {
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

// AgentList is the response of the agents endpoint.
type AgentList struct {
	Agents []Agent `json:"agents"`
	Count  int     `json:"count"`
}

// MessagePage is a window over the message log. Total reports the full log
// length regardless of the requested window size.
type MessagePage struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// TransactionPage is a window over the settlement log.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// Feed is the message window shaped for the live activity view.
type Feed struct {
	Messages []Message `json:"messages"`
	TopicID  string    `json:"topic_id"`
	Count    int       `json:"count"`
}

// TaskRequest is the payload accepted by the task submission endpoints.
// A nil BudgetHBAR lets the server apply its default budget.
type TaskRequest struct {
	TaskType   string   `json:"task_type"`
	Payload    string   `json:"payload"`
	BudgetHBAR *float64 `json:"budget_hbar,omitempty"`
}

// Budget builds the optional budget pointer for request literals.
func Budget(v float64) *float64 {
	return &v
}

// Receipt is returned once a submitted task has settled.
type Receipt struct {
	TaskID      string  `json:"task_id"`
	Status      string  `json:"status"`
	Result      string  `json:"result"`
	CostHBAR    float64 `json:"cost_hbar"`
	DurationMS  int     `json:"duration_ms"`
	AssignedTo  string  `json:"assigned_to"`
	TxID        string  `json:"tx_id"`
	HCSSequence int64   `json:"hcs_sequence"`
}

// DemoReport summarises one scripted demo cycle.
type DemoReport struct {
	Demo           string    `json:"demo"`
	TasksExecuted  int       `json:"tasks_executed"`
	TotalHBARSpent float64   `json:"total_hbar_spent"`
	Results        []Receipt `json:"results"`
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("agenteconomy api error (%d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("agenteconomy api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the agent economy API. When httpClient
// is nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// Health reports daemon liveness and headline counters.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	if err := c.get(ctx, "/health", &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

// State fetches a full snapshot of the economy.
func (c *Client) State(ctx context.Context) (Snapshot, error) {
	var out Snapshot
	if err := c.get(ctx, "/state", &out); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

// Agents lists every registered agent.
func (c *Client) Agents(ctx context.Context) (AgentList, error) {
	var out AgentList
	if err := c.get(ctx, "/agents", &out); err != nil {
		return AgentList{}, err
	}
	return out, nil
}

// Messages returns the newest messages. A negative limit defers to the
// server default window.
func (c *Client) Messages(ctx context.Context, limit int) (MessagePage, error) {
	var out MessagePage
	if err := c.get(ctx, withLimit("/messages", limit), &out); err != nil {
		return MessagePage{}, err
	}
	return out, nil
}

// Transactions returns the newest settlement records. A negative limit defers
// to the server default window.
func (c *Client) Transactions(ctx context.Context, limit int) (TransactionPage, error) {
	var out TransactionPage
	if err := c.get(ctx, withLimit("/transactions", limit), &out); err != nil {
		return TransactionPage{}, err
	}
	return out, nil
}

// Stats fetches the flat legacy counters.
func (c *Client) Stats(ctx context.Context) (LegacyStats, error) {
	var out LegacyStats
	if err := c.get(ctx, "/stats", &out); err != nil {
		return LegacyStats{}, err
	}
	return out, nil
}

// Feed returns the activity feed window. A negative limit defers to the
// server default window.
func (c *Client) Feed(ctx context.Context, limit int) (Feed, error) {
	var out Feed
	if err := c.get(ctx, withLimit("/feed", limit), &out); err != nil {
		return Feed{}, err
	}
	return out, nil
}

// SubmitTask submits one task and waits for its settlement receipt.
func (c *Client) SubmitTask(ctx context.Context, req TaskRequest) (Receipt, error) {
	var out Receipt
	if err := c.post(ctx, "/task", req, &out); err != nil {
		return Receipt{}, err
	}
	return out, nil
}

// RunDemo triggers the scripted three-task demo cycle.
func (c *Client) RunDemo(ctx context.Context) (DemoReport, error) {
	var out DemoReport
	if err := c.post(ctx, "/demo/run", struct{}{}, &out); err != nil {
		return DemoReport{}, err
	}
	return out, nil
}

func withLimit(endpoint string, limit int) string {
	if limit < 0 {
		return endpoint
	}
	return fmt.Sprintf("%s?limit=%d", endpoint, limit)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	rel.Path = path.Join(c.baseURL.Path, rel.Path)
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr APIError
		apiErr.StatusCode = resp.StatusCode
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &struct {
				Error *APIError `json:"error"`
			}{Error: &apiErr}); err != nil {
				// try direct decode into apiErr if server returned flat payload
				_ = json.Unmarshal(data, &apiErr)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
