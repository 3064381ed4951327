package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"Hedera-Agent-Economy/internal/economy"
	xerrors "Hedera-Agent-Economy/internal/errors"
	"Hedera-Agent-Economy/internal/observability/metrics"
	"Hedera-Agent-Economy/pkg/logger"
)

// Config 描述 REST 服务的监听与展示参数。
type Config struct {
	Address        string
	Network        string
	StatusTopic    string
	AllowedOrigins []string
}

// Server 负责暴露 REST 接口，供轮询前端与外部提交方使用。
type Server struct {
	cfg       Config
	state     *economy.State
	processor *economy.Processor
}

// NewServer 构造 API 服务实例。
func NewServer(cfg Config, state *economy.State, processor *economy.Processor) *Server {
	if cfg.Network == "" {
		cfg.Network = "testnet"
	}
	if cfg.StatusTopic == "" {
		cfg.StatusTopic = "0.0.demo"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{cfg: cfg, state: state, processor: processor}
}

// Handler 组装全部路由与中间件，测试可直接挂到 httptest 上。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.instrument("health", s.handleHealth))
	mux.HandleFunc("/state", s.instrument("state", s.handleState))
	mux.HandleFunc("/agents", s.instrument("agents", s.handleAgents))
	mux.HandleFunc("/messages", s.instrument("messages", s.handleMessages))
	mux.HandleFunc("/transactions", s.instrument("transactions", s.handleTransactions))
	mux.HandleFunc("/stats", s.instrument("stats", s.handleStats))
	mux.HandleFunc("/feed", s.instrument("feed", s.handleFeed))
	mux.HandleFunc("/task", s.instrument("task", s.handleSubmitTask))
	mux.HandleFunc("/tasks/submit", s.instrument("task", s.handleSubmitTask))
	mux.HandleFunc("/demo/run", s.instrument("demo", s.handleRunDemo))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return corsHandler.Handler(mux)
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.L().Info("API 服务启动", slog.String("address", s.cfg.Address))

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"hedera_network":    s.cfg.Network,
		"topic_id":          s.cfg.StatusTopic,
		"agents_registered": s.state.AgentCount(),
		"demo_mode":         true,
		"ai_enabled":        false,
		"timestamp":         economy.NowISO(),
	})
}

// handleState 返回完整的经济体快照，是前端轮询的主入口。
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	agents := s.state.Agents()
	writeJSON(w, http.StatusOK, map[string]any{
		"agents": agents,
		"count":  len(agents),
	})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	messages, total := s.state.Messages(parseLimit(r, economy.DefaultMessageLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"total":    total,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	transactions, total := s.state.Transactions(parseLimit(r, economy.DefaultTransactionLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"total":        total,
	})
}

// handleStats 是兼容旧版面板的统计视图，排队与失败计数恒为零。
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	snap := s.state.Snapshot()
	_, messageTotal := s.state.Messages(0)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_agents":       snap.Stats.TotalAgents,
		"total_tasks":        snap.Stats.TasksCompleted,
		"completed_tasks":    snap.Stats.TasksCompleted,
		"pending_tasks":      0,
		"failed_tasks":       0,
		"total_hbar_settled": snap.Stats.TotalHBARSettled,
		"hcs_messages":       messageTotal,
		"topic_id":           s.cfg.StatusTopic,
		"demo_mode":          true,
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	messages, total := s.state.Messages(parseLimit(r, economy.DefaultMessageLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"topic_id": s.cfg.StatusTopic,
		"count":    total,
	})
}

// handleSubmitTask 处理任务提交，/task 与 /tasks/submit 行为一致。
func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.processor == nil {
		writeError(w, xerrors.New(xerrors.CodeInitializationFailure, "任务处理器未初始化"))
		return
	}

	var req economy.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "请求体解析失败"))
		return
	}

	receipt, err := s.processor.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleRunDemo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.processor == nil {
		writeError(w, xerrors.New(xerrors.CodeInitializationFailure, "任务处理器未初始化"))
		return
	}

	report, err := s.processor.RunDemo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// instrument 记录每个路由的请求量与时延。
func (s *Server) instrument(name string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r)
		metrics.ObserveHTTPRequest(name, r.Method, recorder.status, time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	writeErrorParts(w, http.StatusMethodNotAllowed, xerrors.CodeInvalidArgument, "仅支持 "+method)
	return false
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(raw); err == nil {
		return parsed
	}
	return fallback
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

// writeError 将统一错误类型映射为 HTTP 状态码与结构化错误体。
func writeError(w http.ResponseWriter, err error) {
	code := xerrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case economy.CodeTaskValidation, xerrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case xerrors.CodeNotFound:
		status = http.StatusNotFound
	}

	message := err.Error()
	if e, ok := xerrors.From(err); ok {
		message = e.Message()
	}
	writeErrorParts(w, status, code, message)
}

func writeErrorParts(w http.ResponseWriter, status int, code xerrors.Code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: string(code), Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("写入响应失败", slog.Any("error", err))
	}
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			writeErrorParts(w, http.StatusServiceUnavailable, xerrors.CodeTimeout, "服务已关闭")
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
