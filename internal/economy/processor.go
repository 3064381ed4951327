package economy

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	xerrors "Hedera-Agent-Economy/internal/errors"
	"Hedera-Agent-Economy/internal/hcs"
	"Hedera-Agent-Economy/internal/observability/alerting"
	"Hedera-Agent-Economy/internal/observability/metrics"
	"Hedera-Agent-Economy/pkg/logger"
)

// DefaultBudgetHBAR 是提交请求未显式给出预算时的默认值。
const DefaultBudgetHBAR = 0.5

// StatusCompleted 是当前唯一的任务终态：提交即同步完成，没有排队与失败态。
const StatusCompleted = "completed"

// 完成消息中结果片段的最大长度（字符）。
const completionExcerptLimit = 80

// TaskRequest 描述一次任务提交。预算字段缺省时按 DefaultBudgetHBAR 处理。
type TaskRequest struct {
	TaskType   string   `json:"task_type"`
	Payload    string   `json:"payload"`
	BudgetHBAR *float64 `json:"budget_hbar"`
}

// Budget 构造预算字段的指针，便于字面量书写请求。
func Budget(v float64) *float64 {
	return &v
}

// Receipt 是任务完成后的回执。
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

// DemoReport 汇总一轮演示的结果。
type DemoReport struct {
	Demo           string    `json:"demo"`
	TasksExecuted  int       `json:"tasks_executed"`
	TotalHBARSpent float64   `json:"total_hbar_spent"`
	Results        []Receipt `json:"results"`
}

// FeedPublisher 将新产生的共识消息推送给外部订阅方。
type FeedPublisher interface {
	Publish(ctx context.Context, msg Message) error
}

// SettlementArchive 将结算流水写入外部存档。
type SettlementArchive interface {
	Archive(ctx context.Context, tx Transaction) error
}

// Processor 驱动任务从提交到结算的完整流程：校验请求、路由执行者、
// 合成结果、生成引用编号，并通过 State 的临界区原子入账。
// 推送与存档在入账成功后尽力而为，失败只记录与告警，不影响回执。
type Processor struct {
	state   *State
	router  *Router
	synth   *Synthesizer
	txids   *hcs.TransactionIDs
	feed    FeedPublisher
	archive SettlementArchive
	alerter alerting.Dispatcher
	logger  *slog.Logger
}

// ProcessorOption 定义可选配置。
type ProcessorOption func(*Processor)

// WithFeedPublisher 配置共识消息推送通道。
func WithFeedPublisher(publisher FeedPublisher) ProcessorOption {
	return func(p *Processor) {
		p.feed = publisher
	}
}

// WithSettlementArchive 配置结算流水存档。
func WithSettlementArchive(archive SettlementArchive) ProcessorOption {
	return func(p *Processor) {
		p.archive = archive
	}
}

// WithAlertDispatcher 配置告警派发器。
func WithAlertDispatcher(dispatcher alerting.Dispatcher) ProcessorOption {
	return func(p *Processor) {
		p.alerter = dispatcher
	}
}

// WithProcessorLogger 指定日志输出。
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor 构造任务处理器。
func NewProcessor(state *State, router *Router, synth *Synthesizer, txids *hcs.TransactionIDs, opts ...ProcessorOption) *Processor {
	p := &Processor{
		state:  state,
		router: router,
		synth:  synth,
		txids:  txids,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Submit 处理一次任务提交并返回回执。
// 校验失败时不产生任何状态变更；路由永不失败，未知类型回落到默认执行者。
func (p *Processor) Submit(ctx context.Context, req TaskRequest) (*Receipt, error) {
	if p == nil || p.state == nil || p.router == nil || p.synth == nil || p.txids == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "任务处理器未初始化")
	}

	if req.TaskType == "" {
		return nil, ErrTaskTypeMissing
	}
	budget := DefaultBudgetHBAR
	if req.BudgetHBAR != nil {
		budget = *req.BudgetHBAR
	}
	if budget < 0 || math.IsNaN(budget) || math.IsInf(budget, 0) {
		return nil, xerrors.New(CodeTaskValidation, "任务预算必须是非负的有限数值",
			xerrors.WithMetadata("budget_hbar", strconv.FormatFloat(budget, 'f', -1, 64)))
	}

	taskID := NewTaskID()
	workerID := p.router.Route(req.TaskType)
	result, durationMS := p.synth.Synthesize(req.TaskType, req.Payload)

	now := time.Now()
	txID := p.txids.Next(now)

	tx := Transaction{
		TaskID:     taskID,
		WorkerID:   workerID,
		AmountHBAR: budget,
		TxID:       txID,
		DurationMS: durationMS,
		Timestamp:  now.Unix(),
		Mock:       true,
	}
	completion := Message{
		ID:     NewMessageID(),
		Topic:  hcs.TopicTaskNegotiation,
		Sender: BrokerAgentID,
		Type:   MessageTypeTaskCompleted,
		Payload: map[string]any{
			"task_id": taskID,
			"worker":  workerID,
			"result":  truncate(result, completionExcerptLimit),
		},
		ConsensusTimestamp: now.UTC().Format(time.RFC3339Nano),
		TxID:               txID,
	}

	assignedTo, sequence, err := p.state.applySettlement(settlement{tx: tx, completion: completion})
	if err != nil {
		logger.L().Error("任务结算失败",
			slog.Any("error", err),
			slog.String("task_id", taskID),
			slog.String("tx_id", txID),
		)
		p.emitAlert(ctx, taskID, txID, err)
		return nil, err
	}

	logger.Audit().Info("任务结算完成",
		slog.String("task_id", taskID),
		slog.String("task_type", req.TaskType),
		slog.String("worker", workerID),
		slog.Float64("cost_hbar", budget),
		slog.String("tx_id", txID),
	)
	p.logDebug("任务回执已生成", slog.String("task_id", taskID), slog.Int64("hcs_sequence", sequence))
	metrics.ObserveSettlement(req.TaskType, workerID, budget)

	p.publishCompletion(ctx, taskID, completion)
	p.archiveSettlement(ctx, taskID, tx)

	return &Receipt{
		TaskID:      taskID,
		Status:      StatusCompleted,
		Result:      result,
		CostHBAR:    budget,
		DurationMS:  durationMS,
		AssignedTo:  assignedTo,
		TxID:        txID,
		HCSSequence: sequence,
	}, nil
}

// DemoTasks 返回演示周期固定提交的三个任务，覆盖全部三类执行者。
func DemoTasks() []TaskRequest {
	return []TaskRequest{
		{TaskType: "summarize", Payload: "Summarize the Hedera whitepaper key points on hashgraph consensus", BudgetHBAR: Budget(0.5)},
		{TaskType: "review", Payload: "Review this Solidity contract for reentrancy vulnerabilities", BudgetHBAR: Budget(1.0)},
		{TaskType: "analyze", Payload: "Analyze daily active users trend: [120,145,132,178,201,189,224]", BudgetHBAR: Budget(0.75)},
	}
}

// RunDemo 顺序提交演示任务，任一提交失败立即终止并返回该错误。
func (p *Processor) RunDemo(ctx context.Context) (*DemoReport, error) {
	tasks := DemoTasks()
	results := make([]Receipt, 0, len(tasks))
	total := 0.0
	for _, req := range tasks {
		receipt, err := p.Submit(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, *receipt)
		total += receipt.CostHBAR
	}
	return &DemoReport{
		Demo:           "complete",
		TasksExecuted:  len(results),
		TotalHBARSpent: total,
		Results:        results,
	}, nil
}

func (p *Processor) publishCompletion(ctx context.Context, taskID string, msg Message) {
	if p.feed == nil {
		return
	}
	if err := p.feed.Publish(ctx, msg); err != nil {
		wrapped := xerrors.Wrap(xerrors.CodePublishFailure, err, "推送共识消息失败",
			xerrors.WithMetadata("message_id", msg.ID))
		logger.L().Warn("推送共识消息失败",
			slog.Any("error", err),
			slog.String("message_id", msg.ID),
			slog.String("topic", msg.Topic),
		)
		p.emitAlert(ctx, taskID, msg.TxID, wrapped)
	}
}

func (p *Processor) archiveSettlement(ctx context.Context, taskID string, tx Transaction) {
	if p.archive == nil {
		return
	}
	if err := p.archive.Archive(ctx, tx); err != nil {
		wrapped := xerrors.Wrap(xerrors.CodeStorageFailure, err, "结算流水存档失败",
			xerrors.WithMetadata("tx_id", tx.TxID))
		logger.L().Warn("结算流水存档失败",
			slog.Any("error", err),
			slog.String("task_id", taskID),
			slog.String("tx_id", tx.TxID),
		)
		p.emitAlert(ctx, taskID, tx.TxID, wrapped)
	}
}

func (p *Processor) logDebug(msg string, attrs ...slog.Attr) {
	if p.logger == nil {
		return
	}
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	p.logger.Debug(msg, args...)
}

func (p *Processor) emitAlert(ctx context.Context, taskID, txID string, cause error) {
	if p == nil || p.alerter == nil || cause == nil {
		return
	}
	if !xerrors.ShouldAlert(cause) {
		return
	}
	event := alerting.Event{
		Code:       xerrors.CodeOf(cause),
		Message:    cause.Error(),
		Severity:   xerrors.SeverityOf(cause),
		TaskID:     taskID,
		Metadata:   map[string]string{"tx_id": txID},
		OccurredAt: time.Now(),
	}
	if err := p.alerter.Notify(ctx, event); err != nil {
		logger.L().Error("告警通知失败",
			slog.Any("error", err),
			slog.String("task_id", taskID),
		)
	}
}
