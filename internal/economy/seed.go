package economy

import (
	"encoding/json"
	"fmt"
	"os"

	"Hedera-Agent-Economy/internal/hcs"
)

// 内置经济体中的固定角色。
const (
	// DefaultWorkerID 是技能路由找不到匹配时兜底的执行者。
	DefaultWorkerID = "worker-summarizer"
	// BrokerAgentID 以经纪人身份发布任务完成消息。
	BrokerAgentID = "broker-001"
)

const seedRegisteredAt = "2026-02-24T10:00:00Z"

// Seed 描述经济体启动时注入的初始状态。
type Seed struct {
	Agents       []Agent       `json:"agents"`
	Messages     []Message     `json:"messages"`
	Transactions []Transaction `json:"transactions"`
}

// DefaultSeed 返回内置的演示经济体：六个智能体、三条共识消息、三笔结算流水。
func DefaultSeed() Seed {
	return Seed{
		Agents: []Agent{
			{
				ID:             "registry-001",
				Type:           AgentTypeRegistry,
				Name:           "Registry Agent",
				Skills:         []string{"discover", "register", "lookup"},
				BalanceHBAR:    50.0,
				TasksCompleted: 142,
				EarningsHBAR:   28.4,
				Status:         AgentStatusIdle,
				RegisteredAt:   seedRegisteredAt,
			},
			{
				ID:             "broker-001",
				Type:           AgentTypeBroker,
				Name:           "Broker Agent",
				Skills:         []string{"match", "negotiate", "route"},
				BalanceHBAR:    75.2,
				TasksCompleted: 138,
				EarningsHBAR:   55.1,
				Status:         AgentStatusBusy,
				RegisteredAt:   seedRegisteredAt,
			},
			{
				ID:             "worker-summarizer",
				Type:           AgentTypeWorker,
				Name:           "Summarizer Worker",
				Skills:         []string{"summarize", "tldr", "abstract"},
				BalanceHBAR:    22.5,
				TasksCompleted: 89,
				EarningsHBAR:   44.5,
				Status:         AgentStatusIdle,
				RegisteredAt:   seedRegisteredAt,
			},
			{
				ID:             "worker-code-reviewer",
				Type:           AgentTypeWorker,
				Name:           "Code Reviewer Worker",
				Skills:         []string{"review", "lint", "security-scan"},
				BalanceHBAR:    31.0,
				TasksCompleted: 67,
				EarningsHBAR:   67.0,
				Status:         AgentStatusIdle,
				RegisteredAt:   seedRegisteredAt,
			},
			{
				ID:             "worker-data-analyst",
				Type:           AgentTypeWorker,
				Name:           "Data Analyst Worker",
				Skills:         []string{"analyze", "stats", "chart"},
				BalanceHBAR:    18.7,
				TasksCompleted: 54,
				EarningsHBAR:   40.5,
				Status:         AgentStatusBusy,
				RegisteredAt:   seedRegisteredAt,
			},
			{
				ID:             "settlement-001",
				Type:           AgentTypeSettlement,
				Name:           "Settlement Agent",
				Skills:         []string{"settle", "transfer", "audit"},
				BalanceHBAR:    200.0,
				TasksCompleted: 308,
				EarningsHBAR:   15.4,
				Status:         AgentStatusIdle,
				RegisteredAt:   seedRegisteredAt,
			},
		},
		Messages: []Message{
			{
				ID:     "msg-001",
				Topic:  hcs.TopicAgentRegistry,
				Sender: "registry-001",
				Type:   MessageTypeAgentRegistered,
				Payload: map[string]any{
					"agent_id": "worker-summarizer",
					"skills":   []string{"summarize", "tldr"},
				},
				ConsensusTimestamp: "2026-02-24T10:00:00Z",
				TxID:               "0.0.5483526@1708765200.000000000",
			},
			{
				ID:     "msg-002",
				Topic:  hcs.TopicTaskNegotiation,
				Sender: "broker-001",
				Type:   MessageTypeTaskAssigned,
				Payload: map[string]any{
					"task_id":     "task-abc",
					"worker":      "worker-summarizer",
					"budget_hbar": 0.5,
				},
				ConsensusTimestamp: "2026-02-24T10:01:00Z",
				TxID:               "0.0.5483526@1708765260.000000000",
			},
			{
				ID:     "msg-003",
				Topic:  hcs.TopicSettlement,
				Sender: "settlement-001",
				Type:   MessageTypePaymentSettled,
				Payload: map[string]any{
					"task_id":     "task-abc",
					"amount_hbar": 0.5,
					"tx_id":       "0.0.5483526@1708765200.000000000",
				},
				ConsensusTimestamp: "2026-02-24T10:02:00Z",
				TxID:               "0.0.5483526@1708765320.000000000",
			},
		},
		Transactions: []Transaction{
			{
				TaskID:     "task-abc",
				WorkerID:   "worker-summarizer",
				AmountHBAR: 0.5,
				TxID:       "0.0.5483526@1708765200.000000000",
				DurationMS: 312,
				Timestamp:  1708765200,
				Mock:       true,
			},
			{
				TaskID:     "task-def",
				WorkerID:   "worker-code-reviewer",
				AmountHBAR: 1.0,
				TxID:       "0.0.5483526@1708765260.000000000",
				DurationMS: 428,
				Timestamp:  1708765260,
				Mock:       true,
			},
			{
				TaskID:     "task-ghi",
				WorkerID:   "worker-data-analyst",
				AmountHBAR: 0.75,
				TxID:       "0.0.5483526@1708765320.000000000",
				DurationMS: 389,
				Timestamp:  1708765320,
				Mock:       true,
			},
		},
	}
}

// LoadSeed 从 JSON 文件读取初始状态。文件中缺省的部分沿用内置种子，
// 便于只替换智能体名单而保留演示用的消息与流水。
func LoadSeed(path string) (Seed, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("读取种子文件失败: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(content, &seed); err != nil {
		return Seed{}, fmt.Errorf("解析种子文件失败: %w", err)
	}

	defaults := DefaultSeed()
	if len(seed.Agents) == 0 {
		seed.Agents = defaults.Agents
	}
	if len(seed.Messages) == 0 {
		seed.Messages = defaults.Messages
	}
	if len(seed.Transactions) == 0 {
		seed.Transactions = defaults.Transactions
	}
	return seed, nil
}
