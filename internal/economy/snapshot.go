package economy

import "time"

// Stats 是快照中的派生统计。
type Stats struct {
	TasksCompleted   int64             `json:"tasks_completed"`
	TotalHBARSettled float64           `json:"total_hbar_settled"`
	ActiveAgents     int               `json:"active_agents"`
	TotalAgents      int               `json:"total_agents"`
	Topics           map[string]string `json:"topics"`
}

// Snapshot 是某一时刻整个经济体的一致性视图，供轮询端直接渲染。
type Snapshot struct {
	Agents       []Agent       `json:"agents"`
	Messages     []Message     `json:"messages"`
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
	Timestamp    string        `json:"timestamp"`
}

// NowISO 返回 UTC 的 ISO-8601 时间戳，即模拟共识时间的统一格式。
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Snapshot 在单次读临界区内聚合全量视图：全部智能体、最近 50 条消息、
// 最近 20 笔流水与派生统计。快照绝不修改任何状态。
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make(map[string]string, len(s.topics))
	for name, id := range s.topics {
		topics[name] = id
	}
	return Snapshot{
		Agents:       s.registry.List(),
		Messages:     s.ledger.RecentMessages(DefaultMessageLimit),
		Transactions: s.ledger.RecentTransactions(DefaultTransactionLimit),
		Stats: Stats{
			TasksCompleted:   s.ledger.TasksCompleted(),
			TotalHBARSettled: RoundHBAR(s.ledger.SettledHBAR()),
			ActiveAgents:     s.registry.BusyCount(),
			TotalAgents:      s.registry.Count(),
			Topics:           topics,
		},
		Timestamp: NowISO(),
	}
}
