package economy

// Transaction 是一笔模拟结算流水。流水只允许追加，写入后不再变更。
// Mock 恒为 true，表明金额从未真正上链。
type Transaction struct {
	TaskID     string  `json:"task_id"`
	WorkerID   string  `json:"worker_id"`
	AmountHBAR float64 `json:"amount_hbar"`
	TxID       string  `json:"tx_id"`
	DurationMS int     `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
	Mock       bool    `json:"mock"`
}
