package economy

import (
	"math"

	xerrors "Hedera-Agent-Economy/internal/errors"
)

// SequenceBase 是共识序列号的起始偏移，序列号等于基准值加消息总数。
const SequenceBase = 1000

// 读取窗口的默认大小。
const (
	DefaultMessageLimit     = 50
	DefaultTransactionLimit = 20
)

// RoundHBAR 将金额四舍五入到 4 位小数，即模拟结算的统一精度。
func RoundHBAR(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Ledger 保存只允许追加的共识消息日志与结算流水，并维护两个累计计数：
// 已完成任务数与累计结算金额。结算金额始终等于全部流水金额的滚动舍入和。
// Ledger 自身不做并发控制，串行化由 State 的临界区统一负责。
type Ledger struct {
	messages       []Message
	transactions   []Transaction
	txRefs         map[string]struct{}
	tasksCompleted int64
	settledHBAR    float64
}

// NewLedger 以种子数据构造账本。completedBase 为种子阶段已完成的任务数，
// 结算总额通过逐笔追加流水累积得出。
func NewLedger(messages []Message, transactions []Transaction, completedBase int64) (*Ledger, error) {
	l := &Ledger{
		messages:       make([]Message, 0, len(messages)+16),
		transactions:   make([]Transaction, 0, len(transactions)+16),
		txRefs:         make(map[string]struct{}, len(transactions)+16),
		tasksCompleted: completedBase,
	}
	for _, msg := range messages {
		l.AppendMessage(msg)
	}
	for _, tx := range transactions {
		if err := l.AppendTransaction(tx); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AppendMessage 追加一条共识消息。缺失编号时自动分配，永不拒绝。
func (l *Ledger) AppendMessage(msg Message) Message {
	if msg.ID == "" {
		msg.ID = NewMessageID()
	}
	l.messages = append(l.messages, msg)
	return msg
}

// AppendTransaction 追加一笔结算流水并累加结算总额。
// 引用编号与既有流水冲突时拒绝写入，且不产生任何变更。
func (l *Ledger) AppendTransaction(tx Transaction) error {
	if _, dup := l.txRefs[tx.TxID]; dup {
		return xerrors.New(CodeLedgerConflict, "", xerrors.WithMetadata("tx_id", tx.TxID))
	}
	l.txRefs[tx.TxID] = struct{}{}
	l.transactions = append(l.transactions, tx)
	l.settledHBAR = RoundHBAR(l.settledHBAR + tx.AmountHBAR)
	return nil
}

// SeenTransaction 判断引用编号是否已被记录。
func (l *Ledger) SeenTransaction(txID string) bool {
	_, ok := l.txRefs[txID]
	return ok
}

// MarkTaskCompleted 累加完成任务计数。
func (l *Ledger) MarkTaskCompleted() {
	l.tasksCompleted++
}

// RecentMessages 返回最近的 limit 条消息，保持插入顺序。
// limit 为负按 0 处理，超过日志长度时返回完整日志。
func (l *Ledger) RecentMessages(limit int) []Message {
	if limit < 0 {
		limit = 0
	}
	if limit > len(l.messages) {
		limit = len(l.messages)
	}
	out := make([]Message, 0, limit)
	for _, msg := range l.messages[len(l.messages)-limit:] {
		out = append(out, msg.Clone())
	}
	return out
}

// RecentTransactions 返回最近的 limit 笔流水，语义与 RecentMessages 一致。
func (l *Ledger) RecentTransactions(limit int) []Transaction {
	if limit < 0 {
		limit = 0
	}
	if limit > len(l.transactions) {
		limit = len(l.transactions)
	}
	out := make([]Transaction, limit)
	copy(out, l.transactions[len(l.transactions)-limit:])
	return out
}

// MessageCount 返回消息日志总长度。
func (l *Ledger) MessageCount() int {
	return len(l.messages)
}

// TransactionCount 返回结算流水总长度。
func (l *Ledger) TransactionCount() int {
	return len(l.transactions)
}

// TasksCompleted 返回累计完成任务数（含种子数据）。
func (l *Ledger) TasksCompleted() int64 {
	return l.tasksCompleted
}

// SettledHBAR 返回累计结算金额（含种子数据）。
func (l *Ledger) SettledHBAR() float64 {
	return l.settledHBAR
}

// Sequence 返回当前共识序列号。
func (l *Ledger) Sequence() int64 {
	return SequenceBase + int64(len(l.messages))
}
