package economy

import (
	"sync"
)

// State 是经济体的全部运行时状态：注册表、账本与派生主题映射的聚合。
// 状态随进程创建与消亡，不做任何持久化。所有访问都经由 State 的读写锁，
// 读操作彼此并发，结算的五步变更在写锁内一次完成、不可分割。
type State struct {
	mu       sync.RWMutex
	registry *Registry
	ledger   *Ledger
	topics   map[string]string
}

// NewState 以种子数据构造经济体状态。完成任务计数以智能体种子计数之和
// 为基准，结算总额由种子流水逐笔累积得出。
func NewState(seed Seed, topics map[string]string) (*State, error) {
	registry, err := NewRegistry(seed.Agents, DefaultWorkerID)
	if err != nil {
		return nil, err
	}

	var completedBase int64
	for _, a := range seed.Agents {
		completedBase += int64(a.TasksCompleted)
	}
	ledger, err := NewLedger(seed.Messages, seed.Transactions, completedBase)
	if err != nil {
		return nil, err
	}

	cloned := make(map[string]string, len(topics))
	for name, id := range topics {
		cloned[name] = id
	}
	return &State{registry: registry, ledger: ledger, topics: cloned}, nil
}

// Agents 返回全部智能体的一致性拷贝。
func (s *State) Agents() []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.List()
}

// AgentCount 返回注册的智能体总数。
func (s *State) AgentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Count()
}

// Agent 返回指定编号智能体的拷贝。
func (s *State) Agent(id string) (Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Get(id)
}

// Messages 返回最近 limit 条共识消息与消息总数。
func (s *State) Messages(limit int) ([]Message, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.RecentMessages(limit), s.ledger.MessageCount()
}

// Transactions 返回最近 limit 笔结算流水与流水总数。
func (s *State) Transactions(limit int) ([]Transaction, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.RecentTransactions(limit), s.ledger.TransactionCount()
}

// TasksCompleted 返回累计完成任务数。
func (s *State) TasksCompleted() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.TasksCompleted()
}

// SettledHBAR 返回累计结算金额。
func (s *State) SettledHBAR() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.SettledHBAR()
}

// Topics 返回主题名称到模拟主题编号的映射拷贝。
func (s *State) Topics() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := make(map[string]string, len(s.topics))
	for name, id := range s.topics {
		cloned[name] = id
	}
	return cloned
}

// settlement 描述一次待入账的任务结算：一笔流水加一条完成消息。
type settlement struct {
	tx         Transaction
	completion Message
}

// applySettlement 在写锁内一次完成结算的全部五步变更：完成计数、结算
// 总额、执行者计数与收益、流水追加、完成消息追加。引用编号冲突时整个
// 结算被拒绝且状态保持原样。返回实际入账执行者的展示名与新的共识序列号。
func (s *State) applySettlement(st settlement) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 追加流水是唯一可能失败的一步，放在最前，保证失败时零变更。
	if err := s.ledger.AppendTransaction(st.tx); err != nil {
		return "", 0, err
	}

	s.ledger.MarkTaskCompleted()

	worker := s.registry.resolve(st.tx.WorkerID)
	worker.TasksCompleted++
	worker.EarningsHBAR = RoundHBAR(worker.EarningsHBAR + st.tx.AmountHBAR)

	s.ledger.AppendMessage(st.completion)

	return worker.Name, s.ledger.Sequence(), nil
}
