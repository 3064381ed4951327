package economy

// AgentType 表示智能体在经济体中承担的角色。
type AgentType string

const (
	AgentTypeRegistry   AgentType = "registry"
	AgentTypeBroker     AgentType = "broker"
	AgentTypeWorker     AgentType = "worker"
	AgentTypeSettlement AgentType = "settlement"
)

// AgentStatus 表示智能体当前的工作状态。
type AgentStatus string

const (
	AgentStatusIdle AgentStatus = "idle"
	AgentStatusBusy AgentStatus = "busy"
)

// Agent 描述一个参与任务经济的模拟智能体。
// 完成计数与累计收益只增不减，由任务处理器在结算临界区内更新。
type Agent struct {
	ID             string      `json:"agent_id"`
	Type           AgentType   `json:"agent_type"`
	Name           string      `json:"name"`
	Skills         []string    `json:"skills"`
	BalanceHBAR    float64     `json:"hbar_balance"`
	TasksCompleted int         `json:"tasks_completed"`
	EarningsHBAR   float64     `json:"earnings_hbar"`
	Status         AgentStatus `json:"status"`
	RegisteredAt   string      `json:"registered_at"`
}

// Clone 返回深拷贝，避免调用方篡改注册表内部状态。
func (a Agent) Clone() Agent {
	clone := a
	clone.Skills = append([]string(nil), a.Skills...)
	return clone
}
