package economy

// 消息类型标签。payload 的键值结构按类型约定，不做硬性校验。
const (
	MessageTypeAgentRegistered = "agent_registered"
	MessageTypeTaskAssigned    = "task_assigned"
	MessageTypeTaskCompleted   = "task_completed"
	MessageTypePaymentSettled  = "payment_settled"
)

// Message 是模拟共识日志中的一条记录。
// 日志只允许追加，插入顺序即共识顺序，记录一旦写入不再变更。
type Message struct {
	ID                 string         `json:"id"`
	Topic              string         `json:"topic"`
	Sender             string         `json:"sender"`
	Type               string         `json:"message_type"`
	Payload            map[string]any `json:"payload"`
	ConsensusTimestamp string         `json:"consensus_timestamp"`
	TxID               string         `json:"tx_id"`
}

// Clone 返回消息的拷贝，payload 做键值级复制。
func (m Message) Clone() Message {
	clone := m
	if m.Payload != nil {
		payload := make(map[string]any, len(m.Payload))
		for k, v := range m.Payload {
			payload[k] = v
		}
		clone.Payload = payload
	}
	return clone
}
