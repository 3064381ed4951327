package economy

import "github.com/google/uuid"

// NewTaskID 生成短任务编号，形如 task-1a2b3c4d。
func NewTaskID() string {
	return "task-" + uuid.NewString()[:8]
}

// NewMessageID 生成短消息编号，形如 msg-1a2b3c。
func NewMessageID() string {
	return "msg-" + uuid.NewString()[:6]
}
