package economy

import (
	xerrors "Hedera-Agent-Economy/internal/errors"
)

// Registry 持有经济体中全部智能体。条目只在进程启动时注入，运行期
// 仅由任务处理器在结算临界区内原地累加计数，从不删除。
// Registry 自身不做并发控制，串行化由 State 的临界区统一负责。
type Registry struct {
	agents    map[string]*Agent
	order     []string
	defaultID string
}

// NewRegistry 构造注册表并校验种子名单：编号必须唯一且非空，
// 兜底执行者必须在名单之内。
func NewRegistry(agents []Agent, defaultID string) (*Registry, error) {
	if len(agents) == 0 {
		return nil, xerrors.New(CodeSeedInvalid, "智能体名单不能为空")
	}
	r := &Registry{
		agents:    make(map[string]*Agent, len(agents)),
		order:     make([]string, 0, len(agents)),
		defaultID: defaultID,
	}
	for _, a := range agents {
		if a.ID == "" {
			return nil, xerrors.New(CodeSeedInvalid, "智能体编号不能为空")
		}
		if _, dup := r.agents[a.ID]; dup {
			return nil, xerrors.New(CodeSeedInvalid, "智能体编号重复", xerrors.WithMetadata("agent_id", a.ID))
		}
		clone := a.Clone()
		r.agents[a.ID] = &clone
		r.order = append(r.order, a.ID)
	}
	if _, ok := r.agents[defaultID]; !ok {
		return nil, xerrors.New(CodeSeedInvalid, "兜底执行者不在智能体名单中", xerrors.WithMetadata("agent_id", defaultID))
	}
	return r, nil
}

// resolve 返回指定编号的智能体，不存在时回落到兜底执行者。
// 返回的是注册表内部指针，仅供结算临界区使用。
func (r *Registry) resolve(id string) *Agent {
	if a, ok := r.agents[id]; ok {
		return a
	}
	return r.agents[r.defaultID]
}

// Get 返回指定编号智能体的拷贝。
func (r *Registry) Get(id string) (Agent, bool) {
	a, ok := r.agents[id]
	if !ok {
		return Agent{}, false
	}
	return a.Clone(), true
}

// List 按注册顺序返回全部智能体的拷贝。
func (r *Registry) List() []Agent {
	out := make([]Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id].Clone())
	}
	return out
}

// Count 返回注册的智能体总数。
func (r *Registry) Count() int {
	return len(r.order)
}

// BusyCount 返回当前处于 busy 状态的智能体数量。
func (r *Registry) BusyCount() int {
	busy := 0
	for _, a := range r.agents {
		if a.Status == AgentStatusBusy {
			busy++
		}
	}
	return busy
}
