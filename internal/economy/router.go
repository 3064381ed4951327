package economy

// Router 将任务类型映射到负责执行的智能体。
// 未知类型一律回落到默认执行者，路由本身永不失败、没有副作用。
type Router struct {
	routes   map[string]string
	fallback string
}

// NewRouter 构造带内置技能映射的路由器。
func NewRouter() *Router {
	return NewRouterWithRoutes(map[string]string{
		"summarize":     "worker-summarizer",
		"tldr":          "worker-summarizer",
		"abstract":      "worker-summarizer",
		"review":        "worker-code-reviewer",
		"lint":          "worker-code-reviewer",
		"security-scan": "worker-code-reviewer",
		"analyze":       "worker-data-analyst",
		"stats":         "worker-data-analyst",
		"chart":         "worker-data-analyst",
	}, DefaultWorkerID)
}

// NewRouterWithRoutes 允许自定义技能映射与兜底执行者。
func NewRouterWithRoutes(routes map[string]string, fallback string) *Router {
	cloned := make(map[string]string, len(routes))
	for skill, worker := range routes {
		cloned[skill] = worker
	}
	if fallback == "" {
		fallback = DefaultWorkerID
	}
	return &Router{routes: cloned, fallback: fallback}
}

// Route 返回任务类型对应的执行者编号。
func (r *Router) Route(taskType string) string {
	if worker, ok := r.routes[taskType]; ok {
		return worker
	}
	return r.fallback
}

// Fallback 返回兜底执行者编号。
func (r *Router) Fallback() string {
	return r.fallback
}
