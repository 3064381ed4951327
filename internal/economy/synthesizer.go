package economy

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// 模拟执行耗时的取值区间（毫秒，含两端）。
const (
	minDurationMS = 280
	maxDurationMS = 650
)

// Synthesizer 为任务生成演示用的结果文本与模拟耗时。
// 随机源可注入，便于测试复现；并发调用由内部互斥锁保护。
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer 构造结果合成器。rng 为 nil 时使用时间种子。
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng}
}

// Synthesize 返回任务的结果描述与模拟执行耗时（毫秒）。
// 已识别的任务类型套用固定模板并截取载荷片段，其余类型返回通用完成语。
func (s *Synthesizer) Synthesize(taskType, payload string) (string, int) {
	var result string
	switch taskType {
	case "summarize":
		result = fmt.Sprintf("Summary: %s… [AI condensed to 3 key points via HCS-verified consensus]", truncate(payload, 120))
	case "review":
		result = fmt.Sprintf("Code Review: 0 critical issues detected. 2 style suggestions. Reentrancy pattern flagged for: %s", truncate(payload, 80))
	case "analyze":
		result = fmt.Sprintf("Analysis complete: Dataset shows upward trend. Mean=%d, σ=%d. Confidence: 94%%", s.randRange(100, 500), s.randRange(10, 50))
	default:
		result = fmt.Sprintf("Task completed: %s", truncate(payload, 100))
	}
	return result, s.randRange(minDurationMS, maxDurationMS)
}

func (s *Synthesizer) randRange(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

// truncate 按字符截断文本，保证结果片段与日志条目有界。
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
