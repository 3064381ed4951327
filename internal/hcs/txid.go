package hcs

import (
	"fmt"
	"sync"
	"time"
)

// TransactionIDs hands out simulated transaction reference ids shaped like
// Hedera's account@seconds.nanos form. Ids generated within the same wall
// clock second receive an increasing nanos suffix so that no two calls ever
// return the same reference, even under concurrent bursts or a clock that
// steps backwards.
type TransactionIDs struct {
	mu       sync.Mutex
	operator string
	second   int64
	seq      int64
}

// NewTransactionIDs creates an allocator bound to the given operator
// account. An empty operator falls back to the built-in default.
func NewTransactionIDs(operator string) *TransactionIDs {
	if operator == "" {
		operator = DefaultOperatorAccount
	}
	return &TransactionIDs{operator: operator, second: -1}
}

// Operator returns the account prefix used for generated ids.
func (g *TransactionIDs) Operator() string {
	return g.operator
}

// Next returns the reference id for a transaction observed at t.
func (g *TransactionIDs) Next(t time.Time) string {
	sec := t.Unix()

	g.mu.Lock()
	defer g.mu.Unlock()
	if sec <= g.second {
		// Same second, or the clock went backwards: keep the highest
		// second seen and bump the suffix to stay unique.
		sec = g.second
		g.seq++
	} else {
		g.second = sec
		g.seq = 0
	}
	return fmt.Sprintf("%s@%d.%09d", g.operator, sec, g.seq)
}
