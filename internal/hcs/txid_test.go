package hcs

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTransactionIDsFirstOfSecond(t *testing.T) {
	gen := NewTransactionIDs("0.0.5483526")
	at := time.Unix(1708765200, 0)

	got := gen.Next(at)
	want := "0.0.5483526@1708765200.000000000"
	if got != want {
		t.Fatalf("Next() = %s, want %s", got, want)
	}
}

func TestTransactionIDsSameSecondUnique(t *testing.T) {
	gen := NewTransactionIDs("")
	at := time.Unix(1708765200, 0)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := gen.Next(at)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate reference id %s after %d calls", id, i+1)
		}
		seen[id] = struct{}{}
		if !strings.HasPrefix(id, DefaultOperatorAccount+"@1708765200.") {
			t.Fatalf("unexpected id shape: %s", id)
		}
	}
}

func TestTransactionIDsResetOnNewSecond(t *testing.T) {
	gen := NewTransactionIDs("0.0.42")

	_ = gen.Next(time.Unix(100, 0))
	_ = gen.Next(time.Unix(100, 0))
	got := gen.Next(time.Unix(101, 0))
	if got != "0.0.42@101.000000000" {
		t.Fatalf("suffix did not reset on new second: %s", got)
	}
}

func TestTransactionIDsClockRewind(t *testing.T) {
	gen := NewTransactionIDs("0.0.42")

	first := gen.Next(time.Unix(200, 0))
	rewound := gen.Next(time.Unix(150, 0))
	if first == rewound {
		t.Fatalf("clock rewind produced duplicate id %s", first)
	}
	if !strings.HasPrefix(rewound, "0.0.42@200.") {
		t.Fatalf("rewound id must keep the highest generation second: %s", rewound)
	}
}

func TestTransactionIDsConcurrentBurst(t *testing.T) {
	gen := NewTransactionIDs("")
	at := time.Unix(1708765200, 0)

	const workers = 40
	const perWorker = 25

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- gen.Next(at)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate reference id under concurrency: %s", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
