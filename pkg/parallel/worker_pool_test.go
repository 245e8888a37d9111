package parallel

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/riversys/hydroline/pkg/logging"
)

func TestWorkerPoolExecutesTasks(t *testing.T) {
	pool, err := NewWorkerPool(4, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}

	var counter int64
	for i := 0; i < 50; i++ {
		if ok := pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		}); !ok {
			t.Fatal("Submit returned false on open pool")
		}
	}
	pool.Close()

	if counter != 50 {
		t.Errorf("executed %d tasks, want 50", counter)
	}
}

func TestWorkerPoolClampsWorkerCount(t *testing.T) {
	pool, err := NewWorkerPool(0, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}
	defer pool.Close()

	if pool.Workers() != 1 {
		t.Errorf("Workers() = %d, want 1", pool.Workers())
	}
}

func TestWorkerPoolRejectsAfterClose(t *testing.T) {
	pool, err := NewWorkerPool(2, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}
	pool.Close()

	if ok := pool.Submit(func() {}); ok {
		t.Error("Submit succeeded on closed pool")
	}
}

func TestWorkerPoolRecoverFromPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.ErrorLevel)
	pool, err := NewWorkerPool(2, logger)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	pool.Submit(func() {
		defer wg.Done()
		panic("task exploded")
	})
	pool.Submit(func() {
		defer wg.Done()
	})
	wg.Wait()
	pool.Close()

	// Close waits for the workers, so the recover has logged by now.
	if !strings.Contains(buf.String(), "worker panic recovered") {
		t.Errorf("panic not routed to the logger: %q", buf.String())
	}
}

func TestChunks(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}

	chunks := Chunks(ids, 2)
	if len(chunks) != 3 {
		t.Fatalf("Chunks returned %d chunks, want 3", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != "e" {
		t.Errorf("last chunk = %v, want [e]", chunks[2])
	}

	if got := Chunks([]string{}, 2); got != nil {
		t.Errorf("Chunks of empty slice = %v, want nil", got)
	}

	whole := Chunks(ids, 0)
	if len(whole) != 1 || len(whole[0]) != 5 {
		t.Errorf("Chunks with size 0 = %v, want one chunk of 5", whole)
	}
}
