package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/greywire/proxypool/internal/reload"
)

func TestRunUntilReload_StopsWhenFlagSetBetweenRounds(t *testing.T) {
	var flag reload.Flag
	var calls int32

	done := make(chan struct{})
	go func() {
		runUntilReload(context.Background(), &flag, 50*time.Millisecond, func() {
			n := atomic.AddInt32(&calls, 1)
			if n == 2 {
				flag.Set()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runUntilReload did not return after flag was set")
	}

	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected at least 2 rounds before stopping, got %d", calls)
	}
}

func TestRunUntilReload_StopsOnContextCancel(t *testing.T) {
	var flag reload.Flag
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runUntilReload(ctx, &flag, time.Hour, func() {})
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runUntilReload did not return after context cancellation")
	}
}

func TestRunUntilReload_SkipsRoundWhenFlagAlreadySet(t *testing.T) {
	var flag reload.Flag
	flag.Set()
	var calls int32

	runUntilReload(context.Background(), &flag, time.Hour, func() {
		atomic.AddInt32(&calls, 1)
	})

	if calls != 0 {
		t.Fatalf("expected no rounds when flag pre-set, got %d", calls)
	}
}
