package memory

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// slowObserver 第一次提交時通知 entered 後停頓
type slowObserver struct {
	calls   atomic.Int32
	entered chan struct{}
	delay   time.Duration
}

func (s *slowObserver) OnCommit(ctx context.Context, event domain.CommitEvent) {
	if s.calls.Add(1) == 1 {
		close(s.entered)
		time.Sleep(s.delay)
	}
}

func TestSlowObserverDoesNotKillProcess(t *testing.T) {
	saved := deadlock.Opts.DeadlockTimeout
	savedHook := deadlock.Opts.OnPotentialDeadlock
	savedBuf := deadlock.Opts.LogBuf
	t.Cleanup(func() {
		deadlock.Opts.DeadlockTimeout = saved
		deadlock.Opts.OnPotentialDeadlock = savedHook
		deadlock.Opts.LogBuf = savedBuf
	})
	deadlock.Opts.LogBuf = io.Discard

	reported := make(chan string, 4)
	ConfigureLockDiagnostics(50*time.Millisecond, func(format string, args ...any) {
		select {
		case reported <- format:
		default:
		}
	})

	obs := &slowObserver{entered: make(chan struct{}), delay: 300 * time.Millisecond}
	l := NewMutexLedger(nil, WithObserver(obs))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := l.CreateAccount(context.Background(), "Alice", dec("100")); err != nil {
			t.Errorf("CreateAccount(Alice) err=%v", err)
		}
	}()
	<-obs.entered
	go func() {
		defer wg.Done()
		if _, err := l.CreateAccount(context.Background(), "Bob", dec("0")); err != nil {
			t.Errorf("CreateAccount(Bob) err=%v", err)
		}
	}()
	wg.Wait()

	select {
	case <-reported:
	case <-time.After(time.Second):
		t.Fatal("lock wait was not reported")
	}
	accounts, _ := l.ListAccounts(context.Background())
	if len(accounts) != 2 {
		t.Fatalf("accounts=%d want 2", len(accounts))
	}
}
