package memory

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// ConfigureLockDiagnostics 設定帳本鎖的等待逾時偵測
//
// 逾時只回報不結束行程，等待中的請求繼續等鎖
//
// 參數:
//
//	timeout: 等鎖超過此時間即回報，<= 0 關閉偵測
//	report: 回報函式 (e.g. log.Printf)
func ConfigureLockDiagnostics(timeout time.Duration, report func(format string, args ...any)) {
	deadlock.Opts.DeadlockTimeout = timeout
	deadlock.Opts.OnPotentialDeadlock = func() {
		report("[ledger] waited more than %v for the ledger lock", timeout)
	}
}
