package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Ledger 是帳務系統的介面
//
// 驗證錯誤與找不到帳戶以 error 回傳 (包裝 domain.ErrValidation / domain.ErrAccountNotFound)，
// 餘額不足則是正常結果，以 domain.Result 回傳。
type Ledger interface {
	// CreateAccount 開戶
	CreateAccount(ctx context.Context, holder string, initial decimal.Decimal) (domain.Account, error)
	// Deposit 存款
	Deposit(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error)
	// Withdraw 提款
	Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error)
	// TransferTo 轉帳，全部成功或完全不變
	TransferTo(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.Result, error)
	// BalanceSummary 取得戶名與餘額
	BalanceSummary(ctx context.Context, number int64) (string, error)
	// TransactionHistory 取得帳戶交易紀錄
	TransactionHistory(ctx context.Context, number int64) ([]domain.Transaction, error)
	// ListAccounts 依建立順序列出所有帳戶
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// ClearAll 清空帳本
	ClearAll(ctx context.Context) error
	// Snapshot 匯出目前狀態
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// CommitObserver 帳本提交後的掛勾，例如持久化
type CommitObserver interface {
	OnCommit(ctx context.Context, event domain.CommitEvent)
}

// SlotStore 扁平的 key-value 儲存，每個 key 只存一份資料
type SlotStore interface {
	// Get 讀取，不存在時回傳 domain.ErrSlotEmpty
	Get(ctx context.Context, key string) ([]byte, error)
	// Put 覆寫
	Put(ctx context.Context, key string, value []byte) error
	// Delete 刪除，不存在不視為錯誤
	Delete(ctx context.Context, key string) error
}
