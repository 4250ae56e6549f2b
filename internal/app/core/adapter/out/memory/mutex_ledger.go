package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

const (
	// DefaultNumberMin 預設帳號下限
	DefaultNumberMin int64 = 100000
	// DefaultNumberMax 預設帳號上限 (含)
	DefaultNumberMax int64 = 999999
	// maxNumberAttempts 產生帳號時遇到碰撞的重試上限
	maxNumberAttempts = 64
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	order: 帳號的建立順序，用於列表
//	mu: 保護上述資料，轉帳在同一個臨界區內完成
//	observers: 每次變更提交後通知 (持久化)
type MutexLedger struct {
	accounts  map[int64]*domain.Account
	order     []int64
	mu        deadlock.RWMutex
	observers []usecase.CommitObserver

	numberMin int64
	numberMax int64
	randInt   func(n int64) int64
	now       func() time.Time
}

// Option 設定 MutexLedger
type Option func(*MutexLedger)

// WithObserver 註冊提交後的觀察者，依註冊順序呼叫
func WithObserver(o usecase.CommitObserver) Option {
	return func(m *MutexLedger) {
		m.observers = append(m.observers, o)
	}
}

// WithNumberRange 設定帳號範圍 [min, max]
func WithNumberRange(min, max int64) Option {
	return func(m *MutexLedger) {
		m.numberMin = min
		m.numberMax = max
	}
}

// WithRandom 替換亂數來源，回傳 [0, n) 的整數
func WithRandom(randInt func(n int64) int64) Option {
	return func(m *MutexLedger) {
		m.randInt = randInt
	}
}

// WithClock 替換時間來源
func WithClock(now func() time.Time) Option {
	return func(m *MutexLedger) {
		m.now = now
	}
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	accounts: 啟動時還原的帳戶 (依建立順序)，可為 nil
//	opts: 其他設定
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(accounts []*domain.Account, opts ...Option) *MutexLedger {
	ledger := &MutexLedger{
		accounts:  make(map[int64]*domain.Account, len(accounts)),
		order:     make([]int64, 0, len(accounts)),
		numberMin: DefaultNumberMin,
		numberMax: DefaultNumberMax,
		randInt:   rand.Int64N,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ledger)
	}
	for _, acc := range accounts {
		if _, dup := ledger.accounts[acc.Number]; dup {
			continue
		}
		ledger.accounts[acc.Number] = acc
		ledger.order = append(ledger.order, acc.Number)
	}
	return ledger
}

// CreateAccount 開戶
//
// 參數:
//
//	ctx: 上下文
//	holder: 戶名
//	initial: 初始餘額，負數視為 0
//
// 回傳:
//
//	domain.Account: 新帳戶的拷貝
//	error: 戶名為空或帳號用盡
func (m *MutexLedger) CreateAccount(ctx context.Context, holder string, initial decimal.Decimal) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	number, err := m.nextNumber()
	if err != nil {
		return domain.Account{}, err
	}
	acc, err := domain.NewAccount(number, holder, initial, m.now())
	if err != nil {
		return domain.Account{}, err
	}
	m.accounts[number] = acc
	m.order = append(m.order, number)
	m.commit(ctx)
	return acc.Clone(), nil
}

// nextNumber 在範圍內隨機取號，碰撞時重抽
func (m *MutexLedger) nextNumber() (int64, error) {
	span := m.numberMax - m.numberMin + 1
	if span <= 0 {
		return 0, fmt.Errorf("%w: empty range [%d, %d]", domain.ErrAccountNumbersExhausted, m.numberMin, m.numberMax)
	}
	for i := 0; i < maxNumberAttempts; i++ {
		number := m.numberMin + m.randInt(span)
		if _, taken := m.accounts[number]; !taken {
			return number, nil
		}
	}
	return 0, fmt.Errorf("%w: no free number after %d attempts", domain.ErrAccountNumbersExhausted, maxNumberAttempts)
}

// Deposit 存款
func (m *MutexLedger) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, err := m.lookup(number)
	if err != nil {
		return domain.Result{}, err
	}
	amount, err = domain.ValidateAmount(amount, "deposit")
	if err != nil {
		return domain.Result{}, err
	}
	if err := acc.Deposit(amount); err != nil {
		return domain.Result{}, err
	}
	acc.Record(domain.NewTransaction(domain.TransactionTypeDeposit, amount, 0, m.now()))
	m.commit(ctx)
	return domain.OK(fmt.Sprintf("%s deposited. Current balance: %s",
		domain.FormatMoney(amount), domain.FormatMoney(acc.Balance))), nil
}

// Withdraw 提款，餘額不足回傳 StatusInsufficientFunds 且不變更狀態
func (m *MutexLedger) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, err := m.lookup(number)
	if err != nil {
		return domain.Result{}, err
	}
	amount, err = domain.ValidateAmount(amount, "withdrawal")
	if err != nil {
		return domain.Result{}, err
	}
	if !acc.CanCover(amount) {
		return domain.InsufficientFunds("Insufficient funds"), nil
	}
	if err := acc.Withdraw(amount); err != nil {
		return domain.Result{}, err
	}
	acc.Record(domain.NewTransaction(domain.TransactionTypeWithdraw, amount, 0, m.now()))
	m.commit(ctx)
	return domain.OK(fmt.Sprintf("%s withdrawn. Current balance: %s",
		domain.FormatMoney(amount), domain.FormatMoney(acc.Balance))), nil
}

// TransferTo 轉帳
//
// 先檢查兩邊帳戶與餘額，全部通過才同時扣款入帳並寫入雙邊紀錄，
// 任何一步失敗都不會改變狀態。
func (m *MutexLedger) TransferTo(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fromAccount, err := m.lookup(from)
	if err != nil {
		return domain.Result{}, err
	}
	toAccount, err := m.lookup(to)
	if err != nil {
		return domain.Result{}, err
	}
	amount, err = domain.ValidateAmount(amount, "transfer")
	if err != nil {
		return domain.Result{}, err
	}
	if from == to {
		return domain.Result{}, fmt.Errorf("%w: cannot transfer to the same account", domain.ErrValidation)
	}
	if !fromAccount.CanCover(amount) {
		return domain.InsufficientFunds("Insufficient funds for transfer"), nil
	}

	if err := fromAccount.Withdraw(amount); err != nil {
		return domain.Result{}, err
	}
	if err := toAccount.Deposit(amount); err != nil {
		// amount 已驗證為正數，理論上不會發生；仍回滾扣款
		fromAccount.Balance = fromAccount.Balance.Add(amount)
		return domain.Result{}, err
	}
	now := m.now()
	fromAccount.Record(domain.NewTransaction(domain.TransactionTypeTransferOut, amount, to, now))
	toAccount.Record(domain.NewTransaction(domain.TransactionTypeTransferIn, amount, from, now))
	m.commit(ctx)
	return domain.OK(fmt.Sprintf("%s transferred from %d to %d. Current balance: %s",
		domain.FormatMoney(amount), from, to, domain.FormatMoney(fromAccount.Balance))), nil
}

// BalanceSummary 取得戶名與餘額
func (m *MutexLedger) BalanceSummary(ctx context.Context, number int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, err := m.lookup(number)
	if err != nil {
		return "", err
	}
	return acc.Summary(), nil
}

// TransactionHistory 取得交易紀錄的拷貝
func (m *MutexLedger) TransactionHistory(ctx context.Context, number int64) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, err := m.lookup(number)
	if err != nil {
		return nil, err
	}
	return acc.Clone().Transactions, nil
}

// ListAccounts 依建立順序回傳所有帳戶的拷貝
func (m *MutexLedger) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Account, 0, len(m.order))
	for _, number := range m.order {
		out = append(out, m.accounts[number].Clone())
	}
	return out, nil
}

// ClearAll 清空帳本，無法復原
func (m *MutexLedger) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = make(map[int64]*domain.Account)
	m.order = m.order[:0]
	m.notify(ctx, domain.CommitEvent{Kind: domain.CommitKindReset})
	return nil
}

// Snapshot 匯出目前狀態
func (m *MutexLedger) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(), nil
}

func (m *MutexLedger) snapshotLocked() domain.Snapshot {
	accounts := make([]*domain.Account, 0, len(m.order))
	for _, number := range m.order {
		accounts = append(accounts, m.accounts[number])
	}
	return domain.NewSnapshot(accounts, m.now())
}

// lookup 呼叫端需持有鎖
func (m *MutexLedger) lookup(number int64) (*domain.Account, error) {
	acc, ok := m.accounts[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, number)
	}
	return acc, nil
}

// commit 變更完成後通知觀察者，呼叫端需持有寫鎖
func (m *MutexLedger) commit(ctx context.Context) {
	if len(m.observers) == 0 {
		return
	}
	snap := m.snapshotLocked()
	m.notify(ctx, domain.CommitEvent{Kind: domain.CommitKindMutation, Snapshot: &snap})
}

func (m *MutexLedger) notify(ctx context.Context, event domain.CommitEvent) {
	for _, o := range m.observers {
		o.OnCommit(ctx, event)
	}
}

var _ usecase.Ledger = (*MutexLedger)(nil)
