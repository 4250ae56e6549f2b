package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account 帳戶
//
// Holder 建立後不可修改，Balance 只能透過 Deposit/Withdraw 改變，
// Transactions 只能追加。
type Account struct {
	Number       int64
	Holder       string
	Balance      decimal.Decimal
	Transactions []Transaction
	CreatedAt    time.Time
}

// NewAccount 建立帳戶
//
// 參數:
//
//	number: 帳號
//	holder: 戶名 (會去除前後空白，不可為空)
//	initial: 初始餘額 (負數視為 0)
//	at: 建立時間
//
// 回傳:
//
//	*Account: 新帳戶
//	error: 戶名為空時回傳 ErrValidation
func NewAccount(number int64, holder string, initial decimal.Decimal, at time.Time) (*Account, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return nil, fmt.Errorf("%w: please enter the account holder's name", ErrValidation)
	}
	initial = NormalizeAmount(initial)
	if initial.IsNegative() {
		initial = decimal.Zero
	}
	return &Account{
		Number:       number,
		Holder:       holder,
		Balance:      initial,
		Transactions: []Transaction{},
		CreatedAt:    at,
	}, nil
}

// Deposit 存款
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrValidation
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw 提款
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrValidation
	}
	if !a.CanCover(amount) {
		return ErrInsufficientBalance
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// CanCover 餘額是否足以扣除 amount
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Record 追加交易紀錄
func (a *Account) Record(tx Transaction) {
	a.Transactions = append(a.Transactions, tx)
}

// Clone 深拷貝，交易切片不與原帳戶共用
func (a *Account) Clone() Account {
	cp := *a
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return cp
}

// Summary 帳戶餘額摘要
func (a *Account) Summary() string {
	return fmt.Sprintf("Account balance for %s: %s", a.Holder, FormatMoney(a.Balance))
}
