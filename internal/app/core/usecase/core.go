package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層
// 所有業務結果都轉為 domain.Result，只有內部錯誤才以 error 回傳
type CoreUseCase struct {
	ledger Ledger
}

func NewCoreUseCase(ledger Ledger) *CoreUseCase {
	return &CoreUseCase{
		ledger: ledger,
	}
}

// CreateAccount 開戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, holder string, initial decimal.Decimal) (domain.Account, domain.Result, error) {
	acc, err := c.ledger.CreateAccount(ctx, holder, initial)
	if err != nil {
		res, err := classify(err)
		return domain.Account{}, res, err
	}
	return acc, domain.OK(createdMessage(acc)), nil
}

// Deposit 存款
func (c *CoreUseCase) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error) {
	res, err := c.ledger.Deposit(ctx, number, amount)
	if err != nil {
		return classify(err)
	}
	return res, nil
}

// Withdraw 提款
func (c *CoreUseCase) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (domain.Result, error) {
	res, err := c.ledger.Withdraw(ctx, number, amount)
	if err != nil {
		return classify(err)
	}
	return res, nil
}

// TransferTo 轉帳
func (c *CoreUseCase) TransferTo(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.Result, error) {
	res, err := c.ledger.TransferTo(ctx, from, to, amount)
	if err != nil {
		return classify(err)
	}
	return res, nil
}

// BalanceSummary 查詢餘額
func (c *CoreUseCase) BalanceSummary(ctx context.Context, number int64) (domain.Result, error) {
	summary, err := c.ledger.BalanceSummary(ctx, number)
	if err != nil {
		return classify(err)
	}
	return domain.OK(summary), nil
}

// TransactionHistory 查詢交易紀錄
func (c *CoreUseCase) TransactionHistory(ctx context.Context, number int64) ([]domain.Transaction, domain.Result, error) {
	history, err := c.ledger.TransactionHistory(ctx, number)
	if err != nil {
		res, err := classify(err)
		return nil, res, err
	}
	if len(history) == 0 {
		return history, domain.OK("No transactions found."), nil
	}
	return history, domain.OK(""), nil
}

// ListAccounts 列出所有帳戶
func (c *CoreUseCase) ListAccounts(ctx context.Context) ([]domain.Account, domain.Result, error) {
	accounts, err := c.ledger.ListAccounts(ctx)
	if err != nil {
		res, err := classify(err)
		return nil, res, err
	}
	if len(accounts) == 0 {
		return accounts, domain.OK("No accounts found."), nil
	}
	return accounts, domain.OK(""), nil
}

// ClearAll 清空所有資料
func (c *CoreUseCase) ClearAll(ctx context.Context) (domain.Result, error) {
	if err := c.ledger.ClearAll(ctx); err != nil {
		return classify(err)
	}
	return domain.OK("All data cleared."), nil
}

// classify 業務錯誤轉成 Result，其餘錯誤原樣回傳
func classify(err error) (domain.Result, error) {
	if res, ok := domain.ResultFromError(err); ok {
		return res, nil
	}
	return domain.Result{}, err
}

func createdMessage(acc domain.Account) string {
	return fmt.Sprintf("Account created for %s. Balance: %s. Account Number: %d",
		acc.Holder, domain.FormatMoney(acc.Balance), acc.Number)
}
