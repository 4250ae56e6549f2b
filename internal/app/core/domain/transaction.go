package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType 交易類型
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdraw TransactionType = 2
	// 轉出
	TransactionTypeTransferOut TransactionType = 3
	// 轉入
	TransactionTypeTransferIn TransactionType = 4
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeDeposit:     "deposit",
	TransactionTypeWithdraw:    "withdraw",
	TransactionTypeTransferOut: "transfer_out",
	TransactionTypeTransferIn:  "transfer_in",
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsTransfer 轉出/轉入才有對手帳號
func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferOut || t == TransactionTypeTransferIn
}

// ParseTransactionType 由名稱還原交易類型
func ParseTransactionType(name string) (TransactionType, bool) {
	for t, n := range transactionTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Transaction 一筆已發生的餘額異動，建立後不可修改
type Transaction struct {
	// ID: 交易追蹤號
	ID uuid.UUID
	// Amount: 金額 (> 0)
	Amount decimal.Decimal
	// Counterparty: 轉帳對手帳號，非轉帳交易為 0
	Counterparty int64
	// CreatedAt: 交易時間
	CreatedAt time.Time
	Type      TransactionType
}

// NewTransaction 建立一筆交易紀錄
func NewTransaction(txType TransactionType, amount decimal.Decimal, counterparty int64, at time.Time) Transaction {
	return Transaction{
		ID:           uuid.New(),
		Amount:       amount,
		Counterparty: counterparty,
		CreatedAt:    at,
		Type:         txType,
	}
}
