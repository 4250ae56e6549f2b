package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotVersion 快照格式版本
const SnapshotVersion = 1

// Snapshot 帳本的完整快照，依建立順序排列的 (帳號, 帳戶) 配對
type Snapshot struct {
	Version  int            `json:"version"`
	SavedAt  time.Time      `json:"saved_at"`
	Accounts []AccountEntry `json:"accounts"`
}

// AccountEntry 一組 (帳號, 帳戶) 配對
type AccountEntry struct {
	Number  int64         `json:"account_number"`
	Account AccountRecord `json:"account"`
}

// AccountRecord 帳戶的序列化格式，金額以字串保存避免精度遺失
type AccountRecord struct {
	Number       int64               `json:"account_number"`
	Holder       string              `json:"account_holder"`
	Balance      string              `json:"balance"`
	CreatedAt    string              `json:"created_at"`
	Transactions []TransactionRecord `json:"transactions"`
}

// TransactionRecord 交易的序列化格式
type TransactionRecord struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Counterparty int64  `json:"counterparty,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// NewSnapshot 由帳戶列表建立快照 (保持傳入順序)
func NewSnapshot(accounts []*Account, savedAt time.Time) Snapshot {
	snap := Snapshot{
		Version:  SnapshotVersion,
		SavedAt:  savedAt,
		Accounts: make([]AccountEntry, 0, len(accounts)),
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, AccountEntry{Number: a.Number, Account: toAccountRecord(a)})
	}
	return snap
}

func toAccountRecord(a *Account) AccountRecord {
	rec := AccountRecord{
		Number:       a.Number,
		Holder:       a.Holder,
		Balance:      a.Balance.StringFixed(CurrencyPlaces),
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339Nano),
		Transactions: make([]TransactionRecord, 0, len(a.Transactions)),
	}
	for _, tx := range a.Transactions {
		rec.Transactions = append(rec.Transactions, TransactionRecord{
			ID:           tx.ID.String(),
			Type:         tx.Type.String(),
			Amount:       tx.Amount.StringFixed(CurrencyPlaces),
			Counterparty: tx.Counterparty,
			Timestamp:    tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return rec
}

// RestoreAccounts 驗證快照並重建所有帳戶
//
// 回傳:
//
//	[]*Account: 依快照順序重建的帳戶
//	error: 任何欄位不合法時回傳包裝 ErrSnapshotInvalid 的錯誤
func RestoreAccounts(snap Snapshot) ([]*Account, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotInvalid, snap.Version)
	}
	seen := make(map[int64]struct{}, len(snap.Accounts))
	accounts := make([]*Account, 0, len(snap.Accounts))
	for i, entry := range snap.Accounts {
		if _, dup := seen[entry.Number]; dup {
			return nil, fmt.Errorf("%w: duplicate account number %d", ErrSnapshotInvalid, entry.Number)
		}
		seen[entry.Number] = struct{}{}

		acc, err := RestoreAccount(entry)
		if err != nil {
			return nil, fmt.Errorf("account entry %d: %w", i, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// RestoreAccount 反序列化工廠：逐欄驗證並重建帳戶與其交易紀錄
func RestoreAccount(entry AccountEntry) (*Account, error) {
	rec := entry.Account
	if rec.Number != entry.Number {
		return nil, fmt.Errorf("%w: entry key %d does not match account number %d", ErrSnapshotInvalid, entry.Number, rec.Number)
	}
	holder := strings.TrimSpace(rec.Holder)
	if holder == "" {
		return nil, fmt.Errorf("%w: account %d has empty holder", ErrSnapshotInvalid, rec.Number)
	}
	balance, err := decimal.NewFromString(rec.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d balance: %v", ErrSnapshotInvalid, rec.Number, err)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: account %d has negative balance", ErrSnapshotInvalid, rec.Number)
	}
	createdAt, err := parseTimestamp(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d created_at: %v", ErrSnapshotInvalid, rec.Number, err)
	}

	acc := &Account{
		Number:       rec.Number,
		Holder:       holder,
		Balance:      NormalizeAmount(balance),
		Transactions: make([]Transaction, 0, len(rec.Transactions)),
		CreatedAt:    createdAt,
	}
	for j, txRec := range rec.Transactions {
		tx, err := restoreTransaction(txRec)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d transaction %d: %v", ErrSnapshotInvalid, rec.Number, j, err)
		}
		acc.Record(tx)
	}
	return acc, nil
}

func restoreTransaction(rec TransactionRecord) (Transaction, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return Transaction{}, fmt.Errorf("id: %w", err)
	}
	txType, ok := ParseTransactionType(rec.Type)
	if !ok {
		return Transaction{}, fmt.Errorf("unknown type %q", rec.Type)
	}
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("amount: %w", err)
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("amount %s is not positive", rec.Amount)
	}
	if txType.IsTransfer() != (rec.Counterparty != 0) {
		return Transaction{}, fmt.Errorf("counterparty %d not valid for %s", rec.Counterparty, rec.Type)
	}
	at, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Transaction{}, fmt.Errorf("timestamp: %w", err)
	}
	return Transaction{
		ID:           id,
		Amount:       NormalizeAmount(amount),
		Counterparty: rec.Counterparty,
		CreatedAt:    at,
		Type:         txType,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// CommitKind 提交事件類型
type CommitKind uint8

const (
	// CommitKindMutation 帳本狀態已變更
	CommitKindMutation CommitKind = iota + 1
	// CommitKindReset 帳本已清空
	CommitKindReset
)

// CommitEvent 帳本每次成功變更後發出的事件
type CommitEvent struct {
	Kind CommitKind
	// Snapshot: 變更後的快照，Reset 時為 nil
	Snapshot *Snapshot
}
