package domain

import "errors"

var (
	// ErrValidation 呼叫端輸入不合法 (空白姓名、非正數金額...)
	ErrValidation = errors.New("validation error")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientBalance 餘額不足
	// 只在 domain 內部使用，Ledger 對外會轉成 StatusInsufficientFunds 的 Result
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountNumbersExhausted 帳號範圍內找不到未使用的號碼
	ErrAccountNumbersExhausted = errors.New("account numbers exhausted")

	// ErrSnapshotInvalid 快照內容無法還原成帳本
	ErrSnapshotInvalid = errors.New("snapshot invalid")

	// ErrSlotEmpty 儲存槽內沒有資料
	ErrSlotEmpty = errors.New("slot empty")
)
