package domain

import "errors"

// Status 操作結果標籤，呈現層依此決定顯示樣式
type Status uint8

const (
	StatusOK Status = iota
	StatusInsufficientFunds
	StatusNotFound
	StatusValidationError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusValidationError:
		return "VALIDATION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus 由 String() 的輸出還原 Status
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusOK, StatusInsufficientFunds, StatusNotFound, StatusValidationError} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Result 帶有狀態標籤的操作結果
type Result struct {
	Status  Status
	Message string
}

// OK 成功結果
func OK(message string) Result {
	return Result{Status: StatusOK, Message: message}
}

// InsufficientFunds 餘額不足，屬於正常業務結果而非錯誤
func InsufficientFunds(message string) Result {
	return Result{Status: StatusInsufficientFunds, Message: message}
}

// Succeeded 是否成功
func (r Result) Succeeded() bool {
	return r.Status == StatusOK
}

// ResultFromError 將業務錯誤轉為 Result
//
// 回傳:
//
//	Result: 對應的結果
//	bool: 是否為可辨識的業務錯誤，false 代表內部錯誤應往上拋
func ResultFromError(err error) (Result, bool) {
	switch {
	case errors.Is(err, ErrValidation):
		return Result{Status: StatusValidationError, Message: err.Error()}, true
	case errors.Is(err, ErrAccountNotFound):
		// 帳號細節只留在 error 內供 log 使用
		return Result{Status: StatusNotFound, Message: "Account not found"}, true
	case errors.Is(err, ErrInsufficientBalance):
		return Result{Status: StatusInsufficientFunds, Message: "Insufficient funds"}, true
	default:
		return Result{}, false
	}
}
