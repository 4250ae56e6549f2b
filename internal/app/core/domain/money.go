package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces 金額統一保留小數點後 2 位
const CurrencyPlaces int32 = 2

// NormalizeAmount 將金額四捨五入到 CurrencyPlaces 位
func NormalizeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

// ValidateAmount 正規化後檢查金額必須大於 0
//
// 參數:
//
//	amount: 原始金額
//	action: 用於錯誤訊息的動作名稱 (deposit / withdrawal / transfer)
//
// 回傳:
//
//	decimal.Decimal: 正規化後的金額
//	error: 金額 <= 0 時回傳 ErrValidation
func ValidateAmount(amount decimal.Decimal, action string) (decimal.Decimal, error) {
	amount = NormalizeAmount(amount)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: please enter a %s amount greater than 0", ErrValidation, action)
	}
	return amount, nil
}

// FormatMoney 輸出 $123.45 格式
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(CurrencyPlaces)
}
