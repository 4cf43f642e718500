package common

import "time-report-go/internal/domain/money"

// MoneyResponse carries both the exact minor-unit amount and its decimal
// rendering.
type MoneyResponse struct {
	Amount   string `json:"amount"`
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

func ToMoneyResponse(m money.Money) MoneyResponse {
	places := int32(0)
	if currency, err := money.Lookup(m.Currency); err == nil {
		places = int32(currency.Exponent)
	}
	return MoneyResponse{
		Amount:   m.Decimal().StringFixed(places),
		Minor:    m.Amount,
		Currency: string(m.Currency),
	}
}
