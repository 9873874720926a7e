package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyPayout struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employeeId"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	AmountChf     decimal.Decimal `json:"amountChf"`
	AmountBtc     decimal.Decimal `json:"amountBtc"`
	RateChf       decimal.Decimal `json:"rateChf"`
	PublicAddress string          `json:"publicAddress"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

// Input is one element of a bulk payout request. Year, month and payment
// date are assigned by the server.
type Input struct {
	EmployeeID    int64               `json:"employeeId" validate:"required,gt=0"`
	AmountChf     decimal.NullDecimal `json:"amountChf" validate:"required"`
	AmountBtc     decimal.NullDecimal `json:"amountBtc" validate:"required"`
	RateChf       decimal.NullDecimal `json:"rateChf" validate:"required"`
	PublicAddress string              `json:"publicAddress" validate:"required,max=255"`
}
