package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// LoanParameters describe one loan paid down by a fixed amount every month.
// Rates are fractional: 0.05 means 5%.
type LoanParameters struct {
	Principal    decimal.Decimal
	InterestRate float64
	DiscountRate float64
	Amortization decimal.Decimal
	// StartDate anchors the calendar year of each payment. The zero value means today.
	StartDate civil.Date
}

// PaymentRecord is one month of the schedule.
type PaymentRecord struct {
	Period int
	// Month is Period % 12, so it is 0 for periods 12, 24, ...
	Month        int
	Year         int
	Interest     decimal.Decimal
	Amortization decimal.Decimal
	InterestNPV  decimal.Decimal
	// Remaining is the outstanding balance after this period's amortization.
	Remaining decimal.Decimal
}

// Installment is what the borrower pays in the period.
func (p PaymentRecord) Installment() decimal.Decimal {
	return p.Interest.Add(p.Amortization)
}

type ScheduleResult struct {
	TotalInterest        decimal.Decimal
	TotalInstallments    decimal.Decimal
	TotalInterestNPV     decimal.Decimal
	TotalInstallmentsNPV decimal.Decimal
	Months               int
	Years                float64
}

// WholeYears truncates Years, for displays that only show completed years.
func (r ScheduleResult) WholeYears() int {
	return r.Months / 12
}

// Calculation bundles everything produced by a single run.
type Calculation struct {
	Parameters          LoanParameters
	MonthlyDiscountRate float64
	Payments            []PaymentRecord
	Result              ScheduleResult
}
