package schedule

import (
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/rate"
	"go.uber.org/zap"
)

// MaxPeriods caps the schedule length at 1 000 years of monthly payments.
const MaxPeriods = 12_000

var twelve = decimal.NewFromInt(12)

// Engine turns loan parameters into a payment schedule and its summary. It holds no
// per-run state and can be shared.
type Engine struct {
	logger *zap.Logger
	today  func() civil.Date
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger,
		today:  func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// Calculate runs the whole pipeline for one loan: discount rate conversion, schedule
// generation and aggregation. It either returns a complete calculation or an error.
func (e *Engine) Calculate(p model.LoanParameters) (model.Calculation, error) {
	if math.IsNaN(p.InterestRate) || math.IsInf(p.InterestRate, 0) {
		return model.Calculation{}, paramErr("interest rate", p.InterestRate, rate.ErrInvalidRate)
	}
	monthly, err := rate.ToMonthly(p.DiscountRate)
	if err != nil {
		return model.Calculation{}, paramErr("discount rate", p.DiscountRate, err)
	}

	payments, err := e.Generate(p, monthly)
	if err != nil {
		return model.Calculation{}, err
	}

	result, err := Aggregate(payments, monthly)
	if err != nil {
		return model.Calculation{}, err
	}

	e.logger.Debug("calculated schedule",
		zap.String("principal", p.Principal.String()),
		zap.String("amortization", p.Amortization.String()),
		zap.Float64("monthlyDiscountRate", monthly),
		zap.Int("months", result.Months),
	)

	return model.Calculation{
		Parameters:          p,
		MonthlyDiscountRate: monthly,
		Payments:            payments,
		Result:              result,
	}, nil
}

// Generate walks the outstanding balance down to zero, one record per month. Interest is
// charged on the balance at the start of the month at InterestRate/12, and each record
// carries its interest discounted over Period+1 months.
func (e *Engine) Generate(p model.LoanParameters, monthlyDiscountRate float64) ([]model.PaymentRecord, error) {
	periods, err := periodCount(p)
	if err != nil {
		return nil, err
	}
	if periods == 0 {
		return []model.PaymentRecord{}, nil
	}
	if err := checkDiscounting(monthlyDiscountRate, periods+1); err != nil {
		return nil, paramErr("discount rate", monthlyDiscountRate, err)
	}

	start := p.StartDate
	if start == (civil.Date{}) {
		start = e.today()
	}

	interestRate := decimal.NewFromFloat(p.InterestRate)
	remaining := p.Principal
	payments := make([]model.PaymentRecord, 0, periods)

	for period := 1; remaining.IsPositive(); period++ {
		interest := remaining.Mul(interestRate).Div(twelve)
		amortization := decimal.Min(remaining, p.Amortization)
		remaining = remaining.Sub(amortization)

		payments = append(payments, model.PaymentRecord{
			Period:       period,
			Month:        period % 12,
			Year:         start.AddDays(365 * ((period - 1) / 12)).Year,
			Interest:     interest,
			Amortization: amortization,
			InterestNPV:  discount(interest, monthlyDiscountRate, period+1),
			Remaining:    remaining,
		})
	}

	e.logger.Debug("generated payments", zap.Int("periods", len(payments)))
	return payments, nil
}

// Aggregate sums the schedule. The present values weigh each record by its position in
// the slice (first record discounted one month), independently of the record's Period.
func Aggregate(payments []model.PaymentRecord, monthlyDiscountRate float64) (model.ScheduleResult, error) {
	if len(payments) > 0 {
		if err := checkDiscounting(monthlyDiscountRate, len(payments)); err != nil {
			return model.ScheduleResult{}, fmt.Errorf("failed to aggregate schedule: %w", err)
		}
	}

	res := model.ScheduleResult{
		TotalInterest:        decimal.Zero,
		TotalInstallments:    decimal.Zero,
		TotalInterestNPV:     decimal.Zero,
		TotalInstallmentsNPV: decimal.Zero,
		Months:               len(payments),
		Years:                float64(len(payments)) / 12,
	}
	for i, payment := range payments {
		res.TotalInterest = res.TotalInterest.Add(payment.Interest)
		res.TotalInstallments = res.TotalInstallments.Add(payment.Amortization)
		res.TotalInterestNPV = res.TotalInterestNPV.Add(discount(payment.Interest, monthlyDiscountRate, i+1))
		res.TotalInstallmentsNPV = res.TotalInstallmentsNPV.Add(discount(payment.Amortization, monthlyDiscountRate, i+1))
	}

	return res, nil
}

// periodCount validates principal and amortization and returns ceil(principal/amortization).
func periodCount(p model.LoanParameters) (int, error) {
	if p.Principal.IsNegative() {
		return 0, paramErr("principal", p.Principal, ErrInvalidPrincipal)
	}
	if p.Principal.IsZero() {
		return 0, nil
	}
	if !p.Amortization.IsPositive() {
		return 0, paramErr("amortization", p.Amortization, ErrInvalidAmortization)
	}

	n, rem := p.Principal.QuoRem(p.Amortization, 0)
	if !rem.IsZero() {
		n = n.Add(decimal.NewFromInt(1))
	}
	if n.GreaterThan(decimal.NewFromInt(MaxPeriods)) {
		return 0, paramErr("amortization", p.Amortization, fmt.Errorf("%w (%d)", ErrTooManyPeriods, MaxPeriods))
	}
	return int(n.IntPart()), nil
}

// checkDiscounting rejects monthly rates for which (1+m)^k is zero or undefined for some
// exponent up to maxExponent.
func checkDiscounting(monthly float64, maxExponent int) error {
	if math.IsNaN(monthly) || math.IsInf(monthly, 0) || monthly <= -1 {
		return fmt.Errorf("%w: monthly discount rate %v has no present value", rate.ErrInvalidRate, monthly)
	}
	if monthly < 0 && math.Pow(1+monthly, float64(maxExponent)) == 0 {
		return fmt.Errorf("%w: discounting at %v underflows over %d months", rate.ErrInvalidRate, monthly, maxExponent)
	}
	return nil
}

// discount returns amount / (1+monthly)^months. The factor is computed in float64, so
// present values carry roughly 15 significant digits; a factor that overflows counts as
// an infinitely distant payment worth nothing today.
func discount(amount decimal.Decimal, monthly float64, months int) decimal.Decimal {
	factor := math.Pow(1+monthly, float64(months))
	if math.IsInf(factor, 1) || factor == 0 {
		// zero factors are rejected by checkDiscounting before generation
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromFloat(factor))
}
