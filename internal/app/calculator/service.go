package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"go.uber.org/zap"
)

var ErrNoRateSource = errors.New("no rate source configured")

type Engine interface {
	Calculate(p model.LoanParameters) (model.Calculation, error)
}

type RateSource interface {
	LatestInterestSet(ctx context.Context, bank model.Bank, term model.Term) (model.InterestSet, error)
}

// Request is one calculation. When Bank is set, the loan's interest rate is replaced by
// the bank's current nominal rate for Term.
type Request struct {
	Loan model.LoanParameters
	Bank model.Bank
	Term model.Term
}

type Report struct {
	model.Calculation
	// Rate is the published rate the calculation used, if it was looked up.
	Rate *model.InterestSet
}

type Service struct {
	engine Engine
	rates  RateSource
	logger *zap.Logger
}

// NewService builds the calculator. rates may be nil when no rate store is configured.
func NewService(engine Engine, rates RateSource, logger *zap.Logger) *Service {
	return &Service{engine: engine, rates: rates, logger: logger}
}

func (s *Service) Calculate(ctx context.Context, req Request) (Report, error) {
	var report Report

	loan := req.Loan
	if req.Bank != "" {
		set, err := s.lookupRate(ctx, req.Bank, req.Term)
		if err != nil {
			return Report{}, err
		}
		loan.InterestRate = set.NominalRate
		report.Rate = &set
	}

	calc, err := s.engine.Calculate(loan)
	if err != nil {
		s.logger.Debug("calculation rejected", zap.Error(err))
		return Report{}, err
	}
	report.Calculation = calc

	s.logger.Info("calculated loan",
		zap.String("principal", loan.Principal.String()),
		zap.Float64("interestRate", loan.InterestRate),
		zap.Int("months", calc.Result.Months),
	)
	return report, nil
}

func (s *Service) lookupRate(ctx context.Context, bank model.Bank, term model.Term) (model.InterestSet, error) {
	if s.rates == nil {
		return model.InterestSet{}, fmt.Errorf("failed to look up rate of %s: %w", bank, ErrNoRateSource)
	}
	set, err := s.rates.LatestInterestSet(ctx, bank, term)
	if err != nil {
		return model.InterestSet{}, fmt.Errorf("failed to look up rate of %s: %w", bank, err)
	}
	s.logger.Debug("using published rate", zap.Any("interestSet", set))
	return set, nil
}
