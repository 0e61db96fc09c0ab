package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/bolan-calc/internal/app/calculator"
	"github.com/ymakhloufi/bolan-calc/internal/app/schedule"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/config"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/store"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	interest     float64
	discountRate float64
	loan         string
	amortization string
	bank         string
	term         string
	start        string
	configPath   string
	showSchedule bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("calculator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }

	fs.Float64Var(&opts.interest, "i", 0, "nominal annual interest rate, fractional (0.05 = 5%)")
	fs.Float64Var(&opts.interest, "interest", 0, "alias of -i")
	fs.Float64Var(&opts.discountRate, "d", 0, "annual discount rate, fractional")
	fs.Float64Var(&opts.discountRate, "discount-rate", 0, "alias of -d")
	fs.StringVar(&opts.loan, "l", "", "loan principal")
	fs.StringVar(&opts.loan, "loan", "", "alias of -l")
	fs.StringVar(&opts.amortization, "a", "", "amount of principal paid down every month")
	fs.StringVar(&opts.amortization, "amortization", "", "alias of -a")
	fs.StringVar(&opts.bank, "bank", "", "take the interest rate from this bank's published rates")
	fs.StringVar(&opts.term, "term", string(model.Term3months), "fixed-rate term of the published rate, e.g. 3m or 5y")
	fs.StringVar(&opts.start, "start", "", "date of the first payment, YYYY-MM-DD (default today)")
	fs.StringVar(&opts.configPath, "config", "", "path of a YAML config file")
	fs.BoolVar(&opts.showSchedule, "schedule", false, "print every payment")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	req, err := buildRequest(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		usage(fs, stderr)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	var rates calculator.RateSource
	if req.Bank != "" && cfg.DatabaseURL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to rate store", zap.Error(err))
			fmt.Fprintf(stderr, "error: failed to connect to rate store: %v\n", err)
			return exitError
		}
		defer pool.Close()
		rates = store.NewPostgres(pool, logger.Named("PG Store"))
	}

	engine := schedule.NewEngine(logger.Named("Schedule Engine"))
	svc := calculator.NewService(engine, rates, logger.Named("Calculator"))

	report, err := svc.Calculate(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	if err := calculator.WriteSummary(stdout, report); err != nil {
		logger.Error("failed to write summary", zap.Error(err))
		return exitError
	}
	if opts.showSchedule {
		fmt.Fprintln(stdout)
		if err := calculator.WriteSchedule(stdout, report.Payments); err != nil {
			logger.Error("failed to write schedule", zap.Error(err))
			return exitError
		}
	}
	return exitOK
}

func buildRequest(fs *flag.FlagSet, opts options) (calculator.Request, error) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if opts.bank != "" && (set["i"] || set["interest"]) {
		return calculator.Request{}, fmt.Errorf("-interest and -bank are mutually exclusive")
	}

	var missing []string
	if opts.bank == "" && !set["i"] && !set["interest"] {
		missing = append(missing, "-interest (or -bank)")
	}
	if !set["d"] && !set["discount-rate"] {
		missing = append(missing, "-discount-rate")
	}
	if opts.loan == "" {
		missing = append(missing, "-loan")
	}
	if opts.amortization == "" {
		missing = append(missing, "-amortization")
	}
	if len(missing) > 0 {
		return calculator.Request{}, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	loan, err := decimal.NewFromString(strings.TrimSpace(opts.loan))
	if err != nil {
		return calculator.Request{}, fmt.Errorf("invalid loan '%s': not a number", opts.loan)
	}
	amortization, err := decimal.NewFromString(strings.TrimSpace(opts.amortization))
	if err != nil {
		return calculator.Request{}, fmt.Errorf("invalid amortization '%s': not a number", opts.amortization)
	}

	req := calculator.Request{
		Loan: model.LoanParameters{
			Principal:    loan,
			InterestRate: opts.interest,
			DiscountRate: opts.discountRate,
			Amortization: amortization,
		},
	}

	if opts.start != "" {
		start, err := civil.ParseDate(opts.start)
		if err != nil {
			return calculator.Request{}, fmt.Errorf("invalid start '%s': %w", opts.start, err)
		}
		req.Loan.StartDate = start
	}

	if opts.bank != "" {
		term, err := model.ParseTerm(opts.term)
		if err != nil {
			return calculator.Request{}, fmt.Errorf("invalid term: %w", err)
		}
		req.Bank = model.Bank(opts.bank)
		req.Term = term
	}
	return req, nil
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Usage: calculator -i <rate> -d <rate> -l <loan> -a <amortization> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Computes the payment schedule of a loan paid down by a fixed amount every month,")
	fmt.Fprintln(w, "with total interest and installments, nominal and discounted to present value.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
}
