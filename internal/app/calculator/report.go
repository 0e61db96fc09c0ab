package calculator

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/ymakhloufi/bolan-calc/internal/pkg/format"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
)

// WriteSummary prints the totals of a report, money in Kr.
func WriteSummary(w io.Writer, r Report) error {
	kr := format.Kr
	res := r.Result

	if r.Rate != nil {
		if _, err := fmt.Fprintf(w, "Interest rate: %s %% (%s %s, published %s)\n",
			percent(r.Rate.NominalRate), r.Rate.Bank, r.Rate.Term, r.Rate.ChangedOn); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w,
		"Months: %d\n"+
			"Years: %s\n"+
			"Total interest cost: %s\n"+
			"Total installments: %s\n"+
			"Total interest NPV: %s\n"+
			"Total installments NPV: %s\n",
		res.Months,
		strconv.FormatFloat(math.Round(res.Years*100)/100, 'f', -1, 64),
		kr.Format(res.TotalInterest),
		kr.Format(res.TotalInstallments),
		kr.Format(res.TotalInterestNPV),
		kr.Format(res.TotalInstallmentsNPV),
	)
	return err
}

// WriteSchedule prints one aligned row per payment.
func WriteSchedule(w io.Writer, payments []model.PaymentRecord) error {
	kr := format.Kr
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Period\tMonth\tYear\tInterest\tAmortization\tInstallment\tInterest NPV\tRemaining\t")
	for _, p := range payments {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Period, p.Month, p.Year,
			kr.Format(p.Interest),
			kr.Format(p.Amortization),
			kr.Format(p.Installment()),
			kr.Format(p.InterestNPV),
			kr.Format(p.Remaining),
		)
	}
	return tw.Flush()
}

func percent(r float64) string {
	return strconv.FormatFloat(math.Round(r*1e6)/1e4, 'f', -1, 64)
}
