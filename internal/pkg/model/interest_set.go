package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	Term3months Term = "3m"
	Term1year   Term = "1y"
	Term2years  Term = "2y"
	Term3years  Term = "3y"
	Term4years  Term = "4y"
	Term5years  Term = "5y"
	Term6years  Term = "6y"
	Term7years  Term = "7y"
	Term8years  Term = "8y"
	Term9years  Term = "9y"
	Term10years Term = "10y"

	TypeListRate        Type = "list"
	TypeAvgRate         Type = "average"
	TypeRatioDiscounted Type = "ratioDiscounted"
)

type Term string
type Type string
type Bank string

// Months returns the length of the fixed-rate period, e.g. 36 for "3y".
func (t Term) Months() (int, error) {
	s := string(t)
	if len(s) < 2 {
		return 0, fmt.Errorf("malformed term '%s'", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("malformed term '%s'", s)
	}
	switch s[len(s)-1] {
	case 'm':
		return n, nil
	case 'y':
		return n * 12, nil
	default:
		return 0, fmt.Errorf("malformed term '%s'", s)
	}
}

// ParseTerm accepts the canonical term notation ("3m", "5y"), case-insensitive.
func ParseTerm(s string) (Term, error) {
	t := Term(strings.ToLower(strings.TrimSpace(s)))
	if _, err := t.Months(); err != nil {
		return "", err
	}
	return t, nil
}

type RatioDiscountBoundary struct {
	MinRatio float64
	MaxRatio float64
}

// InterestSet is one published mortgage rate of a bank. Rates are fractional (0.0425 = 4.25%).
type InterestSet struct {
	Bank                    Bank
	NominalRate             float64
	EffectiveRate           float64
	Term                    Term
	Type                    Type
	RatioDiscountBoundaries *RatioDiscountBoundary
	UnionDiscount           bool
	ChangedOn               civil.Date
	LastCrawledAt           time.Time
}
