package rate

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidRate = errors.New("invalid rate")

// ToMonthly converts an annual rate into the monthly rate that, compounded twelve
// times, yields the annual one: (1 + r)^(1/12) - 1.
func ToMonthly(yearly float64) (float64, error) {
	if err := check(yearly); err != nil {
		return 0, err
	}
	return math.Pow(1+yearly, 1.0/12.0) - 1, nil
}

// ToAnnual is the inverse of ToMonthly.
func ToAnnual(monthly float64) (float64, error) {
	if err := check(monthly); err != nil {
		return 0, err
	}
	return math.Pow(1+monthly, 12) - 1, nil
}

func check(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrInvalidRate, r)
	}
	if r < -1 {
		return fmt.Errorf("%w: %v is below -100%%", ErrInvalidRate, r)
	}
	return nil
}
