package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmortization = errors.New("amortization must be positive while principal remains")
	ErrInvalidPrincipal    = errors.New("principal must not be negative")
	ErrTooManyPeriods      = errors.New("schedule would exceed the maximum number of periods")
)

// ParameterError names the loan parameter a calculation was rejected for.
type ParameterError struct {
	Param string
	Value string
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %v", e.Param, e.Value, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

func paramErr(param string, value interface{}, err error) error {
	return &ParameterError{Param: param, Value: fmt.Sprint(value), Err: err}
}
