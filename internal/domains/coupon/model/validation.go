package model

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

var couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func decimalNonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal value")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func optionalDecimalNonNegative(value interface{}) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	return decimalNonNegative(*d)
}

func optionalDecimalPositive(value interface{}) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func optionalIntPositive(value interface{}) error {
	n, ok := value.(*int)
	if !ok || n == nil {
		return nil
	}
	if *n <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}
