package model

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadPrice is returned for input that is not a non-negative decimal.
// Bad input is rejected outright, never coerced to 0.
var ErrBadPrice = errors.New("price must be a non-negative number")

// ParsePrice parses operator-entered price text.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrBadPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, ErrBadPrice
	}
	return v, nil
}

// FormatPrice renders a price as the decimal string the API expects in
// multipart fields.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
