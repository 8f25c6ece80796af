package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a unit price typed by a user. Both "7,99" and "7.99" are
// accepted. The result must be a finite, non-negative number.
func ParsePrice(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "value is empty"}
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "not a number: " + strconv.Quote(text)}
	}
	if price.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return price, nil
}

// ParseQuantity parses a base-10 stock quantity. The result must be >= 0.
func ParseQuantity(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, &ValidationError{Field: "quantity", Reason: "value is empty"}
	}

	qty, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Reason: "not an integer: " + strconv.Quote(text)}
	}
	if err := checkQuantity(qty); err != nil {
		return 0, err
	}
	return qty, nil
}

func checkQuantity(qty int) error {
	if qty < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}

// IsAffirmative reports whether answer is one of the accepted "yes" tokens.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

// IsNegative reports whether answer is one of the accepted "no" tokens.
func IsNegative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "nao", "não", "no":
		return true
	default:
		return false
	}
}
