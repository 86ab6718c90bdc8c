package services

import (
	"fmt"
	"strings"
)

// FormatMoney formats an amount with the currency's symbol and digit
// grouping. INR uses the Indian numbering system (after the rightmost 3
// digits, groups of 2, e.g. ₹1,23,45,678.90); every other currency groups
// in threes. The result always carries exactly 2 decimal places.
func FormatMoney(amount float64, currency string) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	var formatted string
	if currency == "INR" {
		formatted = applyIndianGrouping(intPart)
	} else {
		formatted = applyWesternGrouping(intPart)
	}

	result := CurrencySymbol(currency) + formatted + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// CurrencySymbol returns the display symbol for a supported currency code.
// Unknown codes fall back to the code itself followed by a space.
func CurrencySymbol(currency string) string {
	for _, opt := range CurrencyOptions {
		if opt.Code == currency {
			return opt.Symbol
		}
	}
	return currency + " "
}

// applyIndianGrouping inserts commas using the Indian numbering system:
// the rightmost 3 digits form the first group, then every 2 digits.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}

// applyWesternGrouping inserts commas every 3 digits from the right.
func applyWesternGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "," + result
}
