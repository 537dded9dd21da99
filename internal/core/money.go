// Package core holds the pure domain model of the institute ledger:
// entities, money arithmetic, and the derived invoice fields.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between paise and rupee representations.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Rupees constructs a Money value from a whole rupee amount.
func Rupees(r int64) Money {
	return Money{Paise: r * 100}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// Sub returns m - other. The result may be negative; callers that care
// (e.g. overpaid invoice balances) check the sign themselves.
func (m Money) Sub(other Money) Money {
	return Money{Paise: m.Paise - other.Paise}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Paise == 0
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// String formats the amount as an INR display string, e.g. "₹15,000.00".
func (m Money) String() string {
	neg := m.Paise < 0
	p := m.Paise
	if neg {
		p = -p
	}
	rupees := p / 100
	rem := p % 100
	s := groupIndian(strconv.FormatInt(rupees, 10)) + fmt.Sprintf(".%02d", rem)
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// groupIndian inserts Indian-style digit grouping: the last three
// digits form one group, every two digits before that another
// (12,34,567).
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// ParseDecimalToPaise converts a decimal string to paise with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive paise.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//   ParseDecimalToPaise("12.34") -> 1234, nil
//   ParseDecimalToPaise("12,34") -> 1234, nil
//   ParseDecimalToPaise("12.345") -> 1234, nil (rounds down)
//   ParseDecimalToPaise("12.346") -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPaise int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracPaise++
				}
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}
