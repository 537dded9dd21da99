package http

import (
	"strings"

	"khata/internal/core"
)

// parseAmount converts a decimal rupee string into Money. Negative and
// zero amounts are rejected here; the ledger itself stays permissive.
func parseAmount(s string) (core.Money, error) {
	paise, err := core.ParseDecimalToPaise(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paise: paise}, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
