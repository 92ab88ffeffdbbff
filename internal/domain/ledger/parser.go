package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

// Bank notification texts are free-form and differ per bank, but every
// credit alert observed in production carries an "Rs." amount and most
// carry a "Ref:" transaction reference. Parsing is best-effort: a miss
// yields the zero value, never an error, because ingestion must accept
// whatever the SMS gateway forwards.
var (
	amountPattern    = regexp.MustCompile(`(?i)Rs\.?\s*([\d,]+(?:\.\d{2})?)`)
	referencePattern = regexp.MustCompile(`(?i)Ref:?\s*(\d+)`)
)

// ParseAmountCents extracts the first rupee amount from a bank message and
// returns it in cents. "Rs. 5,000.00" yields 500000, "Rs.250" yields 25000.
// Returns 0 when no amount pattern is present or the digits do not parse.
func ParseAmountCents(raw string) int64 {
	m := amountPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}

	figure := strings.ReplaceAll(m[1], ",", "")

	whole := figure
	fraction := ""
	if i := strings.IndexByte(figure, '.'); i >= 0 {
		whole = figure[:i]
		fraction = figure[i+1:]
	}

	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}

	cents := rupees * 100
	if fraction != "" {
		// The pattern guarantees exactly two fraction digits when present.
		f, err := strconv.ParseInt(fraction, 10, 64)
		if err != nil {
			return 0
		}
		cents += f
	}

	return cents
}

// ParseReference extracts the transaction reference number from a bank
// message, or nil when no "Ref" token is present.
func ParseReference(raw string) *string {
	m := referencePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	ref := m[1]
	return &ref
}
