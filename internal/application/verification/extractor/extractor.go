// Package extractor defines the outbound contract for turning a receipt
// image into structured slip data. The concrete implementation lives in
// infrastructure; the matching engine only sees this interface so it can
// be tested with fixtures.
package extractor

import (
	"context"
	"time"
)

// SlipData is the structured result of reading a payment slip image.
// Every field except Legible is optional: the vision model returns only
// what it could read.
type SlipData struct {
	AmountCents *int64
	Reference   *string
	ObservedAt  *time.Time
	BankName    *string
	Legible     bool
}

// Illegible returns the fail-safe result used whenever extraction cannot
// produce trustworthy data. An illegible slip leaves the claim pending
// for manual review instead of guessing.
func Illegible() *SlipData {
	return &SlipData{Legible: false}
}

// SlipExtractor reads a payment slip image and extracts structured data.
// Implementations must be fail-safe: any transport, timeout or parse
// problem is reported as an illegible result, with the error carried
// alongside for logging only.
type SlipExtractor interface {
	Extract(ctx context.Context, imageRef string) (*SlipData, error)
}
