package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-lk/edupay/internal/application/verification/testutil"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

func TestRecordBankMessage_ParsesAndStores(t *testing.T) {
	ledgerRep := testutil.NewMockLedgerRepository()
	uc := NewRecordBankMessageUseCase(ledgerRep, nil, 0, logger.NewLogger())

	observed := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	res, err := uc.Execute(context.Background(), RecordBankMessageCommand{
		SourceLabel: "COMBANK",
		Message:     "Rs. 5,000.00 credited to A/C 1234. Ref: 998877",
		ObservedAt:  observed,
	})
	require.NoError(t, err)

	assert.False(t, res.Duplicate)
	assert.Equal(t, int64(500000), res.Record.AmountCents)
	require.NotNil(t, res.Record.Reference)
	assert.Equal(t, "998877", *res.Record.Reference)
	assert.Equal(t, observed, res.Record.ObservedAt)
}

func TestRecordBankMessage_MalformedTextStillStored(t *testing.T) {
	ledgerRep := testutil.NewMockLedgerRepository()
	uc := NewRecordBankMessageUseCase(ledgerRep, nil, 0, logger.NewLogger())

	res, err := uc.Execute(context.Background(), RecordBankMessageCommand{
		SourceLabel: "UNKNOWN",
		Message:     "your parcel is out for delivery",
		ObservedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Zero(t, res.Record.AmountCents)
	assert.Nil(t, res.Record.Reference)
}

func TestRecordBankMessage_DuplicateDropped(t *testing.T) {
	ledgerRep := testutil.NewMockLedgerRepository()
	uc := NewRecordBankMessageUseCase(ledgerRep, testutil.NewMockDedup(), time.Hour, logger.NewLogger())

	cmd := RecordBankMessageCommand{
		SourceLabel: "COMBANK",
		Message:     "Rs.250 received Ref: 445566",
		ObservedAt:  time.Now().UTC(),
	}

	first, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	records, err := ledgerRep.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecordBankMessage_DedupOutageDoesNotBlockIngestion(t *testing.T) {
	ledgerRep := testutil.NewMockLedgerRepository()
	dedup := testutil.NewMockDedup()
	dedup.Err = assert.AnError
	uc := NewRecordBankMessageUseCase(ledgerRep, dedup, time.Hour, logger.NewLogger())

	res, err := uc.Execute(context.Background(), RecordBankMessageCommand{
		SourceLabel: "COMBANK",
		Message:     "Rs.250 received",
		ObservedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
}
