package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-lk/edupay/internal/application/verification/testutil"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

func TestSubmitClaim_ReturnsPendingAndEnqueues(t *testing.T) {
	claims := testutil.NewMockClaimRepository()
	enq := &testutil.MockEnqueuer{}
	uc := NewSubmitClaimUseCase(claims, enq, logger.NewLogger())

	res, err := uc.Execute(context.Background(), SubmitClaimCommand{
		SubmitterID:     "user-1",
		SubmitterEmail:  "student@example.com",
		ContactNumber:   "+94771234567",
		PackageName:     "O/L Science Revision",
		AmountCents:     150000,
		ReceiptImageRef: "slips/abc.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", res.Claim.Status)
	assert.Contains(t, res.Claim.ID, "clm_")
	assert.Equal(t, []string{res.Claim.ID}, enq.IDs)
}

func TestSubmitClaim_ValidationFailure(t *testing.T) {
	claims := testutil.NewMockClaimRepository()
	enq := &testutil.MockEnqueuer{}
	uc := NewSubmitClaimUseCase(claims, enq, logger.NewLogger())

	_, err := uc.Execute(context.Background(), SubmitClaimCommand{
		SubmitterID:     "user-1",
		SubmitterEmail:  "student@example.com",
		PackageName:     "O/L Science Revision",
		AmountCents:     0,
		ReceiptImageRef: "slips/abc.jpg",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, enq.IDs)
}

func TestSubmitClaim_PersistenceFailureSurfaces(t *testing.T) {
	claims := testutil.NewMockClaimRepository()
	claims.CreateError = assert.AnError
	enq := &testutil.MockEnqueuer{}
	uc := NewSubmitClaimUseCase(claims, enq, logger.NewLogger())

	_, err := uc.Execute(context.Background(), SubmitClaimCommand{
		SubmitterID:     "user-1",
		SubmitterEmail:  "student@example.com",
		PackageName:     "O/L Science Revision",
		AmountCents:     150000,
		ReceiptImageRef: "slips/abc.jpg",
	})
	require.Error(t, err)
	assert.Empty(t, enq.IDs)
}

func TestSubmitClaim_QueueFullStillSucceeds(t *testing.T) {
	claims := testutil.NewMockClaimRepository()
	enq := &testutil.MockEnqueuer{Full: true}
	uc := NewSubmitClaimUseCase(claims, enq, logger.NewLogger())

	res, err := uc.Execute(context.Background(), SubmitClaimCommand{
		SubmitterID:     "user-1",
		SubmitterEmail:  "student@example.com",
		PackageName:     "O/L Science Revision",
		AmountCents:     150000,
		ReceiptImageRef: "slips/abc.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Claim.Status)
}
