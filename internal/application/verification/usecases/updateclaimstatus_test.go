package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-lk/edupay/internal/application/verification/services"
	"github.com/edupay-lk/edupay/internal/application/verification/testutil"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

func newStatusFixture(t *testing.T) (*testutil.MockClaimRepository, *UpdateClaimStatusUseCase, *claim.Claim) {
	t.Helper()
	log := logger.NewLogger()
	claims := testutil.NewMockClaimRepository()
	ledgerRep := testutil.NewMockLedgerRepository()
	committer := services.NewCommitter(claims, ledgerRep, nil, log)

	c, err := claim.NewClaim("user-1", "student@example.com", "", "A/L Chemistry", 200000, "slips/y.jpg")
	require.NoError(t, err)
	require.NoError(t, claims.Create(context.Background(), c))

	return claims, NewUpdateClaimStatusUseCase(claims, committer, log), c
}

func TestUpdateClaimStatus_ManualApprove(t *testing.T) {
	_, uc, c := newStatusFixture(t)

	res, err := uc.Execute(context.Background(), UpdateClaimStatusCommand{
		ClaimSID:  c.SID(),
		NewStatus: "approved",
		AdminID:   "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "approved", res.Status)
	assert.Nil(t, res.MatchedLedgerID)
}

func TestUpdateClaimStatus_ManualReject(t *testing.T) {
	_, uc, c := newStatusFixture(t)

	res, err := uc.Execute(context.Background(), UpdateClaimStatusCommand{
		ClaimSID:  c.SID(),
		NewStatus: "rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Status)
}

func TestUpdateClaimStatus_InvalidTargets(t *testing.T) {
	_, uc, c := newStatusFixture(t)

	_, err := uc.Execute(context.Background(), UpdateClaimStatusCommand{ClaimSID: c.SID(), NewStatus: "refunded"})
	assert.True(t, errors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), UpdateClaimStatusCommand{ClaimSID: c.SID(), NewStatus: "pending"})
	assert.True(t, errors.IsValidationError(err))
}

func TestUpdateClaimStatus_DecidedClaimConflicts(t *testing.T) {
	_, uc, c := newStatusFixture(t)
	require.NoError(t, c.Reject())

	_, err := uc.Execute(context.Background(), UpdateClaimStatusCommand{ClaimSID: c.SID(), NewStatus: "approved"})
	assert.True(t, errors.IsConflictError(err))
}

func TestUpdateClaimStatus_UnknownClaim(t *testing.T) {
	_, uc, _ := newStatusFixture(t)

	_, err := uc.Execute(context.Background(), UpdateClaimStatusCommand{ClaimSID: "clm_missing", NewStatus: "approved"})
	assert.True(t, errors.IsNotFoundError(err))
}
