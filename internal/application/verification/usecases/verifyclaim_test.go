package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupay-lk/edupay/internal/application/verification/extractor"
	"github.com/edupay-lk/edupay/internal/application/verification/services"
	"github.com/edupay-lk/edupay/internal/application/verification/testutil"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
	apperrors "github.com/edupay-lk/edupay/internal/shared/errors"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// --- helpers ---

type engineFixture struct {
	claims    *testutil.MockClaimRepository
	ledger    *testutil.MockLedgerRepository
	extractor *testutil.FakeExtractor
	notifier  *testutil.MockNotifier
	uc        *VerifyClaimUseCase
}

func newEngineFixture(t *testing.T, slip *extractor.SlipData, cfg VerifyClaimConfig) *engineFixture {
	t.Helper()
	log := logger.NewLogger()

	claims := testutil.NewMockClaimRepository()
	ledgerRep := testutil.NewMockLedgerRepository()
	fake := &testutil.FakeExtractor{Result: slip}
	notifier := &testutil.MockNotifier{}
	committer := services.NewCommitter(claims, ledgerRep, nil, log)

	return &engineFixture{
		claims:    claims,
		ledger:    ledgerRep,
		extractor: fake,
		notifier:  notifier,
		uc:        NewVerifyClaimUseCase(claims, ledgerRep, fake, committer, notifier, cfg, log),
	}
}

func newPendingClaim(t *testing.T, f *engineFixture, amountCents int64) *claim.Claim {
	t.Helper()
	c, err := claim.NewClaim("user-1", "student@example.com", "+94771234567", "A/L Combined Maths", amountCents, "slips/x.jpg")
	require.NoError(t, err)
	require.NoError(t, f.claims.Create(context.Background(), c))
	return c
}

func newLedgerRecord(t *testing.T, f *engineFixture, raw string, observedAt time.Time) *ledger.Record {
	t.Helper()
	r, err := ledger.NewRecord("COMBANK", raw, observedAt)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Create(context.Background(), r))
	return r
}

func legibleSlip(amountCents int64, ref string) *extractor.SlipData {
	s := &extractor.SlipData{Legible: true}
	if amountCents > 0 {
		s.AmountCents = &amountCents
	}
	if ref != "" {
		s.Reference = &ref
	}
	return s
}

// =============================================================================
// Scoring threshold
// =============================================================================

func TestVerifyClaim_AmountOnlyNeverApproves(t *testing.T) {
	// Candidate observed 3h ago: amount match only, score 1.0.
	f := newEngineFixture(t, legibleSlip(150000, ""), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited to A/C", time.Now().UTC().Add(-3*time.Hour))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusPending, c.Status())
	assert.Zero(t, f.ledger.ConsumedCalls)
}

func TestVerifyClaim_TimeProximityAloneNeverApproves(t *testing.T) {
	// Amount + proximity is 1.5, below the 2.0 threshold.
	f := newEngineFixture(t, legibleSlip(150000, ""), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited to A/C", time.Now().UTC().Add(-10*time.Minute))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusPending, c.Status())
}

func TestVerifyClaim_AmountPlusReferenceApproves(t *testing.T) {
	// Observed outside the proximity window so the score is exactly 2.0.
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	rec := newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC().Add(-3*time.Hour))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusApproved, c.Status())
	require.NotNil(t, c.MatchedLedgerID())
	assert.Equal(t, rec.SID(), *c.MatchedLedgerID())
	assert.True(t, rec.Consumed())
	assert.Equal(t, []string{c.SID()}, f.notifier.Approved)
}

func TestVerifyClaim_AllSignalsApprove(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusApproved, c.Status())
}

// =============================================================================
// Amount selection
// =============================================================================

func TestVerifyClaim_FallsBackToClaimedAmount(t *testing.T) {
	// Slip legible but the figure itself was unreadable.
	f := newEngineFixture(t, legibleSlip(0, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 25000)
	newLedgerRecord(t, f, "Rs.250 received Ref: 998877", time.Now().UTC().Add(-3*time.Hour))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusApproved, c.Status())
}

func TestVerifyClaim_ExtractedAmountWinsOverClaimed(t *testing.T) {
	// User claimed 1500 but slip reads 2500: the ledger is searched for 2500.
	f := newEngineFixture(t, legibleSlip(250000, "112233"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 2,500.00 credited. Ref: 112233", time.Now().UTC().Add(-3*time.Hour))
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 112233", time.Now().UTC().Add(-3*time.Hour))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	require.NotNil(t, c.MatchedLedgerID())
	matched, err := f.ledger.GetBySID(context.Background(), *c.MatchedLedgerID())
	require.NoError(t, err)
	assert.Equal(t, int64(250000), matched.AmountCents())
}

// =============================================================================
// Fail-safe paths
// =============================================================================

func TestVerifyClaim_IllegibleSlipLeavesClaimPending(t *testing.T) {
	f := newEngineFixture(t, extractor.Illegible(), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusPending, c.Status())
	assert.Zero(t, f.ledger.ConsumedCalls)
}

func TestVerifyClaim_ExtractorErrorTreatedAsIllegible(t *testing.T) {
	f := newEngineFixture(t, nil, VerifyClaimConfig{})
	f.extractor.Err = context.DeadlineExceeded
	c := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusPending, c.Status())
	assert.Zero(t, f.ledger.ConsumedCalls)
}

func TestVerifyClaim_AlreadyDecidedClaimSkipped(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	require.NoError(t, c.Reject())
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusRejected, c.Status())
	assert.Zero(t, f.extractor.Calls)
}

func TestVerifyClaim_ConcurrentDecisionStopsPass(t *testing.T) {
	// The attempt-accounting write conflicts when an admin decided the
	// claim between load and write; the pass must end without spending
	// any ledger evidence.
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)
	rec := newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())
	f.claims.UpdateError = apperrors.NewConflictError("claim already decided")

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.False(t, rec.Consumed())
	assert.Empty(t, f.notifier.Approved)
}

func TestVerifyClaim_NoCandidatesStaysPending(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	assert.Equal(t, vo.ClaimStatusPending, c.Status())
	assert.Equal(t, 1, c.VerifyAttempts())
}

// =============================================================================
// Ordering and races
// =============================================================================

func TestVerifyClaim_FirstQualifyingCandidateWins(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c := newPendingClaim(t, f, 150000)

	older := newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC().Add(-5*time.Hour))
	newer := newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC().Add(-3*time.Hour))

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))

	require.NotNil(t, c.MatchedLedgerID())
	assert.Equal(t, older.SID(), *c.MatchedLedgerID())
	assert.True(t, older.Consumed())
	assert.False(t, newer.Consumed())
}

func TestVerifyClaim_NoDoubleSpendAcrossConcurrentClaims(t *testing.T) {
	// One ledger record of 1500, two claims for the same amount racing.
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c1 := newPendingClaim(t, f, 150000)
	c2 := newPendingClaim(t, f, 150000)
	rec := newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC())

	var wg sync.WaitGroup
	for _, sid := range []string{c1.SID(), c2.SID()} {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			_ = f.uc.Execute(context.Background(), sid)
		}(sid)
	}
	wg.Wait()

	approved := 0
	for _, c := range []*claim.Claim{c1, c2} {
		if c.Status() == vo.ClaimStatusApproved {
			approved++
			require.NotNil(t, c.MatchedLedgerID())
			assert.Equal(t, rec.SID(), *c.MatchedLedgerID())
		}
	}
	assert.Equal(t, 1, approved, "exactly one claim may consume the record")
	assert.True(t, rec.Consumed())
}

func TestVerifyClaim_RaceLoserFallsThroughToNextCandidate(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, "998877"), VerifyClaimConfig{})
	c1 := newPendingClaim(t, f, 150000)
	c2 := newPendingClaim(t, f, 150000)
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC().Add(-2*time.Hour))
	newLedgerRecord(t, f, "Rs. 1,500.00 credited. Ref: 998877", time.Now().UTC().Add(-1*time.Hour))

	var wg sync.WaitGroup
	for _, sid := range []string{c1.SID(), c2.SID()} {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			_ = f.uc.Execute(context.Background(), sid)
		}(sid)
	}
	wg.Wait()

	// Two records, two claims: both approve, on distinct records.
	require.Equal(t, vo.ClaimStatusApproved, c1.Status())
	require.Equal(t, vo.ClaimStatusApproved, c2.Status())
	require.NotNil(t, c1.MatchedLedgerID())
	require.NotNil(t, c2.MatchedLedgerID())
	assert.NotEqual(t, *c1.MatchedLedgerID(), *c2.MatchedLedgerID())
}

// =============================================================================
// Operator notification
// =============================================================================

func TestVerifyClaim_NeedsReviewFiresOnFinalAttempt(t *testing.T) {
	f := newEngineFixture(t, legibleSlip(150000, ""), VerifyClaimConfig{MaxAttempts: 2})
	c := newPendingClaim(t, f, 150000)

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))
	assert.Empty(t, f.notifier.NeedsReview)

	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))
	assert.Equal(t, []string{c.SID()}, f.notifier.NeedsReview)

	// A further run (manual re-offer) does not repeat the notification.
	require.NoError(t, f.uc.Execute(context.Background(), c.SID()))
	assert.Equal(t, []string{c.SID()}, f.notifier.NeedsReview)
}
