package claim

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/edupay-lk/edupay/internal/domain/claim/valueobjects"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/id"
)

// Claim is a user's submitted proof of payment awaiting verification.
// It is created in pending state and moves exactly once to approved or
// rejected, either by the matching engine or by an administrator. Claims
// are never deleted.
type Claim struct {
	dbID            uint
	sid             string
	submitterID     string
	submitterEmail  string
	contactNumber   string
	packageName     string
	claimedAmount   int64 // cents
	receiptImageRef string
	status          vo.ClaimStatus
	matchedLedgerID *string
	verifyAttempts  int
	createdAt       time.Time
	updatedAt       time.Time
}

func NewClaim(submitterID, submitterEmail, contactNumber, packageName string, claimedAmountCents int64, receiptImageRef string) (*Claim, error) {
	if strings.TrimSpace(submitterID) == "" {
		return nil, fmt.Errorf("submitter ID is required")
	}
	if strings.TrimSpace(submitterEmail) == "" {
		return nil, fmt.Errorf("submitter email is required")
	}
	if strings.TrimSpace(packageName) == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if claimedAmountCents <= 0 {
		return nil, fmt.Errorf("claimed amount must be positive")
	}
	if strings.TrimSpace(receiptImageRef) == "" {
		return nil, fmt.Errorf("receipt image reference is required")
	}

	now := biztime.NowUTC()

	return &Claim{
		sid:             id.MustGenerateWithPrefix(id.PrefixClaim, id.DefaultLength),
		submitterID:     submitterID,
		submitterEmail:  submitterEmail,
		contactNumber:   contactNumber,
		packageName:     packageName,
		claimedAmount:   claimedAmountCents,
		receiptImageRef: receiptImageRef,
		status:          vo.ClaimStatusPending,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Approve transitions the claim to approved, recording the ledger record
// that served as evidence. Approving an already approved claim with the
// same ledger record is a no-op so commit retries stay idempotent.
func (c *Claim) Approve(matchedLedgerID string) error {
	if c.status == vo.ClaimStatusApproved {
		if c.matchedLedgerID != nil && *c.matchedLedgerID == matchedLedgerID {
			return nil
		}
		return fmt.Errorf("claim already approved with a different ledger record")
	}
	if !c.status.CanTransitionTo(vo.ClaimStatusApproved) {
		return fmt.Errorf("cannot approve claim with status %s", c.status)
	}

	c.status = vo.ClaimStatusApproved
	if matchedLedgerID != "" {
		c.matchedLedgerID = &matchedLedgerID
	}
	c.updatedAt = biztime.NowUTC()
	return nil
}

// ApproveManually transitions the claim to approved without ledger evidence.
// Used by administrators for claims the engine left pending.
func (c *Claim) ApproveManually() error {
	if c.status == vo.ClaimStatusApproved {
		return nil
	}
	if !c.status.CanTransitionTo(vo.ClaimStatusApproved) {
		return fmt.Errorf("cannot approve claim with status %s", c.status)
	}
	c.status = vo.ClaimStatusApproved
	c.updatedAt = biztime.NowUTC()
	return nil
}

// Reject transitions the claim to rejected.
func (c *Claim) Reject() error {
	if c.status == vo.ClaimStatusRejected {
		return nil
	}
	if !c.status.CanTransitionTo(vo.ClaimStatusRejected) {
		return fmt.Errorf("cannot reject claim with status %s", c.status)
	}
	c.status = vo.ClaimStatusRejected
	c.updatedAt = biztime.NowUTC()
	return nil
}

// RecordVerifyAttempt increments the background verification attempt counter.
func (c *Claim) RecordVerifyAttempt() {
	c.verifyAttempts++
	c.updatedAt = biztime.NowUTC()
}

func (c *Claim) DBID() uint               { return c.dbID }
func (c *Claim) SID() string              { return c.sid }
func (c *Claim) SubmitterID() string      { return c.submitterID }
func (c *Claim) SubmitterEmail() string   { return c.submitterEmail }
func (c *Claim) ContactNumber() string    { return c.contactNumber }
func (c *Claim) PackageName() string      { return c.packageName }
func (c *Claim) ClaimedAmount() int64     { return c.claimedAmount }
func (c *Claim) ReceiptImageRef() string  { return c.receiptImageRef }
func (c *Claim) Status() vo.ClaimStatus   { return c.status }
func (c *Claim) MatchedLedgerID() *string { return c.matchedLedgerID }
func (c *Claim) VerifyAttempts() int      { return c.verifyAttempts }
func (c *Claim) CreatedAt() time.Time     { return c.createdAt }
func (c *Claim) UpdatedAt() time.Time     { return c.updatedAt }

// SetDBID sets the database ID after persistence (used by repository after Create)
func (c *Claim) SetDBID(dbID uint) {
	c.dbID = dbID
}

// ClaimReconstructParams carries persisted state back into a Claim.
type ClaimReconstructParams struct {
	DBID            uint
	SID             string
	SubmitterID     string
	SubmitterEmail  string
	ContactNumber   string
	PackageName     string
	ClaimedAmount   int64
	ReceiptImageRef string
	Status          vo.ClaimStatus
	MatchedLedgerID *string
	VerifyAttempts  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructClaim creates a Claim instance from persistence.
func ReconstructClaim(p ClaimReconstructParams) *Claim {
	return &Claim{
		dbID:            p.DBID,
		sid:             p.SID,
		submitterID:     p.SubmitterID,
		submitterEmail:  p.SubmitterEmail,
		contactNumber:   p.ContactNumber,
		packageName:     p.PackageName,
		claimedAmount:   p.ClaimedAmount,
		receiptImageRef: p.ReceiptImageRef,
		status:          p.Status,
		matchedLedgerID: p.MatchedLedgerID,
		verifyAttempts:  p.VerifyAttempts,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}
