package valueobjects

import "fmt"

// ClaimStatus represents the lifecycle state of a payment claim.
// Transitions are forward-only: pending is initial, approved and
// rejected are terminal.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

func NewClaimStatus(s string) (ClaimStatus, error) {
	switch ClaimStatus(s) {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected:
		return ClaimStatus(s), nil
	default:
		return "", fmt.Errorf("invalid claim status: %s", s)
	}
}

func (s ClaimStatus) String() string {
	return string(s)
}

// IsFinal reports whether the status is terminal.
func (s ClaimStatus) IsFinal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// CanTransitionTo reports whether the forward-only state machine allows
// moving from s to target.
func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	if s.IsFinal() {
		return false
	}
	return target == ClaimStatusApproved || target == ClaimStatusRejected
}
