// Package testutil provides mock implementations for testing the
// verification application layer.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/edupay-lk/edupay/internal/application/verification/extractor"
	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/domain/ledger"
)

// MockClaimRepository is an in-memory claim.Repository for tests.
type MockClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*claim.Claim
	nextID uint

	CreateError error
	UpdateError error
	GetError    error
	ListError   error
}

func NewMockClaimRepository() *MockClaimRepository {
	return &MockClaimRepository{claims: make(map[string]*claim.Claim)}
}

func (m *MockClaimRepository) Create(ctx context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.nextID++
	c.SetDBID(m.nextID)
	m.claims[c.SID()] = c
	return nil
}

func (m *MockClaimRepository) Update(ctx context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.claims[c.SID()]; !ok {
		return fmt.Errorf("claim not found: %s", c.SID())
	}
	m.claims[c.SID()] = c
	return nil
}

func (m *MockClaimRepository) GetBySID(ctx context.Context, sid string) (*claim.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	c, ok := m.claims[sid]
	if !ok {
		return nil, fmt.Errorf("claim not found: %s", sid)
	}
	return c, nil
}

func (m *MockClaimRepository) ListBySubmitter(ctx context.Context, submitterID string) ([]*claim.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*claim.Claim
	for _, c := range m.claims {
		if c.SubmitterID() == submitterID {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MockClaimRepository) ListAll(ctx context.Context) ([]*claim.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]*claim.Claim, 0, len(m.claims))
	for _, c := range m.claims {
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MockClaimRepository) ListPendingForSweep(ctx context.Context, createdBefore time.Time, maxAttempts int) ([]*claim.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*claim.Claim
	for _, c := range m.claims {
		if !c.Status().IsFinal() && c.CreatedAt().Before(createdBefore) && c.VerifyAttempts() < maxAttempts {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(claims []*claim.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt().After(claims[j].CreatedAt())
	})
}

// MockLedgerRepository is an in-memory ledger.Repository. MarkConsumed is
// guarded by the repository mutex so concurrent commit races behave like
// the conditional update in the real store.
type MockLedgerRepository struct {
	mu      sync.Mutex
	records []*ledger.Record
	nextID  uint

	CreateError   error
	FindError     error
	ConsumeError  error
	ConsumedCalls int
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Create(ctx context.Context, r *ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.nextID++
	r.SetDBID(m.nextID)
	m.records = append(m.records, r)
	return nil
}

func (m *MockLedgerRepository) GetBySID(ctx context.Context, sid string) (*ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.SID() == sid {
			return r, nil
		}
	}
	return nil, fmt.Errorf("ledger record not found: %s", sid)
}

func (m *MockLedgerRepository) FindCandidates(ctx context.Context, amountCents int64, since time.Time) ([]*ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindError != nil {
		return nil, m.FindError
	}
	var out []*ledger.Record
	for _, r := range m.records {
		if !r.Consumed() && r.AmountCents() == amountCents && !r.ObservedAt().Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObservedAt().Equal(out[j].ObservedAt()) {
			return out[i].DBID() < out[j].DBID()
		}
		return out[i].ObservedAt().Before(out[j].ObservedAt())
	})
	return out, nil
}

func (m *MockLedgerRepository) MarkConsumed(ctx context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConsumedCalls++
	if m.ConsumeError != nil {
		return false, m.ConsumeError
	}
	for _, r := range m.records {
		if r.SID() == sid {
			if r.Consumed() {
				return false, nil
			}
			r.Consume()
			return true, nil
		}
	}
	return false, fmt.Errorf("ledger record not found: %s", sid)
}

func (m *MockLedgerRepository) ListRecent(ctx context.Context, limit int) ([]*ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ledger.Record, 0, len(m.records))
	out = append(out, m.records...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ObservedAt().After(out[j].ObservedAt())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeExtractor returns a canned result, or the fail-safe illegible result
// when Err is set.
type FakeExtractor struct {
	Result *extractor.SlipData
	Err    error
	Calls  int
}

func (f *FakeExtractor) Extract(ctx context.Context, imageRef string) (*extractor.SlipData, error) {
	f.Calls++
	if f.Err != nil {
		return extractor.Illegible(), f.Err
	}
	if f.Result == nil {
		return extractor.Illegible(), nil
	}
	return f.Result, nil
}

// MockEnqueuer records enqueued claim IDs.
type MockEnqueuer struct {
	mu   sync.Mutex
	IDs  []string
	Full bool
}

func (m *MockEnqueuer) Enqueue(claimSID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Full {
		return false
	}
	m.IDs = append(m.IDs, claimSID)
	return true
}

// MockDedup remembers keys it has seen.
type MockDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

func NewMockDedup() *MockDedup {
	return &MockDedup{seen: make(map[string]bool)}
}

func (m *MockDedup) SeenRecently(ctx context.Context, key string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if m.seen[key] {
		return true, nil
	}
	m.seen[key] = true
	return false, nil
}

// MockNotifier records notification calls.
type MockNotifier struct {
	mu          sync.Mutex
	Approved    []string
	NeedsReview []string
}

func (m *MockNotifier) ClaimAutoApproved(ctx context.Context, c *claim.Claim, ledgerSID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Approved = append(m.Approved, c.SID())
	return nil
}

func (m *MockNotifier) ClaimNeedsReview(ctx context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NeedsReview = append(m.NeedsReview, c.SID())
	return nil
}
