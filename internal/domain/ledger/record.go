package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/id"
)

// Record is a bank-originated notification of funds received, kept as
// independent evidence for claim verification. Records are append-only;
// the only mutation is the monotonic consumed flag, set when a claim
// successfully matches against the record.
type Record struct {
	dbID        uint
	sid         string
	sourceLabel string
	rawMessage  string
	amountCents int64
	reference   *string
	observedAt  time.Time
	consumed    bool
	createdAt   time.Time
}

// NewRecord builds a ledger record from a forwarded bank SMS. The amount
// and reference are parsed from the raw text; parse misses are stored as
// zero/nil rather than rejected, so malformed messages still land in the
// ledger for operators to inspect.
func NewRecord(sourceLabel, rawMessage string, observedAt time.Time) (*Record, error) {
	if strings.TrimSpace(rawMessage) == "" {
		return nil, fmt.Errorf("raw message is required")
	}
	if observedAt.IsZero() {
		observedAt = biztime.NowUTC()
	}

	return &Record{
		sid:         id.MustGenerateWithPrefix(id.PrefixLedger, id.DefaultLength),
		sourceLabel: sourceLabel,
		rawMessage:  rawMessage,
		amountCents: ParseAmountCents(rawMessage),
		reference:   ParseReference(rawMessage),
		observedAt:  observedAt.UTC(),
		createdAt:   biztime.NowUTC(),
	}, nil
}

// Consume marks the record as claimed. The transition is monotonic:
// consuming an already consumed record is a no-op.
func (r *Record) Consume() {
	r.consumed = true
}

func (r *Record) DBID() uint            { return r.dbID }
func (r *Record) SID() string           { return r.sid }
func (r *Record) SourceLabel() string   { return r.sourceLabel }
func (r *Record) RawMessage() string    { return r.rawMessage }
func (r *Record) AmountCents() int64    { return r.amountCents }
func (r *Record) Reference() *string    { return r.reference }
func (r *Record) ObservedAt() time.Time { return r.observedAt }
func (r *Record) Consumed() bool        { return r.consumed }
func (r *Record) CreatedAt() time.Time  { return r.createdAt }

// SetDBID sets the database ID after persistence (used by repository after Create)
func (r *Record) SetDBID(dbID uint) {
	r.dbID = dbID
}

// RecordReconstructParams carries persisted state back into a Record.
type RecordReconstructParams struct {
	DBID        uint
	SID         string
	SourceLabel string
	RawMessage  string
	AmountCents int64
	Reference   *string
	ObservedAt  time.Time
	Consumed    bool
	CreatedAt   time.Time
}

// ReconstructRecord creates a Record instance from persistence.
func ReconstructRecord(p RecordReconstructParams) *Record {
	return &Record{
		dbID:        p.DBID,
		sid:         p.SID,
		sourceLabel: p.SourceLabel,
		rawMessage:  p.RawMessage,
		amountCents: p.AmountCents,
		reference:   p.Reference,
		observedAt:  p.ObservedAt,
		consumed:    p.Consumed,
		createdAt:   p.CreatedAt,
	}
}
