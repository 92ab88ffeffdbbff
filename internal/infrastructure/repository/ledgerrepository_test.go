package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupay-lk/edupay/internal/domain/ledger"
	"github.com/edupay-lk/edupay/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// In-memory sqlite is per-connection; keep a single pooled connection
	// so every query and goroutine sees the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.LedgerRecordModel{}, &models.ClaimModel{})
	require.NoError(t, err)

	return db
}

func createTestRecord(t *testing.T, message string, observedAt time.Time) *ledger.Record {
	rec, err := ledger.NewRecord("hnb-sms", message, observedAt)
	require.NoError(t, err)
	return rec
}

func TestLedgerRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	rec := createTestRecord(t, "Credit Rs. 5,000.00 Ref: 991122 to account", time.Now().UTC())
	err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotZero(t, rec.DBID())

	found, err := repo.GetBySID(ctx, rec.SID())
	require.NoError(t, err)
	assert.Equal(t, rec.SID(), found.SID())
	assert.Equal(t, int64(500000), found.AmountCents())
	require.NotNil(t, found.Reference())
	assert.Equal(t, "991122", *found.Reference())
	assert.False(t, found.Consumed())
}

func TestLedgerRepository_FindCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	since := now.Add(-24 * time.Hour)

	t.Run("window start is inclusive", func(t *testing.T) {
		atBoundary := createTestRecord(t, "Credit Rs. 100.00 at boundary", since)
		require.NoError(t, repo.Create(ctx, atBoundary))

		justBefore := createTestRecord(t, "Credit Rs. 100.00 stale", since.Add(-time.Second))
		require.NoError(t, repo.Create(ctx, justBefore))

		candidates, err := repo.FindCandidates(ctx, 10000, since)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, atBoundary.SID(), candidates[0].SID())
	})

	t.Run("only exact amounts qualify", func(t *testing.T) {
		rec := createTestRecord(t, "Credit Rs. 250.00 exact", now)
		require.NoError(t, repo.Create(ctx, rec))

		near := createTestRecord(t, "Credit Rs. 250.50 near miss", now)
		require.NoError(t, repo.Create(ctx, near))

		candidates, err := repo.FindCandidates(ctx, 25000, since)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, rec.SID(), candidates[0].SID())
	})

	t.Run("consumed records are excluded", func(t *testing.T) {
		rec := createTestRecord(t, "Credit Rs. 777.00 spent", now)
		require.NoError(t, repo.Create(ctx, rec))

		won, err := repo.MarkConsumed(ctx, rec.SID())
		require.NoError(t, err)
		require.True(t, won)

		candidates, err := repo.FindCandidates(ctx, 77700, since)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("ordered oldest first", func(t *testing.T) {
		newer := createTestRecord(t, "Credit Rs. 999.00 newer", now)
		require.NoError(t, repo.Create(ctx, newer))

		older := createTestRecord(t, "Credit Rs. 999.00 older", now.Add(-2*time.Hour))
		require.NoError(t, repo.Create(ctx, older))

		candidates, err := repo.FindCandidates(ctx, 99900, since)
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, older.SID(), candidates[0].SID())
		assert.Equal(t, newer.SID(), candidates[1].SID())
	})
}

func TestLedgerRepository_MarkConsumed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	t.Run("second attempt loses", func(t *testing.T) {
		rec := createTestRecord(t, "Credit Rs. 500.00 once", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, rec))

		won, err := repo.MarkConsumed(ctx, rec.SID())
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.MarkConsumed(ctx, rec.SID())
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("unknown record is not an error", func(t *testing.T) {
		won, err := repo.MarkConsumed(ctx, "led_missing")
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("exactly one concurrent winner", func(t *testing.T) {
		rec := createTestRecord(t, "Credit Rs. 1,500.00 contested", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, rec))

		const contenders = 8
		var wg sync.WaitGroup
		wins := make(chan bool, contenders)
		for i := 0; i < contenders; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				won, err := repo.MarkConsumed(ctx, rec.SID())
				if err == nil && won {
					wins <- true
				}
			}()
		}
		wg.Wait()
		close(wins)

		assert.Len(t, wins, 1)
	})
}

func TestLedgerRepository_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		rec := createTestRecord(t, "Credit Rs. 10.00 feed", now.Add(-time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, rec))
	}

	records, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].ObservedAt().After(records[1].ObservedAt()))
	assert.True(t, records[1].ObservedAt().After(records[2].ObservedAt()))
}
