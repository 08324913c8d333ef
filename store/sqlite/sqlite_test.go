package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/fee-engine/ledger"
	"github.com/brightpath/fee-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleStudent(id string) ledger.Student {
	return ledger.Student{
		ID:           id,
		Name:         "Asha Verma",
		AcademicYear: "24-25",
		Class:        "1",
		StudentType:  "regular",
		Status:       ledger.StatusNew,
		Fees: ledger.FeeProfile{
			Tuition:         ledger.NewTuitionCharge(ledger.NewAmount(2000), ledger.NewAmount(7000)),
			TuitionDiscount: ledger.NewAmount(1000),
			TransportFee:    ledger.NewAmount(3000),
			MessFee:         ledger.NewAmount(2400),
			LastYearBalance: ledger.NewAmount(500),
		},
		Transactions: []ledger.Transaction{
			{
				ReceiptID:    "r-1",
				AcademicYear: "24-25",
				Category:     ledger.CategorySchool,
				Amount:       ledger.NewAmount(4000),
				PaymentMode:  "cash",
				Account:      "main",
				Date:         time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
				Remark:       "term 1",
				Status:       ledger.StatusCompleted,
				Snapshot: ledger.HistoricalSnapshot{
					InitialFee:         ledger.NewAmount(10000),
					ApplicableDiscount: ledger.NewAmount(1000),
					RemainingBefore:    ledger.NewAmount(9000),
					RemainingAfter:     ledger.NewAmount(5000),
				},
				CreatedAt: time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC),
			},
			{
				ReceiptID:    "r-2",
				AcademicYear: "24-25",
				Category:     ledger.CategoryMess,
				Amount:       ledger.NewAmount(1200),
				PaymentMode:  "cheque",
				Account:      "main",
				Date:         time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
				Status:       ledger.StatusPending,
				CreatedAt:    time.Date(2024, time.July, 1, 11, 0, 0, 0, time.UTC),
			},
		},
	}
}

// =============================================================================
// ROUND-TRIP TESTS
// =============================================================================

func TestSQLite_CreateAndGet_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	in := sampleStudent("s-1")
	require.NoError(t, st.Create(ctx, in))

	got, err := st.Get(ctx, "s-1")
	require.NoError(t, err)

	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.AcademicYear, got.AcademicYear)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, int64(1), got.Version)

	assert.True(t, got.Fees.Tuition.Total.Equal(ledger.NewAmount(9000)))
	assert.True(t, got.Fees.LastYearBalance.Equal(ledger.NewAmount(500)))

	require.Len(t, got.Transactions, 2)
	tx := got.Transactions[0]
	assert.Equal(t, "r-1", tx.ReceiptID)
	assert.True(t, tx.Amount.Equal(ledger.NewAmount(4000)))
	assert.Equal(t, "term 1", tx.Remark)
	assert.True(t, tx.Date.Equal(in.Transactions[0].Date))
	assert.True(t, tx.CreatedAt.Equal(in.Transactions[0].CreatedAt))
	assert.True(t, tx.Snapshot.RemainingAfter.Equal(ledger.NewAmount(5000)))
	assert.Equal(t, ledger.StatusPending, got.Transactions[1].Status)

	// The round-tripped snapshot produces the same derived position.
	sum := ledger.Summarize(got, ledger.CategorySchool, "24-25")
	assert.True(t, sum.RemainingBefore.Equal(ledger.NewAmount(5000)))
}

func TestSQLite_GetUnknown(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ledger.ErrStudentNotFound))
}

func TestSQLite_DuplicateCreate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, sampleStudent("s-1")))
	err := st.Create(ctx, sampleStudent("s-1"))
	assert.True(t, errors.Is(err, ledger.ErrStudentExists))
}

func TestSQLite_List(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := sampleStudent("s-1")
	a.Name = "Zoya"
	b := sampleStudent("s-2")
	b.Name = "Asha"
	require.NoError(t, st.Create(ctx, a))
	require.NoError(t, st.Create(ctx, b))

	all, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Asha", all[0].Name)
	assert.Len(t, all[0].Transactions, 2, "List hydrates transaction history")
}

// =============================================================================
// UPDATE / CONCURRENCY TESTS
// =============================================================================

func TestSQLite_Update_ReplacesHistory(t *testing.T) {
	// GIVEN: A stored student with two transactions
	// WHEN: Writing back a snapshot where one was deleted
	// THEN: The stored history shrinks to match

	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, sampleStudent("s-1")))

	got, err := st.Get(ctx, "s-1")
	require.NoError(t, err)

	got.Transactions = got.Transactions[:1]
	got.Fees.LastYearBalance = ledger.NewAmount(0)
	require.NoError(t, st.Update(ctx, got))

	again, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, again.Transactions, 1)
	assert.True(t, again.Fees.LastYearBalance.IsZero())
	assert.Equal(t, int64(2), again.Version)
}

func TestSQLite_Update_VersionConflict(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, sampleStudent("s-1")))

	a, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	b, err := st.Get(ctx, "s-1")
	require.NoError(t, err)

	a.Name = "First Writer"
	require.NoError(t, st.Update(ctx, a))

	b.Name = "Second Writer"
	err = st.Update(ctx, b)
	assert.True(t, errors.Is(err, ledger.ErrConcurrentModification))

	got, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "First Writer", got.Name)
}

func TestSQLite_Update_Unknown(t *testing.T) {
	st := newTestStore(t)
	err := st.Update(context.Background(), sampleStudent("s-1"))
	assert.True(t, errors.Is(err, ledger.ErrStudentNotFound))
}
