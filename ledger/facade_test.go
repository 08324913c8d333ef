package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/fee-engine/ledger"
)

func newFacade(m scheduleMap) *ledger.Facade {
	return ledger.NewFacade(m, testConfig{}, "regular", nil)
}

// =============================================================================
// ENROLLMENT TESTS
// =============================================================================

func TestEnroll_PricesFromSchedule(t *testing.T) {
	f := newFacade(scheduleMap{
		"24-25/1/regular": {AdmissionFee: amt(2000), TuitionFee: amt(7000)},
	})

	s, err := f.Enroll(context.Background(), ledger.EnrollmentInput{
		Name:         "Asha Verma",
		AcademicYear: "24-25",
		Class:        "1",
		StudentType:  "regular",
		TransportFee: 3000,
		MessFee:      2400,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, ledger.StatusNew, s.Status)
	assert.True(t, s.Fees.Tuition.AdmissionFee.Equal(amt(2000)), "new students pay admission")
	assert.True(t, s.Fees.Tuition.Total.Equal(amt(9000)))
	assert.True(t, s.Fees.TuitionDiscount.IsZero())
	assert.True(t, s.Fees.TransportFee.Equal(amt(3000)))
	assert.True(t, s.Fees.MessFee.Equal(amt(2400)))
	assert.True(t, s.Fees.HostelFee.IsZero())
}

func TestEnroll_DerivesCohortDiscount(t *testing.T) {
	f := newFacade(scheduleMap{
		"24-25/1/regular": {AdmissionFee: amt(2000), TuitionFee: amt(7000)},
		"24-25/1/staff":   {AdmissionFee: amt(2000), TuitionFee: amt(5500)},
	})

	s, err := f.Enroll(context.Background(), ledger.EnrollmentInput{
		Name:         "Ravi Iyer",
		AcademicYear: "24-25",
		Class:        "1",
		StudentType:  "staff",
	})
	require.NoError(t, err)

	assert.True(t, s.Fees.TuitionDiscount.Equal(amt(1500)))
	assert.True(t, s.Fees.Tuition.Total.Equal(amt(7500)))
}

func TestEnroll_Validation(t *testing.T) {
	f := newFacade(scheduleMap{
		"24-25/1/regular": {AdmissionFee: amt(2000), TuitionFee: amt(7000)},
	})
	ctx := context.Background()

	base := func() ledger.EnrollmentInput {
		return ledger.EnrollmentInput{
			Name: "X", AcademicYear: "24-25", Class: "1", StudentType: "regular",
		}
	}

	in := base()
	in.Name = ""
	_, err := f.Enroll(ctx, in)
	assert.True(t, errors.Is(err, ledger.ErrValidation))

	in = base()
	in.AcademicYear = "2024-25"
	_, err = f.Enroll(ctx, in)
	assert.True(t, errors.Is(err, ledger.ErrValidation))

	in = base()
	in.Class = "13"
	_, err = f.Enroll(ctx, in)
	assert.True(t, errors.Is(err, ledger.ErrValidation))

	in = base()
	in.MessFee = -1
	_, err = f.Enroll(ctx, in)
	assert.True(t, errors.Is(err, ledger.ErrValidation))
}

func TestEnroll_MissingSchedule(t *testing.T) {
	f := newFacade(scheduleMap{})

	_, err := f.Enroll(context.Background(), ledger.EnrollmentInput{
		Name: "X", AcademicYear: "24-25", Class: "1", StudentType: "regular",
	})

	var mfe *ledger.MissingFeeScheduleError
	assert.ErrorAs(t, err, &mfe)
}

// =============================================================================
// FULL LIFECYCLE TEST
// =============================================================================

func TestFacade_EnrollPayRolloverSettle(t *testing.T) {
	// GIVEN: A freshly enrolled student
	// WHEN: Paying part of the year, rolling over, then settling the carried
	//       balance in the new year
	// THEN: Every stage agrees on who owes what

	f := newFacade(scheduleMap{
		"24-25/1/regular": {AdmissionFee: amt(2000), TuitionFee: amt(7000)},
		"25-26/2/regular": {AdmissionFee: amt(2500), TuitionFee: amt(8000)},
	})
	ctx := context.Background()

	s, err := f.Enroll(ctx, ledger.EnrollmentInput{
		Name:         "Asha Verma",
		AcademicYear: "24-25",
		Class:        "1",
		StudentType:  "regular",
		MessFee:      2400,
	})
	require.NoError(t, err)

	// Pay 6000 of the 9000 school due.
	s, _, err = f.RecordPayment(s, ledger.PaymentDraft{
		AcademicYear: "24-25", Category: "school_fee", Amount: 6000,
		PaymentMode: "cash", Account: "main", Date: "2024-07-01",
	})
	require.NoError(t, err)

	// Roll into 25-26: 3000 school + 2400 mess carry forward; status promotes
	// and admission is waived.
	s, res, err := f.Rollover(ctx, s, "25-26")
	require.NoError(t, err)
	assert.True(t, res.CarryForward.Equal(amt(5400)))
	assert.Equal(t, ledger.StatusCurrent, s.Status)
	assert.True(t, s.Fees.Tuition.Total.Equal(amt(8000)))

	// The prior year is still payable, now against the aggregate. School,
	// mess and hostel share one carried bucket, so the school position reports
	// the full 5400.
	prior := f.Summary(s, ledger.CategorySchool, "24-25")
	assert.True(t, prior.RemainingBefore.Equal(amt(5400)))

	s, payRes, err := f.RecordPayment(s, ledger.PaymentDraft{
		AcademicYear: "24-25", Category: "school_fee", Amount: 3000,
		PaymentMode: "online", Account: "main", Date: "2025-04-15",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.BucketLastYearBalance, payRes.Delta.Bucket)
	assert.True(t, s.Fees.LastYearBalance.Equal(amt(2400)), "mess portion still owed")

	// Current-year summaries reflect the new pricing.
	sums := f.Summaries(s)
	require.Len(t, sums, 4)
	assert.True(t, sums[0].NetDue.Equal(amt(8000)))
}
