/*
rollover.go - Academic-year advance

PURPOSE:
  Advances a student one academic year and one class, settling the ending
  year's unpaid balances into the aggregate carry-forward buckets and
  re-deriving next year's charges from the fee schedule.

ALGORITHM:
  1. Preconditions: target year must be the contiguous successor, a next
     class must exist in the sequence, and every schedule lookup must
     complete. Any failure aborts with no mutation.
  2. Settle: unpaid school + mess + hostel roll into LastYearBalance; unpaid
     transport rolls into LastYearTransportBalance. The ending year's
     discounts accumulate into the matching LastYear*Discount buckets so the
     prior-year gross reconstruction stays closed over rolled-over years.
  3. Reprice: the new year's tuition comes from the schedule. Admission fee
     is waived for continuing (current) students. The tuition discount is
     derived as (base student type's schedule total) - (own schedule total),
     which encodes cohort pricing such as staff-child or scholarship rates.
  4. Reset: every current-year bucket starts the new year at zero (mess,
     hostel, transport fee and transport discount alike). Carry-forward
     lives solely in the LastYear* aggregates, so nothing is double-counted.

  Transaction history is untouched; it remains the permanent audit trail.
*/
package ledger

import (
	"context"
	"errors"
)

// =============================================================================
// ROLLOVER ENGINE
// =============================================================================

// RolloverEngine orchestrates year advances. Schedule lookups happen before
// any state is derived, so a lookup failure leaves the student untouched.
type RolloverEngine struct {
	schedules FeeScheduleProvider

	// baseStudentType is the reference cohort whose schedule anchors
	// discount derivation. A student of the base type gets no derived
	// discount.
	baseStudentType string
}

// NewRolloverEngine builds an engine over the given schedule provider.
func NewRolloverEngine(schedules FeeScheduleProvider, baseStudentType string) *RolloverEngine {
	return &RolloverEngine{schedules: schedules, baseStudentType: baseStudentType}
}

// RolloverResult describes what a rollover did, for logging and persistence.
type RolloverResult struct {
	From      AcademicYear `json:"from"`
	To        AcademicYear `json:"to"`
	FromClass string       `json:"from_class"`
	ToClass   string       `json:"to_class"`

	// CarryForward is the unpaid school+mess+hostel total rolled into
	// LastYearBalance.
	CarryForward Amount `json:"carry_forward"`
	// TransportCarryForward is the unpaid transport total rolled into
	// LastYearTransportBalance.
	TransportCarryForward Amount `json:"transport_carry_forward"`

	// Schedule reports which (possibly fallback) schedule priced the new
	// year, so a downgraded lookup is visible to the caller.
	Schedule ScheduleResult `json:"schedule"`

	// TuitionDiscount is the derived cohort discount applied to the new year.
	TuitionDiscount Amount `json:"tuition_discount"`
}

// Rollover advances the student into targetYear. The caller must supply
// exactly the contiguous successor of the student's current year; anything
// else fails with NonContiguousYearError. On any error the returned Student
// is the unmodified input.
func (e *RolloverEngine) Rollover(ctx context.Context, s Student, targetYear AcademicYear, allowed AllowedValues) (Student, RolloverResult, error) {
	if targetYear != s.AcademicYear.Next() {
		return s, RolloverResult{}, &NonContiguousYearError{Current: s.AcademicYear, Requested: targetYear}
	}

	nextClass, err := allowed.NextClass(s.Class)
	if err != nil {
		return s, RolloverResult{}, err
	}

	// Status advances before pricing: a continuing student's admission fee is
	// waived. "New" only survives a rollover when there is no payment history
	// at all (an enrolled-but-never-billed record).
	status := s.Status
	if status == StatusNew && len(s.Transactions) > 0 {
		status = StatusCurrent
	}

	// Complete every I/O-bound lookup before touching state.
	own, err := e.schedules.Lookup(ctx, targetYear, nextClass, s.StudentType)
	if err != nil {
		return s, RolloverResult{}, e.missingSchedule(err, targetYear, nextClass, s.StudentType)
	}

	discount := Amount{}
	if s.StudentType != e.baseStudentType && e.baseStudentType != "" {
		base, err := e.schedules.Lookup(ctx, targetYear, nextClass, e.baseStudentType)
		switch {
		case errors.Is(err, ErrScheduleNotFound):
			// No baseline to price against: no derived discount.
		case err != nil:
			return s, RolloverResult{}, e.missingSchedule(err, targetYear, nextClass, e.baseStudentType)
		default:
			discount = base.Fees.Total().Sub(own.Fees.Total()).FloorZero()
		}
	}

	// Settle the ending year.
	unpaidSchool := Summarize(s, CategorySchool, s.AcademicYear).RemainingBefore
	unpaidMess := Summarize(s, CategoryMess, s.AcademicYear).RemainingBefore
	unpaidHostel := Summarize(s, CategoryHostel, s.AcademicYear).RemainingBefore
	unpaidTransport := Summarize(s, CategoryTransport, s.AcademicYear).RemainingBefore

	carry := unpaidSchool.Add(unpaidMess).Add(unpaidHostel)

	next := s.Clone()
	next.AcademicYear = targetYear
	next.Class = nextClass
	next.Status = status

	next.Fees.LastYearBalance = s.Fees.LastYearBalance.Add(carry)
	next.Fees.LastYearDiscount = s.Fees.LastYearDiscount.Add(s.Fees.TuitionDiscount)
	next.Fees.LastYearTransportBalance = s.Fees.LastYearTransportBalance.Add(unpaidTransport)
	next.Fees.LastYearTransportDiscount = s.Fees.LastYearTransportDiscount.Add(s.Fees.TransportDiscount)

	admission := own.Fees.AdmissionFee
	if status == StatusCurrent {
		admission = Amount{}
	}
	next.Fees.Tuition = NewTuitionCharge(admission, own.Fees.TuitionFee)
	next.Fees.TuitionDiscount = discount

	// Fresh current-year buckets. Mess/hostel/transport re-enrollment for the
	// new year is a separate administrative step.
	next.Fees.MessFee = Amount{}
	next.Fees.HostelFee = Amount{}
	next.Fees.TransportFee = Amount{}
	next.Fees.TransportDiscount = Amount{}

	return next, RolloverResult{
		From:                  s.AcademicYear,
		To:                    targetYear,
		FromClass:             s.Class,
		ToClass:               nextClass,
		CarryForward:          carry,
		TransportCarryForward: unpaidTransport,
		Schedule:              own,
		TuitionDiscount:       discount,
	}, nil
}

func (e *RolloverEngine) missingSchedule(err error, year AcademicYear, class, studentType string) error {
	if errors.Is(err, ErrScheduleNotFound) {
		return &MissingFeeScheduleError{AcademicYear: year, Class: class, StudentType: studentType}
	}
	return err
}
