/*
facade.go - Single entry point for external callers

PURPOSE:
  Composes the Journal and the RolloverEngine behind one API. Handlers (or
  any other caller) hand in a consistent Student snapshot and get back a full
  replacement plus a description of what changed; persisting the replacement
  atomically is the caller's job (see store.go).

  The facade also owns enrollment: building a new Student from the fee
  schedule with status "new", which is where admission fees enter the ledger.
*/
package ledger

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// =============================================================================
// FACADE
// =============================================================================

// Facade is the caller-facing composition of the ledger core.
type Facade struct {
	journal  *Journal
	rollover *RolloverEngine
	allowed  AllowedValuesProvider
	log      *slog.Logger
}

// NewFacade wires the core together. baseStudentType anchors discount
// derivation (see RolloverEngine). A nil logger disables operation logs.
func NewFacade(schedules FeeScheduleProvider, allowed AllowedValuesProvider, baseStudentType string, log *slog.Logger) *Facade {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Facade{
		journal:  NewJournal(allowed),
		rollover: NewRolloverEngine(schedules, baseStudentType),
		allowed:  allowed,
		log:      log,
	}
}

// =============================================================================
// ENROLLMENT
// =============================================================================

// EnrollmentInput describes a new student. Transport, mess and hostel are
// opt-in amounts; zero means the student does not use the service.
type EnrollmentInput struct {
	Name              string `json:"name"`
	AcademicYear      string `json:"academic_year"`
	Class             string `json:"class"`
	StudentType       string `json:"student_type"`
	TransportFee      int64  `json:"transport_fee"`
	TransportDiscount int64  `json:"transport_discount"`
	MessFee           int64  `json:"mess_fee"`
	HostelFee         int64  `json:"hostel_fee"`
}

// Enroll builds a new Student priced from the fee schedule, status "new".
// The schedule lookup must succeed; enrollment does not fall back.
func (f *Facade) Enroll(ctx context.Context, in EnrollmentInput) (Student, error) {
	if in.Name == "" {
		return Student{}, &ValidationError{Field: "name", Message: "required"}
	}
	year, err := ParseAcademicYear(in.AcademicYear)
	if err != nil {
		return Student{}, &ValidationError{Field: "academic_year", Message: "must be a contiguous YY-YY year"}
	}
	values := f.allowed.AllowedValues()
	if !contains(values.ClassSequence, in.Class) {
		return Student{}, &ValidationError{Field: "class", Message: "not in configured class sequence"}
	}
	if in.StudentType == "" {
		return Student{}, &ValidationError{Field: "student_type", Message: "required"}
	}
	if in.TransportFee < 0 || in.TransportDiscount < 0 || in.MessFee < 0 || in.HostelFee < 0 {
		return Student{}, &ValidationError{Field: "fees", Message: "amounts must not be negative"}
	}

	sched, err := f.rollover.schedules.Lookup(ctx, year, in.Class, in.StudentType)
	if err != nil {
		return Student{}, f.rollover.missingSchedule(err, year, in.Class, in.StudentType)
	}

	discount := Amount{}
	if base := f.rollover.baseStudentType; base != "" && base != in.StudentType {
		if baseSched, err := f.rollover.schedules.Lookup(ctx, year, in.Class, base); err == nil {
			discount = baseSched.Fees.Total().Sub(sched.Fees.Total()).FloorZero()
		}
	}

	s := Student{
		ID:           uuid.NewString(),
		Name:         in.Name,
		AcademicYear: year,
		Class:        in.Class,
		StudentType:  in.StudentType,
		Status:       StatusNew,
		Fees: FeeProfile{
			Tuition:           NewTuitionCharge(sched.Fees.AdmissionFee, sched.Fees.TuitionFee),
			TuitionDiscount:   discount,
			TransportFee:      NewAmount(in.TransportFee),
			TransportDiscount: NewAmount(in.TransportDiscount),
			MessFee:           NewAmount(in.MessFee),
			HostelFee:         NewAmount(in.HostelFee),
		},
	}

	f.log.Info("student enrolled",
		"student_id", s.ID, "year", year, "class", in.Class, "type", in.StudentType,
		"schedule_fallback", sched.Fallback)
	return s, nil
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

// RecordPayment records a payment draft against the student.
func (f *Facade) RecordPayment(s Student, draft PaymentDraft) (Student, PaymentResult, error) {
	next, res, err := f.journal.RecordPayment(s, draft)
	if err != nil {
		return s, PaymentResult{}, err
	}
	f.log.Info("payment recorded",
		"student_id", s.ID,
		"receipt_id", res.Transaction.ReceiptID,
		"category", res.Transaction.Category,
		"year", res.Transaction.AcademicYear,
		"amount", res.Transaction.Amount.String(),
		"status", res.Transaction.Status)
	return next, res, nil
}

// UpdateStatus promotes or cancels a pending transaction.
func (f *Facade) UpdateStatus(s Student, receiptID string, to TransactionStatus) (Student, FeeProfileDelta, error) {
	next, delta, err := f.journal.UpdateStatus(s, receiptID, to)
	if err != nil {
		return s, FeeProfileDelta{}, err
	}
	f.log.Info("transaction status updated",
		"student_id", s.ID, "receipt_id", receiptID, "to", to)
	return next, delta, nil
}

// DeleteTransaction removes a transaction, reversing its ledger effect.
func (f *Facade) DeleteTransaction(s Student, receiptID string) (Student, FeeProfileDelta, error) {
	next, delta, err := f.journal.DeleteTransaction(s, receiptID)
	if err != nil {
		return s, FeeProfileDelta{}, err
	}
	f.log.Info("transaction deleted",
		"student_id", s.ID, "receipt_id", receiptID, "reversed", !delta.IsZero())
	return next, delta, nil
}

// Rollover advances the student into targetYear.
func (f *Facade) Rollover(ctx context.Context, s Student, targetYear AcademicYear) (Student, RolloverResult, error) {
	next, res, err := f.rollover.Rollover(ctx, s, targetYear, f.allowed.AllowedValues())
	if err != nil {
		return s, RolloverResult{}, err
	}
	if res.Schedule.Fallback {
		f.log.Warn("rollover priced from fallback schedule",
			"student_id", s.ID, "requested_year", targetYear, "served_year", res.Schedule.Year)
	}
	f.log.Info("student rolled over",
		"student_id", s.ID,
		"from", res.From, "to", res.To,
		"class", res.ToClass,
		"carry_forward", res.CarryForward.String(),
		"transport_carry_forward", res.TransportCarryForward.String())
	return next, res, nil
}

// Summaries returns the derived current-year fee position per category.
func (f *Facade) Summaries(s Student) []CategorySummary {
	return SummarizeAll(s)
}

// Summary returns the derived position for one (category, year) key.
func (f *Facade) Summary(s Student, category FeeCategory, year AcademicYear) CategorySummary {
	return Summarize(s, category, year)
}
