/*
errors.go - Centralized error types for the fee ledger

PURPOSE:
  All error types in one place. Every rejected operation returns one of
  these and leaves the Student snapshot byte-for-byte unchanged; no error
  is ever silently swallowed.

ERROR CATEGORIES:
  1. Validation errors  - malformed or missing payment input
  2. Business errors    - overpayment, illegal status transition
  3. Rollover errors    - precondition and schedule-lookup failures
  4. Boundary errors    - lookups and store-level conflicts

USAGE:
  Callers match with errors.Is against the sentinels, or errors.As against
  the structured types for detail:

    var ope *ledger.OverpaymentError
    if errors.As(err, &ope) {
        fmt.Printf("only %s remaining\n", ope.Remaining)
    }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or missing payment input.
	ErrValidation = errors.New("validation failed")

	// ErrOverpayment is returned when a payment exceeds the remaining due
	// for its (category, academic year) key.
	ErrOverpayment = errors.New("amount exceeds remaining balance")

	// ErrInvalidTransition is returned for illegal status changes.
	// Only pending->completed and pending->cancelled are legal.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNonContiguousYear is returned when a rollover targets anything but
	// the immediately following academic year.
	ErrNonContiguousYear = errors.New("rollover year is not contiguous")

	// ErrNoNextClass is returned when the student is already in the last
	// class of the configured sequence.
	ErrNoNextClass = errors.New("no next class in sequence")

	// ErrMissingFeeSchedule is returned when no fee schedule exists for the
	// rollover target (and no fallback could serve it).
	ErrMissingFeeSchedule = errors.New("fee schedule not found")

	// ErrScheduleNotFound is the provider-level miss that the engine wraps
	// into MissingFeeScheduleError.
	ErrScheduleNotFound = errors.New("no schedule for cohort")

	// ErrReceiptNotFound is returned when a receipt ID does not exist on the
	// student's transaction history.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrStudentNotFound is returned by stores for unknown student IDs.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentExists is returned by stores on duplicate creation.
	ErrStudentExists = errors.New("student already exists")

	// ErrConcurrentModification is returned when an optimistic version check
	// fails. Callers should re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which draft field failed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OverpaymentError reports an attempted payment above the remaining due.
type OverpaymentError struct {
	Category     FeeCategory
	AcademicYear AcademicYear
	Remaining    Amount
	Requested    Amount
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("overpayment on %s %s: remaining %s, requested %s",
		e.Category, e.AcademicYear, e.Remaining, e.Requested)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

// InvalidTransitionError reports an illegal status change.
type InvalidTransitionError struct {
	ReceiptID string
	From      TransactionStatus
	To        TransactionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transaction %s: cannot move %s -> %s", e.ReceiptID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NonContiguousYearError reports a rollover skipping or repeating years.
type NonContiguousYearError struct {
	Current   AcademicYear
	Requested AcademicYear
}

func (e *NonContiguousYearError) Error() string {
	return fmt.Sprintf("cannot roll over %s -> %s: next year is %s",
		e.Current, e.Requested, e.Current.Next())
}

func (e *NonContiguousYearError) Unwrap() error { return ErrNonContiguousYear }

// NoNextClassError reports a student already in the final class.
type NoNextClassError struct {
	Class string
}

func (e *NoNextClassError) Error() string {
	return fmt.Sprintf("class %q is the last in the sequence", e.Class)
}

func (e *NoNextClassError) Unwrap() error { return ErrNoNextClass }

// MissingFeeScheduleError reports a failed schedule lookup. The rollover that
// produced it performed no mutation.
type MissingFeeScheduleError struct {
	AcademicYear AcademicYear
	Class        string
	StudentType  string
}

func (e *MissingFeeScheduleError) Error() string {
	return fmt.Sprintf("no fee schedule for %s/%s/%s", e.AcademicYear, e.Class, e.StudentType)
}

func (e *MissingFeeScheduleError) Unwrap() error { return ErrMissingFeeSchedule }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input and
// the operation can be corrected and retried by the user.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrOverpayment) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNonContiguousYear) ||
		errors.Is(err, ErrNoNextClass)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReceiptNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrMissingFeeSchedule)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
