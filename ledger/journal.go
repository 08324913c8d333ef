/*
journal.go - Payment recording and transaction lifecycle

PURPOSE:
  Validates and applies every mutation of a student's transaction history:
  recording payments, promoting or cancelling pending cheques, and deleting
  transactions with reversal of any ledger effect.

LEDGER EFFECT RULES (the asymmetry that matters):
  - Current-year payments never mutate a stored bucket. Current-year dues are
    derived on read, so there is nothing to decrement and nothing to reverse.
  - Prior-year COMPLETED payments decrement the matching aggregate bucket
    (LastYearBalance or LastYearTransportBalance), because those buckets are
    the only remaining record of what is owed.
  - Pending payments reserve nothing. The bucket decrement happens when the
    cheque clears (pending -> completed), using the original amount.
  - Deletion reverses exactly the decrement that creation (or clearing)
    applied: add the amount back for non-current-year completed transactions,
    no-op otherwise. Derive, never double-reverse.

OVERPAYMENT:
  A payment above the available balance (RemainingBefore minus amounts held
  by pending instruments) for its key is rejected outright. Because of this
  guard, a prior-year decrement can never exceed the bucket, so the
  floor-at-zero on apply() is a safety net rather than expected behavior.
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PAYMENT DRAFT - Unvalidated caller input
// =============================================================================

// PaymentDraft is the raw payment submission. Fields arrive as strings and
// are validated before anything is touched.
type PaymentDraft struct {
	AcademicYear string `json:"academic_year"`
	Category     string `json:"category"`
	Amount       int64  `json:"amount"`
	PaymentMode  string `json:"payment_mode"`
	Account      string `json:"account"`
	Date         string `json:"date"`
	Remark       string `json:"remark,omitempty"`
}

// dateLayout is the wire format for payment dates.
const dateLayout = "2006-01-02"

// =============================================================================
// JOURNAL - Transaction mutations
// =============================================================================

// Journal validates and applies transaction mutations. It is stateless apart
// from its collaborators; every method takes and returns full Student values.
type Journal struct {
	allowed AllowedValuesProvider

	// Injection points for deterministic tests.
	now       func() time.Time
	receiptID func() string
}

// NewJournal builds a Journal over the configured allowed-value sets.
func NewJournal(allowed AllowedValuesProvider) *Journal {
	return &Journal{
		allowed:   allowed,
		now:       time.Now,
		receiptID: func() string { return uuid.NewString() },
	}
}

// PaymentResult is the outcome of a recorded payment.
type PaymentResult struct {
	Transaction Transaction     `json:"transaction"`
	Delta       FeeProfileDelta `json:"delta"`
}

// RecordPayment validates the draft, enforces the overpayment rule, captures
// the audit snapshot, applies any prior-year bucket effect and appends the
// transaction. On error the returned Student is the unmodified input.
func (j *Journal) RecordPayment(s Student, draft PaymentDraft) (Student, PaymentResult, error) {
	year, category, date, err := j.validateDraft(draft)
	if err != nil {
		return s, PaymentResult{}, err
	}

	amount := NewAmount(draft.Amount)
	summary := Summarize(s, category, year)

	if amount.GreaterThan(summary.Available()) {
		return s, PaymentResult{}, &OverpaymentError{
			Category:     category,
			AcademicYear: year,
			Remaining:    summary.Available(),
			Requested:    amount,
		}
	}

	status := StatusCompleted
	if draft.PaymentMode == PaymentModeCheque {
		status = StatusPending
	}

	tx := Transaction{
		ReceiptID:    j.receiptID(),
		AcademicYear: year,
		Category:     category,
		Amount:       amount,
		PaymentMode:  draft.PaymentMode,
		Account:      draft.Account,
		Date:         date,
		Remark:       draft.Remark,
		Status:       status,
		Snapshot: HistoricalSnapshot{
			InitialFee:         summary.GrossDue,
			ApplicableDiscount: summary.Discount,
			PreviousPayments:   summary.PreviousPayments,
			RemainingBefore:    summary.RemainingBefore,
			RemainingAfter:     summary.RemainingBefore.Sub(amount).FloorZero(),
		},
		CreatedAt: j.now().UTC(),
	}

	var delta FeeProfileDelta
	if status == StatusCompleted && !summary.CurrentYear {
		delta = FeeProfileDelta{Bucket: priorYearBucket(category), Change: amount.Neg()}
	}

	next := s.Clone()
	next.Fees.apply(delta)
	next.Transactions = append(next.Transactions, tx)

	return next, PaymentResult{Transaction: tx, Delta: delta}, nil
}

// UpdateStatus promotes or cancels a pending transaction.
//
//	pending -> completed: applies the deferred prior-year bucket decrement
//	pending -> cancelled: no ledger effect (the balance was never reserved)
//
// Every other transition fails with InvalidTransitionError.
func (j *Journal) UpdateStatus(s Student, receiptID string, to TransactionStatus) (Student, FeeProfileDelta, error) {
	idx := s.TransactionIndex(receiptID)
	if idx < 0 {
		return s, FeeProfileDelta{}, ErrReceiptNotFound
	}
	tx := s.Transactions[idx]

	if tx.Status != StatusPending || (to != StatusCompleted && to != StatusCancelled) {
		return s, FeeProfileDelta{}, &InvalidTransitionError{ReceiptID: receiptID, From: tx.Status, To: to}
	}

	var delta FeeProfileDelta
	if to == StatusCompleted && tx.AcademicYear != s.AcademicYear {
		delta = FeeProfileDelta{Bucket: priorYearBucket(tx.Category), Change: tx.Amount.Neg()}
	}

	next := s.Clone()
	next.Transactions[idx].Status = to
	next.Fees.apply(delta)

	return next, delta, nil
}

// DeleteTransaction removes a transaction from history, reversing the bucket
// decrement it applied if it was a completed non-current-year payment.
// Current-year deletions have no inverse mutation: those dues were derived,
// never stored.
func (j *Journal) DeleteTransaction(s Student, receiptID string) (Student, FeeProfileDelta, error) {
	idx := s.TransactionIndex(receiptID)
	if idx < 0 {
		return s, FeeProfileDelta{}, ErrReceiptNotFound
	}
	tx := s.Transactions[idx]

	var delta FeeProfileDelta
	if tx.Status == StatusCompleted && tx.AcademicYear != s.AcademicYear {
		delta = FeeProfileDelta{Bucket: priorYearBucket(tx.Category), Change: tx.Amount}
	}

	next := s.Clone()
	next.Transactions = append(next.Transactions[:idx], next.Transactions[idx+1:]...)
	next.Fees.apply(delta)

	return next, delta, nil
}

// =============================================================================
// DRAFT VALIDATION
// =============================================================================

func (j *Journal) validateDraft(d PaymentDraft) (AcademicYear, FeeCategory, time.Time, error) {
	fail := func(field, msg string) (AcademicYear, FeeCategory, time.Time, error) {
		return "", "", time.Time{}, &ValidationError{Field: field, Message: msg}
	}

	if d.AcademicYear == "" {
		return fail("academic_year", "required")
	}
	year, err := ParseAcademicYear(d.AcademicYear)
	if err != nil {
		return fail("academic_year", "must be a contiguous YY-YY year")
	}

	if d.Category == "" {
		return fail("category", "required")
	}
	if !ValidCategory(d.Category) {
		return fail("category", "unknown fee category")
	}

	if d.Amount <= 0 {
		return fail("amount", "must be a positive number")
	}

	if d.Date == "" {
		return fail("date", "required")
	}
	date, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return fail("date", "must be YYYY-MM-DD")
	}

	allowed := j.allowed.AllowedValues()
	if d.PaymentMode == "" {
		return fail("payment_mode", "required")
	}
	if !contains(allowed.PaymentModes, d.PaymentMode) {
		return fail("payment_mode", "not an allowed payment mode")
	}
	if d.Account == "" {
		return fail("account", "required")
	}
	if !contains(allowed.Accounts, d.Account) {
		return fail("account", "not an allowed account")
	}

	return year, FeeCategory(d.Category), date, nil
}
