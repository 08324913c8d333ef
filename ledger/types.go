/*
Package ledger implements the per-student, multi-year school fee ledger.

PURPOSE:
  Tracks what a student owes across fee categories and academic years,
  records payments (including deferred cheque payments), and advances a
  student to the next academic year while carrying forward unpaid balances.

KEY CONCEPTS:
  - FeeProfile:  Named monetary buckets for the current year plus aggregated
                 prior-year balances.
  - Transaction: A payment against one (category, academic year) key, with an
                 immutable audit snapshot captured at creation time.
  - Summarize:   Pure derivation of gross/net/remaining dues from the profile
                 and the transaction history. Paid totals are never cached.
  - Journal:     Validates and applies payment mutations.
  - RolloverEngine / Facade: Year-advance orchestration and the single entry
                 point used by callers.

DESIGN PRINCIPLES:
  1. Derive, don't cache: outstanding and paid totals are always recomputed
     from the transaction log, so they cannot drift.
  2. Whole-snapshot transforms: every operation takes a full Student value
     and returns a full replacement. Persistence is the caller's concern.
  3. Typed failures: every rejected operation returns a structured error and
     leaves the input untouched.

SEE ALSO:
  - math.go:     Due/remaining computation, prior-year gross reconstruction
  - journal.go:  Payment recording, status transitions, deletion
  - rollover.go: Academic-year advance
  - facade.go:   Caller-facing composition
*/
package ledger

import "time"

// =============================================================================
// FEE CATEGORY
// =============================================================================

// FeeCategory is the unit of balance tracking.
type FeeCategory string

const (
	CategorySchool    FeeCategory = "school_fee"    // tuition + admission
	CategoryTransport FeeCategory = "transport_fee" // bus service
	CategoryMess      FeeCategory = "mess_fee"      // meals
	CategoryHostel    FeeCategory = "hostel_fee"    // boarding
)

// Categories lists every fee category in display order.
func Categories() []FeeCategory {
	return []FeeCategory{CategorySchool, CategoryTransport, CategoryMess, CategoryHostel}
}

// ValidCategory reports whether s names a known fee category.
func ValidCategory(s string) bool {
	switch FeeCategory(s) {
	case CategorySchool, CategoryTransport, CategoryMess, CategoryHostel:
		return true
	}
	return false
}

// =============================================================================
// TRANSACTION - Payment record with an immutable audit snapshot
// =============================================================================

// TransactionStatus is the lifecycle state of a payment.
//
// State machine:
//
//	completed  (initial, unless paid by cheque)
//	pending    (initial for cheque) -> completed | cancelled
//
// completed and cancelled are terminal; the only way out is explicit deletion,
// which reverses any ledger effect the transaction had.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// PaymentModeCheque is the one payment mode with ledger semantics: cheque
// payments start pending and reserve no balance until they clear. All other
// modes (cash, online, ...) are opaque strings validated against school
// configuration.
const PaymentModeCheque = "cheque"

// HistoricalSnapshot is the audit record captured when a transaction is
// created. It is point-in-time data: later payments, deletions, or rollovers
// never touch it. RemainingAfter is recorded even for pending transactions,
// showing what the remaining due would be once the instrument clears.
type HistoricalSnapshot struct {
	InitialFee         Amount `json:"initial_fee"`
	ApplicableDiscount Amount `json:"applicable_discount"`
	PreviousPayments   Amount `json:"previous_payments"`
	RemainingBefore    Amount `json:"remaining_before"`
	RemainingAfter     Amount `json:"remaining_after"`
}

// Transaction records one payment against a (category, academic year) key.
type Transaction struct {
	ReceiptID    string             `json:"receipt_id"`
	AcademicYear AcademicYear       `json:"academic_year"`
	Category     FeeCategory        `json:"category"`
	Amount       Amount             `json:"amount"`
	PaymentMode  string             `json:"payment_mode"`
	Account      string             `json:"account"`
	Date         time.Time          `json:"date"`
	Remark       string             `json:"remark,omitempty"`
	Status       TransactionStatus  `json:"status"`
	Snapshot     HistoricalSnapshot `json:"snapshot"`
	CreatedAt    time.Time          `json:"created_at"`
}

// CountsTowardPaid reports whether the transaction reduces remaining dues.
// Pending and cancelled transactions are inert.
func (t Transaction) CountsTowardPaid() bool { return t.Status == StatusCompleted }
