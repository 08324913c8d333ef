package ledger

// =============================================================================
// STUDENT - Aggregate root
// =============================================================================

// StudentStatus is the enrollment lifecycle state.
type StudentStatus string

const (
	// StatusNew marks a freshly enrolled student who has not yet been rolled
	// over with any payment history. New students are charged admission fees.
	StatusNew StudentStatus = "new"
	// StatusCurrent marks a continuing student. Admission fees are waived.
	StatusCurrent StudentStatus = "current"
	// StatusInactive is set only by explicit administrative toggle. The
	// rollover engine is never invoked for inactive students.
	StatusInactive StudentStatus = "inactive"
)

// Student is the aggregate the ledger operates on. Operations take a full
// Student value and return a full replacement; they never mutate the input.
type Student struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	AcademicYear AcademicYear  `json:"academic_year"`
	Class        string        `json:"class"`
	StudentType  string        `json:"student_type"`
	Status       StudentStatus `json:"status"`
	Fees         FeeProfile    `json:"fees"`
	Transactions []Transaction `json:"transactions"`

	// Version supports optimistic concurrency at the store boundary.
	// The ledger itself never reads it.
	Version int64 `json:"version"`
}

// Clone returns a deep copy. Transaction values are copied so the caller can
// mutate the clone's history without aliasing the original slice.
func (s Student) Clone() Student {
	out := s
	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	return out
}

// TransactionIndex returns the position of the transaction with the given
// receipt ID, or -1.
func (s Student) TransactionIndex(receiptID string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ReceiptID == receiptID {
			return i
		}
	}
	return -1
}
