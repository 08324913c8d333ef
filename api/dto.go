/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Amounts cross the wire as integers in minor currency units.
*/
package api

import (
	"time"

	"github.com/brightpath/fee-engine/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// EnrollStudentRequest creates a student. It is ledger.EnrollmentInput, which
// already arrives wire-shaped.
type EnrollStudentRequest = ledger.EnrollmentInput

// RecordPaymentRequest is the payment submission body; it maps directly onto
// ledger.PaymentDraft.
type RecordPaymentRequest = ledger.PaymentDraft

// UpdateStatusRequest promotes or cancels a pending transaction.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RolloverRequest advances a student into the named year.
type RolloverRequest struct {
	TargetYear string `json:"target_year"`
}

// BatchRolloverRequest advances every active student of a class.
type BatchRolloverRequest struct {
	Class      string `json:"class"`
	TargetYear string `json:"target_year"`
}

// SetStudentStatusRequest is the administrative enrolment-status toggle.
type SetStudentStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// StudentDTO is a student snapshot without transaction history.
type StudentDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	AcademicYear string            `json:"academic_year"`
	Class        string            `json:"class"`
	StudentType  string            `json:"student_type"`
	Status       string            `json:"status"`
	Fees         FeeProfileDTO     `json:"fees"`
	Transactions []TransactionDTO  `json:"transactions,omitempty"`
}

// FeeProfileDTO mirrors ledger.FeeProfile with integer amounts.
type FeeProfileDTO struct {
	AdmissionFee              int64 `json:"admission_fee"`
	TuitionFee                int64 `json:"tuition_fee"`
	TuitionTotal              int64 `json:"tuition_total"`
	TuitionDiscount           int64 `json:"tuition_discount"`
	TransportFee              int64 `json:"transport_fee"`
	TransportDiscount         int64 `json:"transport_discount"`
	MessFee                   int64 `json:"mess_fee"`
	HostelFee                 int64 `json:"hostel_fee"`
	LastYearBalance           int64 `json:"last_year_balance"`
	LastYearDiscount          int64 `json:"last_year_discount"`
	LastYearTransportBalance  int64 `json:"last_year_transport_balance"`
	LastYearTransportDiscount int64 `json:"last_year_transport_discount"`
}

// TransactionDTO is a payment record in API responses.
type TransactionDTO struct {
	ReceiptID    string      `json:"receipt_id"`
	AcademicYear string      `json:"academic_year"`
	Category     string      `json:"category"`
	Amount       int64       `json:"amount"`
	PaymentMode  string      `json:"payment_mode"`
	Account      string      `json:"account"`
	Date         string      `json:"date"`
	Remark       string      `json:"remark,omitempty"`
	Status       string      `json:"status"`
	Snapshot     SnapshotDTO `json:"snapshot"`
	CreatedAt    string      `json:"created_at"`
}

// SnapshotDTO is the immutable audit record captured at creation time.
type SnapshotDTO struct {
	InitialFee         int64 `json:"initial_fee"`
	ApplicableDiscount int64 `json:"applicable_discount"`
	PreviousPayments   int64 `json:"previous_payments"`
	RemainingBefore    int64 `json:"remaining_before"`
	RemainingAfter     int64 `json:"remaining_after"`
}

// SummaryDTO is the derived fee position for one (category, year) key.
type SummaryDTO struct {
	Category         string `json:"category"`
	AcademicYear     string `json:"academic_year"`
	CurrentYear      bool   `json:"current_year"`
	GrossDue         int64  `json:"gross_due"`
	Discount         int64  `json:"discount"`
	NetDue           int64  `json:"net_due"`
	PreviousPayments int64  `json:"previous_payments"`
	PendingPayments  int64  `json:"pending_payments"`
	RemainingBefore  int64  `json:"remaining_before"`
	Available        int64  `json:"available"`
}

// PaymentResponse returns the stored transaction and the resulting student.
type PaymentResponse struct {
	Transaction TransactionDTO `json:"transaction"`
	Student     StudentDTO     `json:"student"`
}

// RolloverResponse reports what a rollover did.
type RolloverResponse struct {
	Student               StudentDTO `json:"student"`
	From                  string     `json:"from"`
	To                    string     `json:"to"`
	ToClass               string     `json:"to_class"`
	CarryForward          int64      `json:"carry_forward"`
	TransportCarryForward int64      `json:"transport_carry_forward"`
	ScheduleFallback      bool       `json:"schedule_fallback"`
	ScheduleYear          string     `json:"schedule_year"`
}

// BatchRolloverResponse is the per-student report of a class-wide rollover.
type BatchRolloverResponse struct {
	RolledOver []string          `json:"rolled_over"`
	Skipped    []string          `json:"skipped,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toStudentDTO(s ledger.Student, withTransactions bool) StudentDTO {
	dto := StudentDTO{
		ID:           s.ID,
		Name:         s.Name,
		AcademicYear: string(s.AcademicYear),
		Class:        s.Class,
		StudentType:  s.StudentType,
		Status:       string(s.Status),
		Fees: FeeProfileDTO{
			AdmissionFee:              s.Fees.Tuition.AdmissionFee.Minor(),
			TuitionFee:                s.Fees.Tuition.TuitionFee.Minor(),
			TuitionTotal:              s.Fees.Tuition.Total.Minor(),
			TuitionDiscount:           s.Fees.TuitionDiscount.Minor(),
			TransportFee:              s.Fees.TransportFee.Minor(),
			TransportDiscount:         s.Fees.TransportDiscount.Minor(),
			MessFee:                   s.Fees.MessFee.Minor(),
			HostelFee:                 s.Fees.HostelFee.Minor(),
			LastYearBalance:           s.Fees.LastYearBalance.Minor(),
			LastYearDiscount:          s.Fees.LastYearDiscount.Minor(),
			LastYearTransportBalance:  s.Fees.LastYearTransportBalance.Minor(),
			LastYearTransportDiscount: s.Fees.LastYearTransportDiscount.Minor(),
		},
	}
	if withTransactions {
		dto.Transactions = make([]TransactionDTO, 0, len(s.Transactions))
		for _, t := range s.Transactions {
			dto.Transactions = append(dto.Transactions, toTransactionDTO(t))
		}
	}
	return dto
}

func toTransactionDTO(t ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ReceiptID:    t.ReceiptID,
		AcademicYear: string(t.AcademicYear),
		Category:     string(t.Category),
		Amount:       t.Amount.Minor(),
		PaymentMode:  t.PaymentMode,
		Account:      t.Account,
		Date:         t.Date.Format("2006-01-02"),
		Remark:       t.Remark,
		Status:       string(t.Status),
		Snapshot: SnapshotDTO{
			InitialFee:         t.Snapshot.InitialFee.Minor(),
			ApplicableDiscount: t.Snapshot.ApplicableDiscount.Minor(),
			PreviousPayments:   t.Snapshot.PreviousPayments.Minor(),
			RemainingBefore:    t.Snapshot.RemainingBefore.Minor(),
			RemainingAfter:     t.Snapshot.RemainingAfter.Minor(),
		},
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toSummaryDTO(c ledger.CategorySummary) SummaryDTO {
	return SummaryDTO{
		Category:         string(c.Category),
		AcademicYear:     string(c.AcademicYear),
		CurrentYear:      c.CurrentYear,
		GrossDue:         c.GrossDue.Minor(),
		Discount:         c.Discount.Minor(),
		NetDue:           c.NetDue.Minor(),
		PreviousPayments: c.PreviousPayments.Minor(),
		PendingPayments:  c.PendingPayments.Minor(),
		RemainingBefore:  c.RemainingBefore.Minor(),
		Available:        c.Available().Minor(),
	}
}
