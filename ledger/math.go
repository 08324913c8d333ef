/*
math.go - Pure due/paid/remaining computation

PURPOSE:
  Answers "how much does this student owe?" for one (category, academic year)
  key. Everything here is side-effect-free: a summary is derived from the
  FeeProfile and the transaction history on every read, so there is no paid
  counter that can drift out of sync.

CURRENT YEAR:
  Gross charges live on the profile. School and transport carry a discount
  concept (gross = stored total + stored discount); mess and hostel do not.

PRIOR YEARS:
  Once a year rolls over, its original charges are no longer stored anywhere:
  school/mess/hostel collapse into LastYearBalance and transport into
  LastYearTransportBalance. The gross due for a prior year is therefore
  RECONSTRUCTED:

    gross = completed payments for that key + remaining aggregate + aggregate discount

  which is sound because (what was already paid) + (what remains owed) is all
  that survives the rollover. The reconstruction is exposed on the summary so
  callers can persist year-closing snapshots if they want the original totals
  preserved explicitly.

GUARANTEE:
  RemainingBefore is monotonically non-increasing as completed payments are
  added for the same key, and is unaffected by pending or cancelled
  transactions.
*/
package ledger

// =============================================================================
// CATEGORY SUMMARY - Derived dues for one (category, academic year) key
// =============================================================================

// CategorySummary is the derived fee position for one category and year.
type CategorySummary struct {
	Category     FeeCategory  `json:"category"`
	AcademicYear AcademicYear `json:"academic_year"`

	// CurrentYear is true when the summary targets the year the student's
	// record is presently anchored to.
	CurrentYear bool `json:"current_year"`

	// GrossDue is the charge before discount. For prior years this is
	// reconstructed, not read from storage.
	GrossDue Amount `json:"gross_due"`

	Discount Amount `json:"discount"`

	// NetDue = GrossDue - Discount.
	NetDue Amount `json:"net_due"`

	// PreviousPayments sums completed transactions for this key.
	PreviousPayments Amount `json:"previous_payments"`

	// PendingPayments sums pending (uncleared) transactions for this key.
	// Pending amounts never reduce RemainingBefore, but they do reserve
	// balance against further payments: see Available.
	PendingPayments Amount `json:"pending_payments"`

	// RemainingBefore = max(NetDue - PreviousPayments, 0).
	RemainingBefore Amount `json:"remaining_before"`
}

// Available is the amount a new payment may be recorded for: the remaining
// due minus uncleared pending instruments. Accepting more would overpay the
// key the moment the cheques clear.
func (c CategorySummary) Available() Amount {
	return c.RemainingBefore.Sub(c.PendingPayments).FloorZero()
}

// Summarize computes the fee position for one (category, year) key.
func Summarize(s Student, category FeeCategory, year AcademicYear) CategorySummary {
	paid := paymentsWithStatus(s.Transactions, category, year, StatusCompleted)
	pending := paymentsWithStatus(s.Transactions, category, year, StatusPending)

	var gross, discount Amount
	current := year == s.AcademicYear

	if current {
		switch category {
		case CategorySchool:
			gross = s.Fees.Tuition.Total.Add(s.Fees.TuitionDiscount)
			discount = s.Fees.TuitionDiscount
		case CategoryTransport:
			gross = s.Fees.TransportFee.Add(s.Fees.TransportDiscount)
			discount = s.Fees.TransportDiscount
		case CategoryMess:
			gross = s.Fees.MessFee
		case CategoryHostel:
			gross = s.Fees.HostelFee
		}
	} else {
		// Prior year: reconstruct gross from what was paid plus what remains.
		var remaining, aggDiscount Amount
		if category == CategoryTransport {
			remaining = s.Fees.LastYearTransportBalance
			aggDiscount = s.Fees.LastYearTransportDiscount
		} else {
			remaining = s.Fees.LastYearBalance
			aggDiscount = s.Fees.LastYearDiscount
		}
		gross = paid.Add(remaining).Add(aggDiscount)
		discount = aggDiscount
	}

	net := gross.Sub(discount)

	return CategorySummary{
		Category:         category,
		AcademicYear:     year,
		CurrentYear:      current,
		GrossDue:         gross,
		Discount:         discount,
		NetDue:           net,
		PreviousPayments: paid,
		PendingPayments:  pending,
		RemainingBefore:  net.Sub(paid).FloorZero(),
	}
}

// SummarizeAll returns the current-year summary for every category, in the
// Categories() order. Prior-year positions are reported through the
// aggregate buckets on the profile itself.
func SummarizeAll(s Student) []CategorySummary {
	out := make([]CategorySummary, 0, 4)
	for _, c := range Categories() {
		out = append(out, Summarize(s, c, s.AcademicYear))
	}
	return out
}

// paymentsWithStatus sums the amounts of transactions matching the
// (category, year) key in the given status. Cancelled transactions are inert
// for both paid and pending totals.
func paymentsWithStatus(txs []Transaction, category FeeCategory, year AcademicYear, status TransactionStatus) Amount {
	var sum Amount
	for i := range txs {
		t := &txs[i]
		if t.Category != category || t.AcademicYear != year {
			continue
		}
		if t.Status != status {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum
}
