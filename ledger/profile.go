package ledger

// =============================================================================
// FEE PROFILE - Monetary buckets owned by a Student
// =============================================================================

// TuitionCharge is the current-year tuition-like charge.
// Invariant: Total is always AdmissionFee + TuitionFee.
type TuitionCharge struct {
	AdmissionFee Amount `json:"admission_fee"`
	TuitionFee   Amount `json:"tuition_fee"`
	Total        Amount `json:"total"`
}

// NewTuitionCharge builds a charge with the Total invariant maintained.
func NewTuitionCharge(admission, tuition Amount) TuitionCharge {
	return TuitionCharge{
		AdmissionFee: admission,
		TuitionFee:   tuition,
		Total:        admission.Add(tuition),
	}
}

// FeeProfile holds the per-student fee buckets.
//
// Current-year buckets (Tuition through HostelFee) describe this year's
// charges. They are never decremented by payments: current-year dues are
// derived on read from the transaction log.
//
// The LastYear* buckets aggregate unpaid charges from ALL years prior to the
// student's current one. School, mess and hostel share one bucket; transport
// has its own. These ARE decremented by completed prior-year payments, because
// once a year rolls over its original charges are no longer stored anywhere
// else.
type FeeProfile struct {
	Tuition         TuitionCharge `json:"tuition"`
	TuitionDiscount Amount        `json:"tuition_discount"`

	TransportFee      Amount `json:"transport_fee"`
	TransportDiscount Amount `json:"transport_discount"`

	MessFee   Amount `json:"mess_fee"`
	HostelFee Amount `json:"hostel_fee"`

	LastYearBalance  Amount `json:"last_year_balance"`
	LastYearDiscount Amount `json:"last_year_discount"`

	LastYearTransportBalance  Amount `json:"last_year_transport_balance"`
	LastYearTransportDiscount Amount `json:"last_year_transport_discount"`
}

// =============================================================================
// PROFILE DELTA - Describes the bucket mutation an operation performed
// =============================================================================

// Bucket names a mutable aggregate on the FeeProfile.
type Bucket string

const (
	// BucketNone means the operation changed no stored balance
	// (current-year dues are derived, not stored).
	BucketNone Bucket = ""
	// BucketLastYearBalance is the aggregated prior-year school/mess/hostel balance.
	BucketLastYearBalance Bucket = "last_year_balance"
	// BucketLastYearTransport is the aggregated prior-year transport balance.
	BucketLastYearTransport Bucket = "last_year_transport_balance"
)

// priorYearBucket returns the aggregate bucket a prior-year payment in the
// given category settles against.
func priorYearBucket(category FeeCategory) Bucket {
	if category == CategoryTransport {
		return BucketLastYearTransport
	}
	return BucketLastYearBalance
}

// FeeProfileDelta describes the single bucket change produced by a journal
// operation, for the caller to persist together with the transaction change.
// The zero value means "no stored balance changed".
type FeeProfileDelta struct {
	Bucket Bucket `json:"bucket"`
	// Change is signed: negative for payments settling a prior-year balance,
	// positive for reversals.
	Change Amount `json:"change"`
}

// IsZero reports whether the delta carries no change.
func (d FeeProfileDelta) IsZero() bool { return d.Bucket == BucketNone }

// apply mutates the named bucket, flooring at zero on the way down.
func (p *FeeProfile) apply(d FeeProfileDelta) {
	switch d.Bucket {
	case BucketLastYearBalance:
		p.LastYearBalance = p.LastYearBalance.Add(d.Change).FloorZero()
	case BucketLastYearTransport:
		p.LastYearTransportBalance = p.LastYearTransportBalance.Add(d.Change).FloorZero()
	}
}
