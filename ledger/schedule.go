package ledger

import "context"

// =============================================================================
// COLLABORATOR CONTRACTS - Consumed, not implemented, by the core
// =============================================================================

// FeeSchedule is the gross tuition charge for one (year, class, student type)
// cohort. The core never writes schedules.
type FeeSchedule struct {
	AdmissionFee Amount `json:"admission_fee"`
	TuitionFee   Amount `json:"tuition_fee"`
}

// Total returns admission + tuition.
func (f FeeSchedule) Total() Amount { return f.AdmissionFee.Add(f.TuitionFee) }

// ScheduleResult is a schedule lookup outcome. Year records which academic
// year actually served the schedule; Fallback is true when a provider
// answered from an earlier year than requested. The core always surfaces
// this to the caller so a downgraded lookup is never silent.
type ScheduleResult struct {
	Fees     FeeSchedule  `json:"fees"`
	Year     AcademicYear `json:"year"`
	Fallback bool         `json:"fallback"`
}

// FeeScheduleProvider resolves fee schedules. Implementations live outside
// the core (school configuration); a miss is reported as ErrScheduleNotFound.
//
// Lookups are an I/O boundary: the rollover engine completes every lookup it
// needs before mutating any state, so a failure aborts with no partial
// effect.
type FeeScheduleProvider interface {
	Lookup(ctx context.Context, year AcademicYear, class, studentType string) (ScheduleResult, error)
}

// AllowedValues are the valid sets used by payment validation and rollover,
// sourced from school configuration. The ledger checks membership only; what
// the sets contain is the school's business.
type AllowedValues struct {
	PaymentModes  []string
	Accounts      []string
	ClassSequence []string
}

// NextClass returns the class following the given one in the sequence.
// The last class has no successor (ErrNoNextClass); a class missing from the
// sequence entirely is a configuration problem (ErrValidation).
func (v AllowedValues) NextClass(class string) (string, error) {
	for i, c := range v.ClassSequence {
		if c != class {
			continue
		}
		if i+1 >= len(v.ClassSequence) {
			return "", &NoNextClassError{Class: class}
		}
		return v.ClassSequence[i+1], nil
	}
	return "", &ValidationError{Field: "class", Message: "not in configured class sequence"}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// AllowedValuesProvider supplies the configured valid sets.
type AllowedValuesProvider interface {
	AllowedValues() AllowedValues
}
