/*
Package schedule loads school configuration and serves fee schedules.

PURPOSE:
  Converts a JSON school configuration document into the two collaborators
  the ledger core consumes: a FeeScheduleProvider (who pays what, per year,
  class and student type) and an AllowedValuesProvider (payment modes,
  accounts, class sequence). School staff can reprice a year or add a cohort
  without code changes.

JSON SCHEMA:
  {
    "base_student_type": "general",
    "class_sequence": ["nursery", "lkg", "ukg", "1", "2", ...],
    "payment_modes": ["cash", "cheque", "online"],
    "accounts": ["school", "transport"],
    "fees": [
      {
        "academic_year": "24-25",
        "class": "1",
        "student_type": "general",
        "admission_fee": 500000,
        "tuition_fee": 1200000
      }
    ]
  }

  Amounts are in minor currency units.

FALLBACK:
  WithFallback wraps a provider so a missing (year, class, type) entry is
  served from the most recent earlier year that has one, marked Fallback=true
  and logged at WARN. Rollovers surface the downgrade to the caller; without
  the wrapper a miss is a hard MissingFeeScheduleError.

SEE ALSO:
  - ledger/schedule.go: the interfaces this package implements
*/
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/brightpath/fee-engine/ledger"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// FeeEntryJSON is one (year, class, student type) schedule row.
type FeeEntryJSON struct {
	AcademicYear string `json:"academic_year"`
	Class        string `json:"class"`
	StudentType  string `json:"student_type"`
	AdmissionFee int64  `json:"admission_fee"`
	TuitionFee   int64  `json:"tuition_fee"`
}

// ConfigJSON is the school configuration document.
type ConfigJSON struct {
	BaseStudentType string         `json:"base_student_type"`
	ClassSequence   []string       `json:"class_sequence"`
	PaymentModes    []string       `json:"payment_modes"`
	Accounts        []string       `json:"accounts"`
	Fees            []FeeEntryJSON `json:"fees"`
}

// =============================================================================
// CONFIG - Parsed, validated school configuration
// =============================================================================

type cohortKey struct {
	Year        ledger.AcademicYear
	Class       string
	StudentType string
}

// Config is a parsed school configuration. It implements
// ledger.AllowedValuesProvider and builds the schedule provider.
type Config struct {
	BaseStudentType string

	allowed ledger.AllowedValues
	fees    map[cohortKey]ledger.FeeSchedule
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read school config: %w", err)
	}
	return Parse(raw)
}

// Parse validates a configuration document.
func Parse(raw []byte) (*Config, error) {
	var doc ConfigJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse school config: %w", err)
	}

	if len(doc.ClassSequence) == 0 {
		return nil, fmt.Errorf("school config: class_sequence is required")
	}
	if len(doc.PaymentModes) == 0 {
		return nil, fmt.Errorf("school config: payment_modes is required")
	}
	if len(doc.Accounts) == 0 {
		return nil, fmt.Errorf("school config: accounts is required")
	}
	if doc.BaseStudentType == "" {
		return nil, fmt.Errorf("school config: base_student_type is required")
	}

	cfg := &Config{
		BaseStudentType: doc.BaseStudentType,
		allowed: ledger.AllowedValues{
			PaymentModes:  doc.PaymentModes,
			Accounts:      doc.Accounts,
			ClassSequence: doc.ClassSequence,
		},
		fees: make(map[cohortKey]ledger.FeeSchedule, len(doc.Fees)),
	}

	for i, e := range doc.Fees {
		year, err := ledger.ParseAcademicYear(e.AcademicYear)
		if err != nil {
			return nil, fmt.Errorf("school config: fees[%d]: %w", i, err)
		}
		if e.Class == "" || e.StudentType == "" {
			return nil, fmt.Errorf("school config: fees[%d]: class and student_type are required", i)
		}
		if e.AdmissionFee < 0 || e.TuitionFee < 0 {
			return nil, fmt.Errorf("school config: fees[%d]: amounts must not be negative", i)
		}
		k := cohortKey{Year: year, Class: e.Class, StudentType: e.StudentType}
		if _, dup := cfg.fees[k]; dup {
			return nil, fmt.Errorf("school config: fees[%d]: duplicate entry for %s/%s/%s",
				i, e.AcademicYear, e.Class, e.StudentType)
		}
		cfg.fees[k] = ledger.FeeSchedule{
			AdmissionFee: ledger.NewAmount(e.AdmissionFee),
			TuitionFee:   ledger.NewAmount(e.TuitionFee),
		}
	}

	return cfg, nil
}

// AllowedValues implements ledger.AllowedValuesProvider.
func (c *Config) AllowedValues() ledger.AllowedValues { return c.allowed }

// Provider returns the exact-match schedule provider over this config.
func (c *Config) Provider() *StaticProvider { return &StaticProvider{cfg: c} }

// =============================================================================
// STATIC PROVIDER - Exact (year, class, type) lookup
// =============================================================================

// StaticProvider serves schedules from a parsed Config. A miss is
// ledger.ErrScheduleNotFound; wrap with WithFallback for prior-year serving.
type StaticProvider struct {
	cfg *Config
}

var _ ledger.FeeScheduleProvider = (*StaticProvider)(nil)

func (p *StaticProvider) Lookup(_ context.Context, year ledger.AcademicYear, class, studentType string) (ledger.ScheduleResult, error) {
	fees, ok := p.cfg.fees[cohortKey{Year: year, Class: class, StudentType: studentType}]
	if !ok {
		return ledger.ScheduleResult{}, fmt.Errorf("%w: %s/%s/%s", ledger.ErrScheduleNotFound, year, class, studentType)
	}
	return ledger.ScheduleResult{Fees: fees, Year: year}, nil
}
