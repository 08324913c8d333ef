package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/brightpath/fee-engine/ledger"
)

// =============================================================================
// FALLBACK PROVIDER - Most-recent-prior-year schedule serving
// =============================================================================

// maxFallbackYears bounds how far back a fallback lookup walks. Schools keep
// only a few priced years around; anything older is a configuration error.
const maxFallbackYears = 5

// Fallback wraps a provider so a missing schedule is served from the most
// recent earlier year that has one. The result carries Fallback=true and the
// year that actually served it, and the downgrade is logged at WARN; the
// caller decides whether that is acceptable.
type Fallback struct {
	inner ledger.FeeScheduleProvider
	log   *slog.Logger
}

var _ ledger.FeeScheduleProvider = (*Fallback)(nil)

// WithFallback wraps the provider. A nil logger disables the WARN logs.
func WithFallback(inner ledger.FeeScheduleProvider, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fallback{inner: inner, log: log}
}

func (f *Fallback) Lookup(ctx context.Context, year ledger.AcademicYear, class, studentType string) (ledger.ScheduleResult, error) {
	res, err := f.inner.Lookup(ctx, year, class, studentType)
	if err == nil || !errors.Is(err, ledger.ErrScheduleNotFound) {
		return res, err
	}

	candidate := year
	for i := 0; i < maxFallbackYears; i++ {
		candidate = previousYear(candidate)
		res, err := f.inner.Lookup(ctx, candidate, class, studentType)
		if errors.Is(err, ledger.ErrScheduleNotFound) {
			continue
		}
		if err != nil {
			return ledger.ScheduleResult{}, err
		}
		f.log.Warn("fee schedule served from fallback year",
			"requested_year", year, "served_year", candidate,
			"class", class, "student_type", studentType)
		res.Fallback = true
		return res, nil
	}

	return ledger.ScheduleResult{}, err
}

// previousYear is the inverse of AcademicYear.Next.
// "25-26" -> "24-25"; the century wrap "00-01" -> "99-00".
func previousYear(y ledger.AcademicYear) ledger.AcademicYear {
	return shiftYear(y, -1)
}

func shiftYear(y ledger.AcademicYear, delta int) ledger.AcademicYear {
	s := string(y)
	start := int(s[0]-'0')*10 + int(s[1]-'0')
	start = (start + delta + 100) % 100
	end := (start + 1) % 100
	return ledger.AcademicYear(twoDigits(start) + "-" + twoDigits(end))
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
