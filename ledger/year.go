package ledger

import (
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// ACADEMIC YEAR - "YY-YY" contiguous school-year identifier
// =============================================================================

// AcademicYear identifies a school year in "YY-YY" form, e.g. "24-25".
// The second half is always the first half plus one (mod 100).
type AcademicYear string

var yearPattern = regexp.MustCompile(`^\d{2}-\d{2}$`)

// ParseAcademicYear validates the "YY-YY" format and the contiguity of the
// two halves. "24-25" is valid; "24-26" and "2024-25" are not.
func ParseAcademicYear(s string) (AcademicYear, error) {
	y := AcademicYear(s)
	if !y.Valid() {
		return "", fmt.Errorf("invalid academic year %q: want contiguous YY-YY", s)
	}
	return y, nil
}

// Valid reports whether the year is well-formed.
func (y AcademicYear) Valid() bool {
	if !yearPattern.MatchString(string(y)) {
		return false
	}
	start, end := y.halves()
	return (start+1)%100 == end
}

// Next returns the immediately following academic year.
// "24-25".Next() == "25-26"; the century wrap "99-00".Next() == "00-01".
func (y AcademicYear) Next() AcademicYear {
	start, end := y.halves()
	return AcademicYear(fmt.Sprintf("%02d-%02d", end, (start+2)%100))
}

func (y AcademicYear) String() string { return string(y) }

func (y AcademicYear) halves() (int, int) {
	s := string(y)
	start, _ := strconv.Atoi(s[:2])
	end, _ := strconv.Atoi(s[3:])
	return start, end
}
