package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime parses the lossless text form produced by Time.String, plus the
// grammar's quoted time_literal forms (year, year-month, date, date-time):
// "1972", "1972-02", "1972-02-13", "1972-02-13T08:30:00" (a space is also
// accepted in place of 'T').
func ParseTime(s string) (Time, error) {
	switch s {
	case "@BOT":
		return BeginningOfTime, nil
	case "@EOT":
		return EndOfTime, nil
	case "@NOW":
		return NowSentinel, nil
	}

	datePart := s
	timePart := ""
	if idx := strings.IndexAny(s, "T "); idx >= 0 {
		datePart = s[:idx]
		timePart = s[idx+1:]
	}

	dateFields := strings.Split(datePart, "-")
	// A leading '-' (BCE year) would produce an empty first field; not
	// supported by the grammar, reject explicitly rather than misparse.
	if len(dateFields) == 0 || dateFields[0] == "" {
		return Time{}, fmt.Errorf("invalid time literal %q", s)
	}

	year, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return Time{}, fmt.Errorf("invalid time literal %q: %w", s, err)
	}

	if timePart == "" {
		switch len(dateFields) {
		case 1:
			return YearOnly(int32(year)), nil
		case 2:
			m, err := strconv.Atoi(dateFields[1])
			if err != nil || m < 1 || m > 12 {
				return Time{}, fmt.Errorf("invalid month in time literal %q", s)
			}
			return YearMonth(int32(year), uint8(m)), nil
		case 3:
			m, err1 := strconv.Atoi(dateFields[1])
			d, err2 := strconv.Atoi(dateFields[2])
			if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
				return Time{}, fmt.Errorf("invalid date in time literal %q", s)
			}
			return Date(int32(year), uint8(m), uint8(d)), nil
		default:
			return Time{}, fmt.Errorf("invalid time literal %q", s)
		}
	}

	if len(dateFields) != 3 {
		return Time{}, fmt.Errorf("invalid time literal %q", s)
	}
	m, err1 := strconv.Atoi(dateFields[1])
	d, err2 := strconv.Atoi(dateFields[2])
	if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return Time{}, fmt.Errorf("invalid date in time literal %q", s)
	}
	hmsFields := strings.Split(timePart, ":")
	if len(hmsFields) != 3 {
		return Time{}, fmt.Errorf("invalid time-of-day in time literal %q", s)
	}
	h, errh := strconv.Atoi(hmsFields[0])
	mi, errmi := strconv.Atoi(hmsFields[1])
	sec, errs := strconv.Atoi(hmsFields[2])
	if errh != nil || errmi != nil || errs != nil || h < 0 || h > 23 || mi < 0 || mi > 59 || sec < 0 || sec > 60 {
		return Time{}, fmt.Errorf("invalid time-of-day in time literal %q", s)
	}
	return DateTime(int32(year), uint8(m), uint8(d), uint8(h), uint8(mi), uint8(sec)), nil
}
