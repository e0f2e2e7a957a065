package certificate

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// dayMonthYearRe matches D/M/YYYY and DD-MM-YYYY style dates
var dayMonthYearRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// genericDateLayouts are tried in order for free-form inputs once the
// day-month-year forms have been ruled out
var genericDateLayouts = []string{
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"01/02/2006",
	"2006/01/02",
	time.RFC3339,
}

// FormatDate normalizes a heterogeneous date string to YYYY-MM-DD, or ""
// when it cannot be parsed.
//
// Day-month-year forms take priority over the generic parser because the
// source documents originate from a non-US locale: "05/03/2024" is the 5th
// of March, and must never be read as May 3rd. Invalid calendar dates such
// as 31/02 are rejected rather than rolled over into the next month.
func FormatDate(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t.Format(isoDateLayout)
	}

	if m := dayMonthYearRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 && year > 1000 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes overflow (Feb 30 becomes Mar 1); a changed
			// day-of-month means the input was not a real calendar date
			if t.Day() == day {
				return t.Format(isoDateLayout)
			}
		}
		slog.Debug("unparseable date", "input", input)
		return ""
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDateLayout)
		}
	}

	slog.Debug("unparseable date", "input", input)
	return ""
}
