package currency

import (
	"fmt"
	"regexp"
	"time"
)

// #region date-parts

type dateParts struct {
	Year  int
	Month int
	Day   int
	ISO   string // YYYY-MM-DD
}

var datePrefix = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)

// parseDateParts extracts a calendar day from a stored date string. Accepts
// a YYYY-M-D prefix directly; anything else falls back to RFC 3339 parsing
// in UTC. Returns false for unusable values.
func parseDateParts(value string) (dateParts, bool) {
	if m := datePrefix.FindStringSubmatch(value); m != nil {
		year := atoi(m[1])
		month := atoi(m[2])
		day := atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return dateParts{}, false
		}
		return makeParts(year, month, day), true
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return dateParts{}, false
	}
	utc := parsed.UTC()
	return makeParts(utc.Year(), int(utc.Month()), utc.Day()), true
}

func makeParts(year, month, day int) dateParts {
	return dateParts{
		Year:  year,
		Month: month,
		Day:   day,
		ISO:   fmt.Sprintf("%04d-%02d-%02d", year, month, day),
	}
}

func timeParts(t time.Time) dateParts {
	utc := t.UTC()
	return makeParts(utc.Year(), int(utc.Month()), utc.Day())
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// #endregion date-parts

// #region quarters

func quarterOf(month int) int {
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	return (month-1)/3 + 1
}

func quarterID(year, quarter int) string {
	return fmt.Sprintf("%04d-Q%d", year, quarter)
}

// #endregion quarters

// #region unique-days

// uniqueDays counts distinct calendar days among entries matching the
// predicate. Unparseable dates are skipped.
func uniqueDays(entries []ActivityLogEntry, match func(dateParts) bool) int {
	seen := make(map[string]bool)
	for _, entry := range entries {
		parts, ok := parseDateParts(entry.Date)
		if !ok || !match(parts) {
			continue
		}
		seen[parts.ISO] = true
	}
	return len(seen)
}

// #endregion unique-days
