package aggregation

import "time"

// isoLayout renders UTC timestamps with millisecond precision
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ISOTime renders t as an ISO-8601 string. Zero or unrepresentable times render as now.
func ISOTime(t, now time.Time) string {
	if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
		t = now
	}
	return t.UTC().Format(isoLayout)
}
