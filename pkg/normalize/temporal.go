package normalize

import (
	"fmt"
	"strings"
	"time"
)

// TimeKind selects the ISO-8601 rendering of a time value.
type TimeKind uint8

// Time renderings.
const (
	Timestamp TimeKind = iota
	TimestampTZ
	Date
	TimeOfDay
)

// Layouts for zone-less values. Fractional seconds are printed only when
// present.
const (
	LayoutTimestamp = "2006-01-02T15:04:05.999999999"
	LayoutDate      = "2006-01-02"
	LayoutTime      = "15:04:05.999999999"
)

// FormatTime renders t for the given kind. Zoned timestamps are normalized
// to UTC.
func FormatTime(t time.Time, kind TimeKind) string {
	switch kind {
	case TimestampTZ:
		return t.UTC().Format(time.RFC3339Nano)
	case Date:
		return t.Format(LayoutDate)
	case TimeOfDay:
		return t.Format(LayoutTime)
	default:
		return t.Format(LayoutTimestamp)
	}
}

// FormatMicros renders a microseconds-since-midnight time of day. It does not
// wrap, so PostgreSQL's 24:00:00 stays 24:00:00.
func FormatMicros(us int64) string {
	h := us / 3_600_000_000
	us %= 3_600_000_000
	m := us / 60_000_000
	us %= 60_000_000
	s := us / 1_000_000
	frac := us % 1_000_000

	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if frac != 0 {
		out += "." + strings.TrimRight(fmt.Sprintf("%06d", frac), "0")
	}
	return out
}
