package cloudevents

import "time"

// TimeFormat is the CloudEvents time format.
const TimeFormat = time.RFC3339Nano

// ParseTime parses RFC3339 timestamps with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatTime formats t in UTC, empty for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}
