package util

import "time"

const ISO8601Format = "2006-01-02T15:04:05Z"

// TimeToISO8601Str renders t in UTC; the zero time renders as "".
func TimeToISO8601Str(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISO8601Format)
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Format, s)
}
