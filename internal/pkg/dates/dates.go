package dates

import (
	"errors"
	"strings"
	"time"
)

// Layout is the calendar-date form used in request bodies and GeoJSON properties.
const Layout = "2006-01-02"

var ErrEmpty = errors.New("date is empty")

// Parse accepts a calendar date or an RFC 3339 timestamp and returns it in UTC.
func Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
