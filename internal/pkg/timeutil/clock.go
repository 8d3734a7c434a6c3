package timeutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTime = errors.New("invalid time, use HH:MM")

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock parses a 24h "HH:MM" value.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Empty intervals never overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	if aStart >= aEnd || bStart >= bEnd {
		return false
	}
	return aStart < bEnd && aEnd > bStart
}

// To12h converts "13:05" to "01:05 PM".
func To12h(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	t := time.Date(0, 1, 1, int(c)/60, int(c)%60, 0, 0, time.UTC)
	return t.Format("03:04 PM"), nil
}

// To24h converts "1:05 pm" or "01:05PM" to "13:05".
func To24h(s string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	t, err := time.Parse("3:04PM", normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Format("15:04"), nil
}
