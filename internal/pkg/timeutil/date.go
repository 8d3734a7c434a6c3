package timeutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD or DD MON")

// Date is a calendar day without time or zone. The zero value is "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts ISO "2024-03-05", a short label "05 MAR" (year taken
// from now) or a labelled date with year "05 MAR 2024".
func ParseDate(s string, now time.Time) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}

	if t, err := time.Parse(isoLayout, s); err == nil {
		return DateOf(t), nil
	}

	fields := strings.Fields(s)
	switch len(fields) {
	case 3:
		t, err := time.Parse("2 Jan 2006", strings.Join(fields, " "))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return DateOf(t), nil
	case 2:
		t, err := time.Parse("2 Jan", strings.Join(fields, " "))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		d := NewDate(now.Year(), t.Month(), t.Day())
		// 29 FEB in a non-leap year rolls over to March
		if d.Day != t.Day() {
			return Date{}, fmt.Errorf("%w: %q does not exist in %d", ErrInvalidDate, s, now.Year())
		}
		return d, nil
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ToCanonicalDate is the lenient form of ParseDate: unparseable input yields
// today and ok=false so the caller can log the substitution.
func ToCanonicalDate(s string, now time.Time) (d Date, ok bool) {
	d, err := ParseDate(s, now)
	if err != nil {
		return DateOf(now), false
	}
	return d, true
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(isoLayout)
}

// ShortLabel renders the day as "05 MAR".
func (d Date) ShortLabel() string {
	return strings.ToUpper(d.Time().Format("02 Jan"))
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// InRange reports whether from <= d <= to.
func (d Date) InRange(from, to Date) bool {
	return d.Compare(from) >= 0 && d.Compare(to) <= 0
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// StartOfWeek returns the Monday on or before d.
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*d = DateOf(t)
	return nil
}
