package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Month is a calendar month. Its integer value is the calendar ordinal
// (January=1), so comparing two Months compares calendar position.
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Months lists every month in calendar order.
func Months() []Month {
	out := make([]Month, 0, 12)
	for m := January; m <= December; m++ {
		out = append(out, m)
	}
	return out
}

// Valid reports whether m is January through December.
func (m Month) Valid() bool { return m >= January && m <= December }

func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// ParseMonth accepts full English month names, case-insensitively.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for m := January; m <= December; m++ {
		if strings.EqualFold(s, monthNames[m]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func (m Month) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("marshal invalid month %d", int(m))
	}
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("month must be a string: %w", err)
	}
	v, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Weekday is a day of the week ordered Monday (1) through Sunday (7).
// It deliberately does not reuse time.Weekday, which starts on Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Weekdays lists every weekday Monday through Sunday.
func Weekdays() []Weekday {
	out := make([]Weekday, 0, 7)
	for d := Monday; d <= Sunday; d++ {
		out = append(out, d)
	}
	return out
}

// Valid reports whether d is Monday through Sunday.
func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday matches a full weekday name case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for d := Monday; d <= Sunday; d++ {
		if strings.EqualFold(s, weekdayNames[d]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("marshal invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("weekday must be a string: %w", err)
	}
	v, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
