package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date, stored as a Postgres
// TIME column. The date components are zeroed and the zone is UTC.
type TimeOfDay struct {
	time.Time
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var t TimeOfDay
	return t, t.parse(value)
}

func (t *TimeOfDay) parse(value string) error {
	value = strings.TrimSpace(value)
	if len(value) == 5 {
		value += ":00"
	}
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	t.Time = parsed
	return nil
}

// Minutes returns the offset from midnight in whole minutes.
func (t TimeOfDay) Minutes() int {
	return t.Hour()*60 + t.Minute()
}

// At anchors the time of day on the given date in UTC.
func (t TimeOfDay) At(day Date) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (t *TimeOfDay) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		t.Time = time.Date(0, 1, 1, v.Hour(), v.Minute(), v.Second(), 0, time.UTC)
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into TimeOfDay", value)
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.Format("15:04:05"), nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format("15:04:05"))
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.parse(s)
}

// Date is a calendar day without a time component, stored as a Postgres
// DATE column and rendered as "2006-01-02". Internally it is the UTC
// midnight of that day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return Date{Time: parsed}, nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// StartOfDay returns the UTC midnight timestamp of the day.
func (d Date) StartOfDay() time.Time {
	return d.Time
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", value)
}

func (d Date) Value() (driver.Value, error) {
	return d.Format("2006-01-02"), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
