package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout - формат календарной даты в API.
const DateLayout = "2006-01-02"

// ClockTime - время суток в минутах от полуночи, в API "HH:MM".
type ClockTime int

// ParseClockTime разбирает строку формата "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, errH := strconv.Atoi(s[:2])
	m, errM := strconv.Atoi(s[3:])
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// AddHours сдвигает время на дробное число часов с точностью до минуты.
func (c ClockTime) AddHours(hours float64) ClockTime {
	return c + ClockTime(math.Round(hours*60))
}

// Hours возвращает время суток в часах.
func (c ClockTime) Hours() float64 {
	return float64(c) / 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Date - календарная дата без времени.
type Date struct {
	time.Time
}

// NewDate создает дату в UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf отбрасывает время суток, сохраняя календарный день в loc.
func DateOf(t time.Time, loc *time.Location) Date {
	t = t.In(loc)
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate разбирает дату формата YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// AddDays сдвигает дату на n дней.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// At возвращает момент времени c в день d в часовом поясе loc.
func (d Date) At(c ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(time.Duration(c) * time.Minute)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON перекрывает метод встроенного time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("invalid date %s, expected string", b)
	}
	return d.UnmarshalText([]byte(s))
}
