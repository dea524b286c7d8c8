package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

// Reason объясняет, почему окно недоступно.
type Reason string

const (
	ReasonOutsideHours Reason = "outside_operating_hours"
	ReasonConflict     Reason = "conflicting_appointment"
)

// SlotCheck - результат проверки одного окна.
type SlotCheck struct {
	Slot     models.TimeSlot
	Reason   Reason
	Message  string
	Conflict *models.Appointment
}

// Available сообщает, что окно свободно.
func (c SlotCheck) Available() bool {
	return c.Slot.IsAvailable
}

// CheckSlot проверяет окно [start, start+hours) по часам работы мастерской
// и существующим записям. Отмененные записи и записи на другие даты
// не учитываются.
func CheckSlot(w *models.Workshop, appointments []models.Appointment, date models.Date, start models.ClockTime, hours float64) SlotCheck {
	end := start.AddHours(hours)
	check := SlotCheck{Slot: models.TimeSlot{Date: date, Start: start, End: end}}

	open, ok := w.HoursOn(date.Weekday())
	if !ok {
		check.Reason = ReasonOutsideHours
		check.Message = fmt.Sprintf("workshop is closed on %s", date.Weekday())
		return check
	}
	if start < open.Open || end > open.Close {
		check.Reason = ReasonOutsideHours
		check.Message = fmt.Sprintf("requested window %s-%s is outside operating hours %s-%s", start, end, open.Open, open.Close)
		return check
	}

	for i := range appointments {
		a := &appointments[i]
		if a.Status == models.CancelledAppointment || !a.ScheduledDate.Equal(date.Time) {
			continue
		}
		if a.Overlaps(start, end) {
			check.Reason = ReasonConflict
			check.Message = fmt.Sprintf("requested window %s-%s conflicts with appointment %s-%s", start, end, a.StartTime, a.EndTime)
			check.Conflict = a
			return check
		}
	}

	check.Slot.IsAvailable = true
	check.Message = fmt.Sprintf("window %s-%s is available", start, end)
	return check
}

// ScanParams задает окно обхода календаря.
type ScanParams struct {
	From     time.Time
	Days     int
	Step     time.Duration
	Hours    float64
	Location *time.Location
}

// WindowScan - свободные окна мастерской и ожидание до первого из них.
type WindowScan struct {
	Slots     []models.TimeSlot
	FirstSlot *time.Time
	WaitHours *float64
}

// ScanWindow перебирает дни начиная с From и собирает свободные окна
// длительностью Hours с шагом Step от открытия мастерской. Окна,
// начинающиеся раньше From, пропускаются.
func ScanWindow(w *models.Workshop, appointments []models.Appointment, p ScanParams) WindowScan {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	step := models.ClockTime(p.Step / time.Minute)
	if step <= 0 {
		step = 60
	}

	var scan WindowScan
	day := models.DateOf(p.From, loc)
	for i := 0; i < p.Days; i++ {
		date := day.AddDays(i)
		open, ok := w.HoursOn(date.Weekday())
		if !ok {
			continue
		}
		for start := open.Open; start.AddHours(p.Hours) <= open.Close; start += step {
			at := date.At(start, loc)
			if at.Before(p.From) {
				continue
			}
			check := CheckSlot(w, appointments, date, start, p.Hours)
			if !check.Available() {
				continue
			}
			scan.Slots = append(scan.Slots, check.Slot)
			if scan.FirstSlot == nil {
				wait := roundTo(at.Sub(p.From).Hours(), 2)
				scan.FirstSlot = &at
				scan.WaitHours = &wait
			}
		}
	}
	return scan
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
