package models

import "time"

// OperatingHours - часы работы мастерской в один день недели.
type OperatingHours struct {
	Weekday time.Weekday `json:"weekday"`
	Open    ClockTime    `json:"open"`
	Close   ClockTime    `json:"close"`
}

// Workshop представляет мастерскую.
type Workshop struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Coordinates *Coordinates     `json:"coordinates,omitempty"`
	Hours       []OperatingHours `json:"hours"`
}

// HoursOn возвращает часы работы на день недели, false если выходной.
func (w *Workshop) HoursOn(day time.Weekday) (OperatingHours, bool) {
	for _, h := range w.Hours {
		if h.Weekday == day {
			return h, true
		}
	}
	return OperatingHours{}, false
}

// AvailabilityLevel - словесная оценка доступности мастерской.
type AvailabilityLevel string

const (
	ExcellentAvailability AvailabilityLevel = "excellent"
	GoodAvailability      AvailabilityLevel = "good"
	LimitedAvailability   AvailabilityLevel = "limited"
	PoorAvailability      AvailabilityLevel = "poor"
)

// WorkshopAvailability - результат сравнения доступности одной мастерской.
type WorkshopAvailability struct {
	WorkshopID          string            `json:"workshopId"`
	WorkshopName        string            `json:"workshopName"`
	AvailableSlotsCount int               `json:"availableSlotsCount"`
	AverageWaitTime     *float64          `json:"averageWaitTime"`
	FirstSlot           *time.Time        `json:"firstSlot"`
	AvailabilityScore   int               `json:"availabilityScore"`
	AvailabilityLevel   AvailabilityLevel `json:"availabilityLevel"`
	DistanceKm          *float64          `json:"distanceKm"`
}

// CompareInput представляет структуру запроса на сравнение мастерских.
type CompareInput struct {
	WorkshopIDs      []string     `json:"workshopIds" validate:"required,min=1,max=10,dive,required"`
	Duration         float64      `json:"duration"`
	PreferredDate    *Date        `json:"preferredDate"`
	DaysWindow       int          `json:"daysWindow"`
	CustomerLocation *Coordinates `json:"customerLocation" validate:"omitempty"`
}

// SlotCheckResult - ответ на проверку окна.
type SlotCheckResult struct {
	WorkshopID string   `json:"workshopId"`
	Slot       TimeSlot `json:"slot"`
	Available  bool     `json:"available"`
	Reason     string   `json:"reason,omitempty"`
	Message    string   `json:"message"`
}

// EstimateInput представляет структуру запроса на оценку длительности.
type EstimateInput struct {
	ServiceCategories []ServiceCategory `json:"serviceCategories" validate:"required,min=1,max=12,dive,required"`
}

// EstimateResult - оценка длительности работ в часах.
type EstimateResult struct {
	DurationHours float64 `json:"durationHours"`
}
