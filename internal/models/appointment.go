package models

import "time"

type (
	AppointmentStatus string // Статус записи на ремонт
	LocationKind      string // Где выполняются работы
)

const (
	ScheduledAppointment AppointmentStatus = "scheduled"
	ConfirmedAppointment AppointmentStatus = "confirmed"
	CompletedAppointment AppointmentStatus = "completed"
	CancelledAppointment AppointmentStatus = "cancelled"

	AtWorkshop LocationKind = "workshop" // Клиент привозит автомобиль
	Mobile     LocationKind = "mobile"   // Выездной ремонт
)

// ServiceLocation описывает место оказания услуги.
type ServiceLocation struct {
	Kind    LocationKind `json:"kind" validate:"omitempty,oneof=workshop mobile"`
	Address string       `json:"address,omitempty" validate:"max=300"`
}

// Appointment представляет запись в календаре мастерской.
type Appointment struct {
	ID             string            `json:"id"`
	RequestID      string            `json:"requestId"`
	BidID          string            `json:"bidId"`
	CustomerID     string            `json:"customerId"`
	WorkshopID     string            `json:"workshopId"`
	ScheduledDate  Date              `json:"scheduledDate"`
	StartTime      ClockTime         `json:"startTime"`
	EndTime        ClockTime         `json:"endTime"`
	EstimatedHours float64           `json:"estimatedHours"`
	Status         AppointmentStatus `json:"status"`
	Location       ServiceLocation   `json:"location"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Overlaps проверяет пересечение полуинтервалов [start, end).
func (a *Appointment) Overlaps(start, end ClockTime) bool {
	return a.StartTime < end && start < a.EndTime
}

// AppointmentInput представляет структуру запроса на создание записи.
type AppointmentInput struct {
	RequestID     string          `json:"requestId" validate:"required"`
	AcceptedBidID string          `json:"acceptedBidId" validate:"required"`
	Date          Date            `json:"date"`
	StartTime     ClockTime       `json:"startTime"`
	Location      ServiceLocation `json:"location"`
}

// TimeSlot - вычисляемое окно в календаре мастерской.
type TimeSlot struct {
	Date        Date      `json:"date"`
	Start       ClockTime `json:"start"`
	End         ClockTime `json:"end"`
	IsAvailable bool      `json:"isAvailable"`
}
