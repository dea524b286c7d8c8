package models

import "time"

type (
	RequestStatus   string // Статус заявки на ремонт
	ServiceCategory string // Категория работ
)

const (
	DraftRequest     RequestStatus = "draft"     // Заявка создана, не опубликована
	SubmittedRequest RequestStatus = "submitted" // Заявка опубликована, ставок нет
	QuotedRequest    RequestStatus = "quoted"    // Есть хотя бы одна ставка
	AcceptedRequest  RequestStatus = "accepted"  // Клиент принял ставку
	CompletedRequest RequestStatus = "completed" // Работы выполнены
	CancelledRequest RequestStatus = "cancelled" // Заявка отменена
	ExpiredRequest   RequestStatus = "expired"   // Истек срок приема ставок

	Inspection   ServiceCategory = "inspection"
	Diagnostic   ServiceCategory = "diagnostic"
	OilChange    ServiceCategory = "oil_change"
	Tires        ServiceCategory = "tires"
	Brakes       ServiceCategory = "brakes"
	Electrical   ServiceCategory = "electrical"
	AirCon       ServiceCategory = "air_conditioning"
	Suspension   ServiceCategory = "suspension"
	Transmission ServiceCategory = "transmission"
	Bodywork     ServiceCategory = "bodywork"
	Paint        ServiceCategory = "paint"
	Engine       ServiceCategory = "engine"
)

// KnownCategories - допустимые категории работ.
var KnownCategories = map[ServiceCategory]bool{
	Inspection:   true,
	Diagnostic:   true,
	OilChange:    true,
	Tires:        true,
	Brakes:       true,
	Electrical:   true,
	AirCon:       true,
	Suspension:   true,
	Transmission: true,
	Bodywork:     true,
	Paint:        true,
	Engine:       true,
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s RequestStatus) IsTerminal() bool {
	return s == CompletedRequest || s == CancelledRequest || s == ExpiredRequest
}

// AcceptsBids сообщает, что заявка открыта для ставок.
func (s RequestStatus) AcceptsBids() bool {
	return s == SubmittedRequest || s == QuotedRequest
}

// Vehicle описывает автомобиль клиента.
type Vehicle struct {
	Make  string `json:"make" validate:"required,max=50"`
	Model string `json:"model" validate:"required,max=50"`
	Year  int    `json:"year" validate:"omitempty,min=1950,max=2100"`
	Plate string `json:"plate,omitempty" validate:"max=20"`
}

// Coordinates - географические координаты в градусах.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Request представляет заявку клиента на ремонт.
type Request struct {
	ID                string            `json:"id"`
	CustomerID        string            `json:"customerId"`
	Vehicle           Vehicle           `json:"vehicle"`
	ServiceCategories []ServiceCategory `json:"serviceCategories"`
	Description       string            `json:"description,omitempty"`
	Location          *Coordinates      `json:"location,omitempty"`
	Status            RequestStatus     `json:"status"`
	ExpiresAt         *time.Time        `json:"expiresAt,omitempty"`
	AcceptedBidID     *string           `json:"acceptedBidId,omitempty"`
	Bids              []Bid             `json:"-"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// IsExpired сообщает, что срок приема ставок истек к моменту now.
func (r *Request) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// BidByID ищет ставку заявки по идентификатору.
func (r *Request) BidByID(bidID string) *Bid {
	for i := range r.Bids {
		if r.Bids[i].ID == bidID {
			return &r.Bids[i]
		}
	}
	return nil
}

// BidByWorkshop ищет ставку мастерской.
func (r *Request) BidByWorkshop(workshopID string) *Bid {
	for i := range r.Bids {
		if r.Bids[i].WorkshopID == workshopID {
			return &r.Bids[i]
		}
	}
	return nil
}

// RequestInput представляет структуру запроса на создание заявки.
type RequestInput struct {
	Vehicle           Vehicle           `json:"vehicle"`
	ServiceCategories []ServiceCategory `json:"serviceCategories" validate:"required,min=1,max=12,dive,required"`
	Description       string            `json:"description" validate:"max=2000"`
	Location          *Coordinates      `json:"location" validate:"omitempty"`
}
