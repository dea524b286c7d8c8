package models

import (
	"regexp"
	"time"
)

type BidStatus string // Статус ставки

const (
	PendingBid   BidStatus = "pending"   // Черновик ставки мастерской
	SubmittedBid BidStatus = "submitted" // Ставка отправлена клиенту
	ViewedBid    BidStatus = "viewed"    // Клиент просмотрел ставку
	QuotedBid    BidStatus = "quoted"    // Мастерская подтвердила итоговую цену
	AcceptedBid  BidStatus = "accepted"  // Ставка принята
	DeclinedBid  BidStatus = "declined"  // Ставка отклонена
	ExpiredBid   BidStatus = "expired"   // Заявка истекла раньше решения
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency проверяет код валюты ISO-4217.
func ValidCurrency(c string) bool {
	return currencyRe.MatchString(c)
}

// IsOpen сообщает, что ставка еще участвует в конкурсе.
func (s BidStatus) IsOpen() bool {
	switch s {
	case PendingBid, SubmittedBid, ViewedBid, QuotedBid:
		return true
	}
	return false
}

// Acceptable сообщает, что ставку можно принять.
func (s BidStatus) Acceptable() bool {
	return s == SubmittedBid || s == QuotedBid
}

// VisibleToCustomer - статусы, которые клиент видит в списке ставок.
func (s BidStatus) VisibleToCustomer() bool {
	return s != PendingBid && s != ExpiredBid
}

// Bid представляет ставку мастерской по заявке.
type Bid struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"requestId"`
	WorkshopID string    `json:"workshopId"`
	Status     BidStatus `json:"status"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	ValidUntil time.Time `json:"validUntil"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BidInput представляет структуру запроса на отправку ставки.
type BidInput struct {
	WorkshopID string    `json:"workshopId"`
	Amount     float64   `json:"amount" validate:"gt=0"`
	Currency   string    `json:"currency" validate:"required,len=3,uppercase"`
	ValidUntil time.Time `json:"validUntil" validate:"required"`
	Note       string    `json:"note" validate:"max=1000"`
}

// BidRevision представляет структуру запроса на итоговую цену.
type BidRevision struct {
	Amount     float64    `json:"amount" validate:"gt=0"`
	ValidUntil *time.Time `json:"validUntil"`
}

// WorkshopView - обезличенная сводка конкурса для мастерской.
type WorkshopView struct {
	RequestID       string        `json:"requestId"`
	RequestStatus   RequestStatus `json:"requestStatus"`
	OwnBid          *Bid          `json:"ownBid"`
	CompetitorCount int           `json:"competitorCount"`
	SubmittedCount  int           `json:"submittedCount"`
	Won             *bool         `json:"won,omitempty"`
}

// CustomerView - полный список ставок для владельца заявки.
type CustomerView struct {
	Request Request `json:"request"`
	Bids    []Bid   `json:"bids"`
}

// CompetitionView - результат просмотра конкурса, заполнено одно из полей.
type CompetitionView struct {
	Workshop *WorkshopView `json:"workshop,omitempty"`
	Customer *CustomerView `json:"customer,omitempty"`
}

// TrackedQuote - серверное состояние пары (заявка, мастерская) для клиентского кэша.
type TrackedQuote struct {
	RequestID    string    `json:"requestId"`
	WorkshopID   string    `json:"workshopId"`
	WorkshopName string    `json:"workshopName"`
	BidID        string    `json:"bidId"`
	Status       string    `json:"status"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
