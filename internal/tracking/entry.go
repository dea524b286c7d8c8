package tracking

import (
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

// Status - состояние отслеживаемого запроса в клиентском кэше.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusViewed    Status = "viewed"
	StatusQuoted    Status = "quoted"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusFailed    Status = "failed"
)

var knownStatuses = map[Status]bool{
	StatusSubmitted: true,
	StatusViewed:    true,
	StatusQuoted:    true,
	StatusAccepted:  true,
	StatusRejected:  true,
	StatusExpired:   true,
	StatusFailed:    true,
}

// IsActive сообщает, что запрос еще ждет решения и повторная отправка запрещена.
func (s Status) IsActive() bool {
	return s == StatusSubmitted || s == StatusViewed || s == StatusQuoted
}

// IsTerminal - решение по запросу принято на сервере и больше не меняется.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusExpired
}

// Key - составной ключ записи: заявка и мастерская.
type Key struct {
	RequestID  string `json:"requestId"`
	WorkshopID string `json:"workshopId"`
}

// Valid сообщает, что обе части ключа заданы.
func (k Key) Valid() bool {
	return k.RequestID != "" && k.WorkshopID != ""
}

func (k Key) less(other Key) bool {
	if k.RequestID != other.RequestID {
		return k.RequestID < other.RequestID
	}
	return k.WorkshopID < other.WorkshopID
}

// Entry - запись об отправленном запросе цены.
type Entry struct {
	RequestID       string            `json:"requestId"`
	WorkshopID      string            `json:"workshopId"`
	Status          Status            `json:"status"`
	WorkshopName    string            `json:"workshopName,omitempty"`
	LinkedRequestID string            `json:"linkedRequestId,omitempty"`
	BidID           string            `json:"bidId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	RetryCount      int               `json:"retryCount"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Key возвращает ключ записи.
func (e Entry) Key() Key {
	return Key{RequestID: e.RequestID, WorkshopID: e.WorkshopID}
}

func (e Entry) clone() Entry {
	if e.Metadata != nil {
		meta := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		e.Metadata = meta
	}
	return e
}

// FromServer переводит серверное состояние ставки в запись кэша.
func FromServer(q models.TrackedQuote) Entry {
	return Entry{
		RequestID:       q.RequestID,
		WorkshopID:      q.WorkshopID,
		Status:          Status(q.Status),
		WorkshopName:    q.WorkshopName,
		LinkedRequestID: q.RequestID,
		BidID:           q.BidID,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

// Selection - выбранные пользователем заявка и автомобиль, переживают перезапуск.
type Selection struct {
	RequestID string `json:"requestId,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
}
