// Package notify доставляет уведомления о записях на ремонт. Доставка
// best-effort: вызывающий логирует ошибку и продолжает работу.
package notify

//go:generate mockgen -source=notify.go -destination=mocks/notifier_mock.go -package=mock_notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

type EventType string

const (
	AppointmentBooked    EventType = "appointment.booked"
	AppointmentCancelled EventType = "appointment.cancelled"
)

// Event - уведомление об изменении записи.
type Event struct {
	Type        EventType          `json:"type"`
	Appointment models.Appointment `json:"appointment"`
	At          time.Time          `json:"at"`
}

// Notifier - интерфейс доставки уведомлений.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier пишет уведомления в лог.
type LogNotifier struct {
	Logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	a := event.Appointment
	n.Logger.Printf("%s: appointment %s workshop %s on %s %s-%s", event.Type, a.ID, a.WorkshopID, a.ScheduledDate, a.StartTime, a.EndTime)
	return nil
}

// WebhookNotifier отправляет уведомления POST-запросом в формате JSON.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

// NewWebhookNotifier создает WebhookNotifier с таймаутом на запрос.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return models.Errorf(models.KindDependencyFailure, "webhook delivery failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Errorf(models.KindDependencyFailure, "webhook responded with %d", resp.StatusCode)
	}
	return nil
}
