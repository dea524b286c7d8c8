package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mock_repository

// RequestTransition - условный перевод заявки из From в To.
type RequestTransition struct {
	RequestID string
	From      models.RequestStatus
	To        models.RequestStatus
	ExpiresAt *time.Time       // Новый срок приема ставок, nil - не менять
	CloseBids models.BidStatus // Статус для открытых ставок, пусто - не трогать
	At        time.Time
}

// BidTransition - условный перевод ставки с опциональной новой ценой.
type BidTransition struct {
	RequestID  string
	BidID      string
	From       []models.BidStatus
	To         models.BidStatus
	Amount     *float64
	ValidUntil *time.Time
	At         time.Time
}

// OpenRequestsFilter - параметры выборки заявок, открытых для ставок.
type OpenRequestsFilter struct {
	Categories []string
	Limit      int
	Offset     int
	Now        time.Time
}

// RequestRepository - интерфейс для работы с заявками и ставками.
type RequestRepository interface {
	CreateRequest(ctx context.Context, req *models.Request) error
	GetRequest(ctx context.Context, requestID string) (*models.Request, error)
	TransitionRequest(ctx context.Context, t RequestTransition) (*models.Request, error)
	ListOpenRequests(ctx context.Context, f OpenRequestsFilter) ([]models.Request, error)
	ListCustomerRequests(ctx context.Context, customerID string) ([]models.Request, error)

	InsertBid(ctx context.Context, bid *models.Bid) error
	TransitionBid(ctx context.Context, t BidTransition) (*models.Bid, error)
	AcceptBid(ctx context.Context, requestID, bidID string, at time.Time) (*models.Request, error)
}

// AppointmentRepository - интерфейс для работы с календарем мастерских.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error)
	ListWorkshopAppointments(ctx context.Context, workshopID string, from, to models.Date) ([]models.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error)
}

// WorkshopRepository - интерфейс для работы с мастерскими.
type WorkshopRepository interface {
	GetWorkshop(ctx context.Context, workshopID string) (*models.Workshop, error)
	GetWorkshops(ctx context.Context, workshopIDs []string) ([]models.Workshop, error)
	SaveWorkshop(ctx context.Context, w *models.Workshop) error
}

const (
	uniqueViolation    = "23505"
	exclusionViolation = "23P01"
)

// translate приводит ошибки драйвера к классам models.ErrorResponse.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Errorf(models.KindNotFound, "%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return models.Errorf(models.KindConflict, "%s already exists", what)
		case exclusionViolation:
			return models.Errorf(models.KindConflict, "%s overlaps an existing one", what)
		}
	}
	var known *models.ErrorResponse
	if errors.As(err, &known) {
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}

func bidStatusStrings(statuses []models.BidStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func categoryStrings(categories []models.ServiceCategory) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func openBidStatuses() []string {
	return bidStatusStrings([]models.BidStatus{models.PendingBid, models.SubmittedBid, models.ViewedBid, models.QuotedBid})
}
