package services

import (
	"context"
	"log"
	"time"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/notify"
	"github.com/senyabanana/repair-quotes/internal/repository"
	"github.com/senyabanana/repair-quotes/internal/scheduling"
	"github.com/senyabanana/repair-quotes/internal/utils"

	"github.com/google/uuid"
)

const (
	defaultDaysWindow = 7
	maxDaysWindow     = 31
	maxCompared       = 10
)

// SchedulingConfig - параметры расписания из конфигурации.
type SchedulingConfig struct {
	Location      *time.Location
	SlotStep      time.Duration
	NotifyTimeout time.Duration
}

type SchedulingService struct {
	Requests     repository.RequestRepository
	Appointments repository.AppointmentRepository
	Workshops    repository.WorkshopRepository
	Estimator    *scheduling.Estimator
	Notifier     notify.Notifier
	Clock        clock.Clock
	Logger       *log.Logger
	Config       SchedulingConfig
}

// NewSchedulingService создаёт новый экземпляр SchedulingService.
func NewSchedulingService(
	requests repository.RequestRepository,
	appointments repository.AppointmentRepository,
	workshops repository.WorkshopRepository,
	estimator *scheduling.Estimator,
	notifier notify.Notifier,
	clk clock.Clock,
	logger *log.Logger,
	cfg SchedulingConfig,
) *SchedulingService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = time.Hour
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	return &SchedulingService{
		Requests:     requests,
		Appointments: appointments,
		Workshops:    workshops,
		Estimator:    estimator,
		Notifier:     notifier,
		Clock:        clk,
		Logger:       logger,
		Config:       cfg,
	}
}

// EstimateDuration оценивает длительность работ в часах.
func (s *SchedulingService) EstimateDuration(categories []models.ServiceCategory) float64 {
	return s.Estimator.EstimateDuration(categories)
}

// CheckSlot проверяет, свободно ли окно в календаре мастерской.
func (s *SchedulingService) CheckSlot(ctx context.Context, workshopID string, date models.Date, start models.ClockTime, hours float64) (*models.SlotCheckResult, error) {
	if !scheduling.ValidDuration(hours) {
		return nil, models.Errorf(models.KindValidation, "duration must be within [%v, %v] hours", scheduling.MinDurationHours, scheduling.MaxDurationHours)
	}
	if date.IsZero() {
		return nil, models.NewErrorResponse(models.KindValidation, "date is required")
	}

	workshop, err := s.Workshops.GetWorkshop(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.Appointments.ListWorkshopAppointments(ctx, workshopID, date, date)
	if err != nil {
		return nil, err
	}

	check := scheduling.CheckSlot(workshop, appointments, date, start, hours)
	return &models.SlotCheckResult{
		WorkshopID: workshopID,
		Slot:       check.Slot,
		Available:  check.Available(),
		Reason:     string(check.Reason),
		Message:    check.Message,
	}, nil
}

// CompareAvailability сравнивает мастерские по числу свободных окон и
// ожиданию первого из них и возвращает их в порядке ранжирования.
func (s *SchedulingService) CompareAvailability(ctx context.Context, input models.CompareInput) ([]models.WorkshopAvailability, error) {
	var ids []string
	for _, id := range input.WorkshopIDs {
		if id != "" && !utils.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	switch {
	case len(ids) == 0:
		return nil, models.NewErrorResponse(models.KindValidation, "at least one workshop id is required")
	case len(ids) > maxCompared:
		return nil, models.Errorf(models.KindValidation, "at most %d workshops can be compared", maxCompared)
	case !scheduling.ValidDuration(input.Duration):
		return nil, models.Errorf(models.KindValidation, "duration must be within [%v, %v] hours", scheduling.MinDurationHours, scheduling.MaxDurationHours)
	}
	days := input.DaysWindow
	if days == 0 {
		days = defaultDaysWindow
	}
	if days < 1 || days > maxDaysWindow {
		return nil, models.Errorf(models.KindValidation, "daysWindow must be within [1, %d]", maxDaysWindow)
	}

	workshops, err := s.Workshops.GetWorkshops(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(workshops) != len(ids) {
		for _, id := range ids {
			if !hasWorkshop(workshops, id) {
				return nil, models.Errorf(models.KindNotFound, "workshop %s not found", id)
			}
		}
	}

	from := s.Clock.Now()
	if input.PreferredDate != nil {
		if preferred := input.PreferredDate.At(0, s.Config.Location); preferred.After(from) {
			from = preferred
		}
	}
	firstDay := models.DateOf(from, s.Config.Location)
	lastDay := firstDay.AddDays(days - 1)

	results := make([]models.WorkshopAvailability, 0, len(workshops))
	for i := range workshops {
		w := &workshops[i]
		appointments, err := s.Appointments.ListWorkshopAppointments(ctx, w.ID, firstDay, lastDay)
		if err != nil {
			return nil, err
		}
		scan := scheduling.ScanWindow(w, appointments, scheduling.ScanParams{
			From:     from,
			Days:     days,
			Step:     s.Config.SlotStep,
			Hours:    input.Duration,
			Location: s.Config.Location,
		})
		results = append(results, models.WorkshopAvailability{
			WorkshopID:          w.ID,
			WorkshopName:        w.Name,
			AvailableSlotsCount: len(scan.Slots),
			AverageWaitTime:     scan.WaitHours,
			FirstSlot:           scan.FirstSlot,
			DistanceKm:          scheduling.DistanceKm(input.CustomerLocation, w.Coordinates),
		})
	}

	scheduling.Score(results)
	scheduling.Rank(results)
	return results, nil
}

// CreateAppointment бронирует окно по принятой ставке. Окно проверяется
// заранее и повторно в хранилище при записи.
func (s *SchedulingService) CreateAppointment(ctx context.Context, id auth.Identity, input models.AppointmentInput) (*models.Appointment, error) {
	if err := id.RequireCustomer(); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, models.NewErrorResponse(models.KindValidation, "date is required")
	}
	if input.Location.Kind == "" {
		input.Location.Kind = models.AtWorkshop
	}

	req, err := s.Requests.GetRequest(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != id.UserID {
		return nil, models.NewErrorResponse(models.KindAuthorizationDenied, "request belongs to another customer")
	}
	bid := req.BidByID(input.AcceptedBidID)
	if bid == nil {
		return nil, models.Errorf(models.KindNotFound, "bid %s not found on request %s", input.AcceptedBidID, input.RequestID)
	}
	if req.Status != models.AcceptedRequest || req.AcceptedBidID == nil || *req.AcceptedBidID != bid.ID {
		return nil, models.NewErrorResponse(models.KindInvalidState, "appointment requires the accepted bid of an accepted request")
	}

	now := s.Clock.Now()
	if input.Date.At(input.StartTime, s.Config.Location).Before(now) {
		return nil, models.NewErrorResponse(models.KindValidation, "cannot book a slot in the past")
	}

	hours := s.Estimator.EstimateDuration(req.ServiceCategories)
	workshop, err := s.Workshops.GetWorkshop(ctx, bid.WorkshopID)
	if err != nil {
		return nil, err
	}
	existing, err := s.Appointments.ListWorkshopAppointments(ctx, workshop.ID, input.Date, input.Date)
	if err != nil {
		return nil, err
	}

	check := scheduling.CheckSlot(workshop, existing, input.Date, input.StartTime, hours)
	switch check.Reason {
	case scheduling.ReasonOutsideHours:
		return nil, models.NewErrorResponse(models.KindValidation, check.Message)
	case scheduling.ReasonConflict:
		return nil, models.NewErrorResponse(models.KindConflict, check.Message)
	}

	appointment := &models.Appointment{
		ID:             uuid.New().String(),
		RequestID:      req.ID,
		BidID:          bid.ID,
		CustomerID:     req.CustomerID,
		WorkshopID:     workshop.ID,
		ScheduledDate:  input.Date,
		StartTime:      check.Slot.Start,
		EndTime:        check.Slot.End,
		EstimatedHours: hours,
		Status:         models.ScheduledAppointment,
		Location:       input.Location,
		CreatedAt:      now,
	}
	if err := s.Appointments.CreateAppointment(ctx, appointment); err != nil {
		return nil, err
	}
	s.Logger.Printf("appointment %s booked at workshop %s on %s %s-%s", appointment.ID, workshop.ID, appointment.ScheduledDate, appointment.StartTime, appointment.EndTime)

	s.notify(ctx, notify.AppointmentBooked, *appointment)
	return appointment, nil
}

// ListWorkshopAppointments возвращает календарь мастерской на days дней начиная с from.
func (s *SchedulingService) ListWorkshopAppointments(ctx context.Context, id auth.Identity, workshopID string, from models.Date, days int) ([]models.Appointment, error) {
	if err := id.RequireWorkshop(); err != nil {
		return nil, err
	}
	if id.WorkshopID != workshopID {
		return nil, models.NewErrorResponse(models.KindAuthorizationDenied, "calendar belongs to another workshop")
	}
	if days == 0 {
		days = 1
	}
	if days < 1 || days > maxDaysWindow {
		return nil, models.Errorf(models.KindValidation, "days must be within [1, %d]", maxDaysWindow)
	}
	if from.IsZero() {
		from = models.DateOf(s.Clock.Now(), s.Config.Location)
	}

	appointments, err := s.Appointments.ListWorkshopAppointments(ctx, workshopID, from, from.AddDays(days-1))
	if err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, nil
}

// CancelAppointment отменяет запись по просьбе клиента или мастерской.
func (s *SchedulingService) CancelAppointment(ctx context.Context, id auth.Identity, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.Appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	owner := (id.IsCustomer() && appointment.CustomerID == id.UserID) ||
		(id.IsWorkshop() && appointment.WorkshopID == id.WorkshopID)
	if !owner {
		return nil, models.NewErrorResponse(models.KindAuthorizationDenied, "appointment belongs to another participant")
	}

	cancelled, err := s.Appointments.CancelAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	s.Logger.Printf("appointment %s cancelled by %s %s", cancelled.ID, id.Role, id.UserID)

	s.notify(ctx, notify.AppointmentCancelled, *cancelled)
	return cancelled, nil
}

// notify отправляет уведомление после фиксации записи. Ошибка доставки
// логируется и не влияет на результат операции.
func (s *SchedulingService) notify(ctx context.Context, eventType notify.EventType, appointment models.Appointment) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.NotifyTimeout)
	defer cancel()

	event := notify.Event{Type: eventType, Appointment: appointment, At: s.Clock.Now()}
	if err := s.Notifier.Notify(ctx, event); err != nil {
		s.Logger.Printf("notification %s for appointment %s failed: %v", eventType, appointment.ID, err)
	}
}

func hasWorkshop(workshops []models.Workshop, id string) bool {
	for _, w := range workshops {
		if w.ID == id {
			return true
		}
	}
	return false
}
