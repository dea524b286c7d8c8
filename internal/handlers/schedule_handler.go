package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/services"
	"github.com/senyabanana/repair-quotes/internal/utils"
)

// ScheduleHandler - обработчики расписания и записей на ремонт.
type ScheduleHandler struct {
	Service *services.SchedulingService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewScheduleHandler создаёт новый экземпляр ScheduleHandler.
func NewScheduleHandler(service *services.SchedulingService, logger *log.Logger, timeout time.Duration) *ScheduleHandler {
	return &ScheduleHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// EstimateDuration оценивает длительность работ по категориям.
func (h *ScheduleHandler) EstimateDuration(w http.ResponseWriter, r *http.Request) {
	var input models.EstimateInput
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}
	respond(h.Logger, w, models.EstimateResult{DurationHours: h.Service.EstimateDuration(input.ServiceCategories)})
}

// CheckSlot проверяет окно: ?date=2025-03-10&start=10:00&duration=2
// или ?date=...&start=...&service_category=brakes.
func (h *ScheduleHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	date, err := models.ParseDate(query.Get("date"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid date parameter, expected YYYY-MM-DD")
		return
	}
	start, err := models.ParseClockTime(query.Get("start"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid start parameter, expected HH:MM")
		return
	}

	var hours float64
	if durationStr := query.Get("duration"); durationStr != "" {
		hours, err = strconv.ParseFloat(durationStr, 64)
		if err != nil {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid duration parameter")
			return
		}
	} else {
		var categories []models.ServiceCategory
		for _, c := range query["service_category"] {
			categories = append(categories, models.ServiceCategory(c))
		}
		if len(categories) == 0 {
			utils.SendErrorResponse(w, http.StatusBadRequest, "duration or service_category is required")
			return
		}
		hours = h.Service.EstimateDuration(categories)
	}

	result, err := h.Service.CheckSlot(ctx, r.PathValue("workshopId"), date, start, hours)
	if err != nil {
		fail(h.Logger, w, err, "failed to check slot")
		return
	}
	respond(h.Logger, w, result)
}

// CompareAvailability сравнивает доступность нескольких мастерских.
func (h *ScheduleHandler) CompareAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var input models.CompareInput
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}

	results, err := h.Service.CompareAvailability(ctx, input)
	if err != nil {
		fail(h.Logger, w, err, "failed to compare workshops")
		return
	}
	respond(h.Logger, w, results)
}

// CreateAppointment бронирует окно по принятой ставке.
func (h *ScheduleHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var input models.AppointmentInput
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}

	appointment, err := h.Service.CreateAppointment(ctx, id, input)
	if err != nil {
		fail(h.Logger, w, err, "failed to create appointment")
		return
	}
	respond(h.Logger, w, appointment)
}

// ListAppointments возвращает календарь мастерской: ?from=2025-03-10&days=7.
func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var from models.Date
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		var err error
		if from, err = models.ParseDate(fromStr); err != nil {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid from parameter, expected YYYY-MM-DD")
			return
		}
	}
	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		var err error
		if days, err = strconv.Atoi(daysStr); err != nil {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
	}

	appointments, err := h.Service.ListWorkshopAppointments(ctx, id, r.PathValue("workshopId"), from, days)
	if err != nil {
		fail(h.Logger, w, err, "failed to fetch appointments")
		return
	}
	respond(h.Logger, w, appointments)
}

// CancelAppointment отменяет запись.
func (h *ScheduleHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	appointment, err := h.Service.CancelAppointment(ctx, id, r.PathValue("appointmentId"))
	if err != nil {
		fail(h.Logger, w, err, "failed to cancel appointment")
		return
	}
	respond(h.Logger, w, appointment)
}
