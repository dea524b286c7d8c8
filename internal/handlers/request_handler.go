package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/services"
	"github.com/senyabanana/repair-quotes/internal/utils"
)

// RequestHandler - обработчики заявок на ремонт.
type RequestHandler struct {
	Service *services.CompetitionService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRequestHandler создаёт новый экземпляр RequestHandler.
func NewRequestHandler(service *services.CompetitionService, logger *log.Logger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateRequest обрабатывает запросы для создания заявки.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var input models.RequestInput
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}

	req, err := h.Service.CreateRequest(ctx, id, input)
	if err != nil {
		fail(h.Logger, w, err, "failed to create request")
		return
	}
	respond(h.Logger, w, req)
}

// ListOpenRequests обрабатывает запросы мастерских на список открытых заявок.
func (h *RequestHandler) ListOpenRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	categories := r.URL.Query()["service_category"]

	requests, err := h.Service.ListOpenRequests(ctx, id, categories, limit, offset)
	if err != nil {
		fail(h.Logger, w, err, "failed to fetch requests")
		return
	}
	respond(h.Logger, w, requests)
}

// SubmitRequest публикует черновик заявки.
func (h *RequestHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.SubmitRequest, "failed to submit request")
}

// CancelRequest отменяет заявку.
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.CancelRequest, "failed to cancel request")
}

// CompleteRequest закрывает выполненную заявку.
func (h *RequestHandler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.CompleteRequest, "failed to complete request")
}

type requestTransition func(ctx context.Context, id auth.Identity, requestID string) (*models.Request, error)

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request, apply requestTransition, fallback string) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	req, err := apply(ctx, id, r.PathValue("requestId"))
	if err != nil {
		fail(h.Logger, w, err, fallback)
		return
	}
	respond(h.Logger, w, req)
}

// GetCompetition возвращает сводку конкурса по заявке в зависимости от роли.
func (h *RequestHandler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	view, err := h.Service.GetCompetitionView(ctx, id, r.PathValue("requestId"))
	if err != nil {
		fail(h.Logger, w, err, "failed to fetch competition")
		return
	}
	respond(h.Logger, w, view)
}

// ListTrackedQuotes отдает клиенту серверное состояние его запросов цены.
func (h *RequestHandler) ListTrackedQuotes(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quotes, err := h.Service.ListTrackedQuotes(ctx, id)
	if err != nil {
		fail(h.Logger, w, err, "failed to fetch tracked quotes")
		return
	}
	respond(h.Logger, w, quotes)
}
