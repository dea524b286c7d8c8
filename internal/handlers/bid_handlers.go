package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/services"
	"github.com/senyabanana/repair-quotes/internal/utils"
)

// BidHandler - обработчики ставок мастерских.
type BidHandler struct {
	Service *services.CompetitionService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBidHandler создаёт новый экземпляр BidHandler.
func NewBidHandler(service *services.CompetitionService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateBid обрабатывает запросы для отправки ставки.
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var input models.BidInput
	if err := utils.DecodeAndValidate(r, &input); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}

	bid, err := h.Service.SubmitBid(ctx, id, r.PathValue("requestId"), input)
	if err != nil {
		fail(h.Logger, w, err, "failed to create bid")
		return
	}
	respond(h.Logger, w, bid)
}

// AcceptBid обрабатывает решение клиента принять ставку.
func (h *BidHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	req, err := h.Service.AcceptBid(ctx, id, r.PathValue("requestId"), r.PathValue("bidId"))
	if err != nil {
		fail(h.Logger, w, err, "failed to accept bid")
		return
	}
	respond(h.Logger, w, req)
}

// MarkBidViewed отмечает ставку просмотренной.
func (h *BidHandler) MarkBidViewed(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bid, err := h.Service.MarkBidViewed(ctx, id, r.PathValue("requestId"), r.PathValue("bidId"))
	if err != nil {
		fail(h.Logger, w, err, "failed to update bid")
		return
	}
	respond(h.Logger, w, bid)
}

// ReviseBid обрабатывает итоговую цену мастерской.
func (h *BidHandler) ReviseBid(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var rev models.BidRevision
	if err := utils.DecodeAndValidate(r, &rev); err != nil {
		fail(h.Logger, w, err, "invalid request body")
		return
	}

	bid, err := h.Service.ReviseBid(ctx, id, r.PathValue("requestId"), r.PathValue("bidId"), rev)
	if err != nil {
		fail(h.Logger, w, err, "failed to revise bid")
		return
	}
	respond(h.Logger, w, bid)
}
