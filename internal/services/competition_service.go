package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/repository"
	"github.com/senyabanana/repair-quotes/internal/utils"

	"github.com/google/uuid"
)

// Допустимые переходы заявки. В accepted попадают только через AcceptBid,
// в expired - только по истечении срока.
var requestTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.DraftRequest:     {models.SubmittedRequest, models.CancelledRequest},
	models.SubmittedRequest: {models.QuotedRequest, models.CancelledRequest, models.ExpiredRequest},
	models.QuotedRequest:    {models.AcceptedRequest, models.CancelledRequest, models.ExpiredRequest},
	models.AcceptedRequest:  {models.CompletedRequest, models.CancelledRequest},
	models.CompletedRequest: {},
	models.CancelledRequest: {},
	models.ExpiredRequest:   {},
}

// Допустимые переходы ставки.
var bidTransitions = map[models.BidStatus][]models.BidStatus{
	models.PendingBid:   {models.SubmittedBid, models.ExpiredBid},
	models.SubmittedBid: {models.ViewedBid, models.QuotedBid, models.AcceptedBid, models.DeclinedBid, models.ExpiredBid},
	models.ViewedBid:    {models.QuotedBid, models.DeclinedBid, models.ExpiredBid},
	models.QuotedBid:    {models.AcceptedBid, models.DeclinedBid, models.ExpiredBid},
	models.AcceptedBid:  {},
	models.DeclinedBid:  {},
	models.ExpiredBid:   {},
}

// bidSourcesFor возвращает статусы, из которых разрешен переход в target.
func bidSourcesFor(target models.BidStatus) []models.BidStatus {
	var from []models.BidStatus
	for status, next := range bidTransitions {
		if utils.Contains(next, target) {
			from = append(from, status)
		}
	}
	return from
}

type CompetitionService struct {
	Repo       repository.RequestRepository
	Workshops  repository.WorkshopRepository
	Clock      clock.Clock
	Logger     *log.Logger
	RequestTTL time.Duration
}

// NewCompetitionService создаёт новый экземпляр CompetitionService.
func NewCompetitionService(repo repository.RequestRepository, workshops repository.WorkshopRepository, clk clock.Clock, logger *log.Logger, requestTTL time.Duration) *CompetitionService {
	return &CompetitionService{
		Repo:       repo,
		Workshops:  workshops,
		Clock:      clk,
		Logger:     logger,
		RequestTTL: requestTTL,
	}
}

// CreateRequest создает черновик заявки клиента.
func (s *CompetitionService) CreateRequest(ctx context.Context, id auth.Identity, input models.RequestInput) (*models.Request, error) {
	if err := id.RequireCustomer(); err != nil {
		return nil, err
	}
	if input.Vehicle.Make == "" || input.Vehicle.Model == "" {
		return nil, models.NewErrorResponse(models.KindValidation, "vehicle make and model are required")
	}

	var categories []models.ServiceCategory
	for _, category := range input.ServiceCategories {
		if !models.KnownCategories[category] {
			return nil, models.Errorf(models.KindValidation, "unsupported service category: %s", category)
		}
		if !utils.Contains(categories, category) {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		return nil, models.NewErrorResponse(models.KindValidation, "at least one service category is required")
	}

	now := s.Clock.Now()
	req := &models.Request{
		ID:                uuid.New().String(),
		CustomerID:        id.UserID,
		Vehicle:           input.Vehicle,
		ServiceCategories: categories,
		Description:       input.Description,
		Location:          input.Location,
		Status:            models.DraftRequest,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SubmitRequest публикует черновик и открывает прием ставок до now+RequestTTL.
func (s *CompetitionService) SubmitRequest(ctx context.Context, id auth.Identity, requestID string) (*models.Request, error) {
	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkRequestTransition(req.Status, models.SubmittedRequest); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	t := repository.RequestTransition{RequestID: req.ID, From: req.Status, To: models.SubmittedRequest, At: now}
	if s.RequestTTL > 0 {
		expires := now.Add(s.RequestTTL)
		t.ExpiresAt = &expires
	}
	return s.Repo.TransitionRequest(ctx, t)
}

// CancelRequest отменяет заявку и отклоняет открытые ставки.
func (s *CompetitionService) CancelRequest(ctx context.Context, id auth.Identity, requestID string) (*models.Request, error) {
	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkRequestTransition(req.Status, models.CancelledRequest); err != nil {
		return nil, err
	}
	return s.Repo.TransitionRequest(ctx, repository.RequestTransition{
		RequestID: req.ID,
		From:      req.Status,
		To:        models.CancelledRequest,
		CloseBids: models.DeclinedBid,
		At:        s.Clock.Now(),
	})
}

// CompleteRequest отмечает выполнение работ по принятой ставке.
func (s *CompetitionService) CompleteRequest(ctx context.Context, id auth.Identity, requestID string) (*models.Request, error) {
	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkRequestTransition(req.Status, models.CompletedRequest); err != nil {
		return nil, err
	}
	return s.Repo.TransitionRequest(ctx, repository.RequestTransition{
		RequestID: req.ID,
		From:      req.Status,
		To:        models.CompletedRequest,
		At:        s.Clock.Now(),
	})
}

// SubmitBid отправляет ставку мастерской. Заявка submitted переходит в quoted.
func (s *CompetitionService) SubmitBid(ctx context.Context, id auth.Identity, requestID string, input models.BidInput) (*models.Bid, error) {
	if err := id.RequireWorkshop(); err != nil {
		return nil, err
	}
	workshopID := input.WorkshopID
	if workshopID == "" {
		workshopID = id.WorkshopID
	}
	if workshopID != id.WorkshopID {
		return nil, models.NewErrorResponse(models.KindAuthorizationDenied, "cannot bid on behalf of another workshop")
	}

	now := s.Clock.Now()
	switch {
	case input.Amount <= 0:
		return nil, models.NewErrorResponse(models.KindValidation, "amount must be positive")
	case !models.ValidCurrency(input.Currency):
		return nil, models.Errorf(models.KindValidation, "invalid currency %q, expected ISO-4217 code", input.Currency)
	case !input.ValidUntil.After(now):
		return nil, models.NewErrorResponse(models.KindValidation, "validUntil must be in the future")
	}

	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BidByWorkshop(workshopID) != nil {
		return nil, models.NewErrorResponse(models.KindConflict, "workshop already has a bid on this request")
	}
	if req.Status == models.ExpiredRequest {
		return nil, models.NewErrorResponse(models.KindExpired, "request deadline has passed")
	}
	if !req.Status.AcceptsBids() {
		return nil, models.Errorf(models.KindInvalidState, "request is %s and does not accept bids", req.Status)
	}

	bid := &models.Bid{
		ID:         uuid.New().String(),
		RequestID:  req.ID,
		WorkshopID: workshopID,
		Status:     models.SubmittedBid,
		Amount:     input.Amount,
		Currency:   input.Currency,
		ValidUntil: input.ValidUntil,
		Note:       input.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.InsertBid(ctx, bid); err != nil {
		return nil, err
	}
	s.Logger.Printf("bid %s submitted by workshop %s on request %s", bid.ID, workshopID, req.ID)
	return bid, nil
}

// AcceptBid принимает ставку. Остальные открытые ставки отклоняются,
// при гонке двух вызовов проигравший получает Conflict.
func (s *CompetitionService) AcceptBid(ctx context.Context, id auth.Identity, requestID, bidID string) (*models.Request, error) {
	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	bid := req.BidByID(bidID)
	if bid == nil {
		return nil, models.Errorf(models.KindNotFound, "bid %s not found on request %s", bidID, requestID)
	}
	if req.Status == models.AcceptedRequest || req.Status.IsTerminal() || !utils.Contains(requestTransitions[req.Status], models.AcceptedRequest) {
		return nil, models.Errorf(models.KindInvalidState, "request is %s and cannot accept a bid", req.Status)
	}
	if !bid.Status.Acceptable() {
		return nil, models.Errorf(models.KindInvalidState, "bid is %s and cannot be accepted", bid.Status)
	}

	accepted, err := s.Repo.AcceptBid(ctx, req.ID, bid.ID, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	s.Logger.Printf("request %s accepted bid %s from workshop %s", req.ID, bid.ID, bid.WorkshopID)
	return accepted, nil
}

// MarkBidViewed отмечает, что клиент просмотрел ставку.
func (s *CompetitionService) MarkBidViewed(ctx context.Context, id auth.Identity, requestID, bidID string) (*models.Bid, error) {
	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	bid := req.BidByID(bidID)
	if bid == nil {
		return nil, models.Errorf(models.KindNotFound, "bid %s not found on request %s", bidID, requestID)
	}
	if bid.Status == models.ViewedBid {
		return bid, nil
	}
	if !utils.Contains(bidTransitions[bid.Status], models.ViewedBid) {
		return nil, models.Errorf(models.KindInvalidState, "bid is %s and cannot be marked viewed", bid.Status)
	}
	return s.Repo.TransitionBid(ctx, repository.BidTransition{
		RequestID: req.ID,
		BidID:     bid.ID,
		From:      bidSourcesFor(models.ViewedBid),
		To:        models.ViewedBid,
		At:        s.Clock.Now(),
	})
}

// ReviseBid фиксирует итоговую цену мастерской, ставка переходит в quoted.
func (s *CompetitionService) ReviseBid(ctx context.Context, id auth.Identity, requestID, bidID string, rev models.BidRevision) (*models.Bid, error) {
	if err := id.RequireWorkshop(); err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	if rev.Amount <= 0 {
		return nil, models.NewErrorResponse(models.KindValidation, "amount must be positive")
	}
	if rev.ValidUntil != nil && !rev.ValidUntil.After(now) {
		return nil, models.NewErrorResponse(models.KindValidation, "validUntil must be in the future")
	}

	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	bid := req.BidByID(bidID)
	if bid == nil || bid.WorkshopID != id.WorkshopID {
		return nil, models.Errorf(models.KindNotFound, "bid %s not found on request %s", bidID, requestID)
	}
	if req.Status == models.ExpiredRequest {
		return nil, models.NewErrorResponse(models.KindExpired, "request deadline has passed")
	}
	if !req.Status.AcceptsBids() {
		return nil, models.Errorf(models.KindInvalidState, "request is %s and does not accept bids", req.Status)
	}
	if !utils.Contains(bidTransitions[bid.Status], models.QuotedBid) {
		return nil, models.Errorf(models.KindInvalidState, "bid is %s and cannot be revised", bid.Status)
	}

	amount := rev.Amount
	return s.Repo.TransitionBid(ctx, repository.BidTransition{
		RequestID:  req.ID,
		BidID:      bid.ID,
		From:       bidSourcesFor(models.QuotedBid),
		To:         models.QuotedBid,
		Amount:     &amount,
		ValidUntil: rev.ValidUntil,
		At:         now,
	})
}

// GetCompetitionView возвращает сводку конкурса в зависимости от роли:
// мастерская видит свою ставку и обезличенные счетчики, владелец заявки -
// все видимые ставки по возрастанию цены.
func (s *CompetitionService) GetCompetitionView(ctx context.Context, id auth.Identity, requestID string) (*models.CompetitionView, error) {
	if id.IsWorkshop() {
		req, err := s.load(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if req.Status == models.DraftRequest {
			return nil, models.Errorf(models.KindNotFound, "request %s not found", requestID)
		}
		view := WorkshopProjection(req, id.WorkshopID)
		return &models.CompetitionView{Workshop: &view}, nil
	}

	req, err := s.ownedRequest(ctx, id, requestID)
	if err != nil {
		return nil, err
	}
	view := CustomerProjection(req)
	return &models.CompetitionView{Customer: &view}, nil
}

// WorkshopProjection строит обезличенную сводку для мастерской.
// Суммы и идентификаторы конкурентов в результат не попадают.
func WorkshopProjection(req *models.Request, workshopID string) models.WorkshopView {
	view := models.WorkshopView{RequestID: req.ID, RequestStatus: req.Status}
	for i := range req.Bids {
		bid := req.Bids[i]
		if bid.Status != models.PendingBid {
			view.SubmittedCount++
		}
		if bid.WorkshopID == workshopID {
			own := bid
			view.OwnBid = &own
			continue
		}
		if bid.Status != models.PendingBid {
			view.CompetitorCount++
		}
	}
	if req.AcceptedBidID != nil {
		won := view.OwnBid != nil && view.OwnBid.ID == *req.AcceptedBidID
		view.Won = &won
	}
	return view
}

// CustomerProjection возвращает видимые клиенту ставки по возрастанию цены.
func CustomerProjection(req *models.Request) models.CustomerView {
	bids := make([]models.Bid, 0, len(req.Bids))
	for _, bid := range req.Bids {
		if bid.Status.VisibleToCustomer() {
			bids = append(bids, bid)
		}
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Amount != bids[j].Amount {
			return bids[i].Amount < bids[j].Amount
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})

	stripped := *req
	stripped.Bids = nil
	return models.CustomerView{Request: stripped, Bids: bids}
}

// ListOpenRequests возвращает заявки, открытые для ставок мастерских.
func (s *CompetitionService) ListOpenRequests(ctx context.Context, id auth.Identity, categories []string, limit, offset int) ([]models.Request, error) {
	if err := id.RequireWorkshop(); err != nil {
		return nil, err
	}
	for _, category := range categories {
		if !models.KnownCategories[models.ServiceCategory(category)] {
			return nil, models.Errorf(models.KindValidation, "unsupported service category: %s", category)
		}
	}
	requests, err := s.Repo.ListOpenRequests(ctx, repository.OpenRequestsFilter{
		Categories: categories,
		Limit:      limit,
		Offset:     offset,
		Now:        s.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

// trackedStatus переводит статус ставки в словарь клиентского кэша.
func trackedStatus(status models.BidStatus) string {
	if status == models.DeclinedBid {
		return "rejected"
	}
	return string(status)
}

// ListTrackedQuotes возвращает серверное состояние всех пар (заявка,
// мастерская) клиента для синхронизации кэша отправленных запросов.
func (s *CompetitionService) ListTrackedQuotes(ctx context.Context, id auth.Identity) ([]models.TrackedQuote, error) {
	if err := id.RequireCustomer(); err != nil {
		return nil, err
	}
	requests, err := s.Repo.ListCustomerRequests(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	var workshopIDs []string
	for _, req := range requests {
		for _, bid := range req.Bids {
			if !utils.Contains(workshopIDs, bid.WorkshopID) {
				workshopIDs = append(workshopIDs, bid.WorkshopID)
			}
		}
	}
	names := make(map[string]string, len(workshopIDs))
	if len(workshopIDs) > 0 {
		workshops, err := s.Workshops.GetWorkshops(ctx, workshopIDs)
		if err != nil {
			return nil, err
		}
		for _, w := range workshops {
			names[w.ID] = w.Name
		}
	}

	quotes := []models.TrackedQuote{}
	for _, req := range requests {
		for _, bid := range req.Bids {
			if !bid.Status.VisibleToCustomer() && bid.Status != models.ExpiredBid {
				continue
			}
			quotes = append(quotes, models.TrackedQuote{
				RequestID:    req.ID,
				WorkshopID:   bid.WorkshopID,
				WorkshopName: names[bid.WorkshopID],
				BidID:        bid.ID,
				Status:       trackedStatus(bid.Status),
				Amount:       bid.Amount,
				Currency:     bid.Currency,
				CreatedAt:    bid.CreatedAt,
				UpdatedAt:    bid.UpdatedAt,
			})
		}
	}
	return quotes, nil
}

// load читает заявку и лениво переводит ее в expired, если срок истек.
func (s *CompetitionService) load(ctx context.Context, requestID string) (*models.Request, error) {
	req, err := s.Repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	if !req.Status.AcceptsBids() || !req.IsExpired(now) {
		return req, nil
	}

	expired, err := s.Repo.TransitionRequest(ctx, repository.RequestTransition{
		RequestID: req.ID,
		From:      req.Status,
		To:        models.ExpiredRequest,
		CloseBids: models.ExpiredBid,
		At:        now,
	})
	if errors.Is(err, models.ErrConflict) {
		return s.Repo.GetRequest(ctx, requestID)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Printf("request %s expired at %s", req.ID, req.ExpiresAt.Format(time.RFC3339))
	return expired, nil
}

// ownedRequest загружает заявку и проверяет, что вызывающий - ее владелец.
func (s *CompetitionService) ownedRequest(ctx context.Context, id auth.Identity, requestID string) (*models.Request, error) {
	if err := id.RequireCustomer(); err != nil {
		return nil, err
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != id.UserID {
		return nil, models.NewErrorResponse(models.KindAuthorizationDenied, "request belongs to another customer")
	}
	return req, nil
}

func checkRequestTransition(from, to models.RequestStatus) error {
	if !utils.Contains(requestTransitions[from], to) {
		return models.Errorf(models.KindInvalidState, "request cannot move from %s to %s", from, to)
	}
	return nil
}
