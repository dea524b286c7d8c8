package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

// MemoryStore - потокобезопасная реализация всех репозиториев в памяти.
// Каждая операция выполняется под одной блокировкой, поэтому условные
// обновления атомарны так же, как в PostgreSQL.
type MemoryStore struct {
	mu           sync.Mutex
	requests     map[string]*models.Request
	bids         map[string]*models.Bid
	appointments map[string]*models.Appointment
	workshops    map[string]*models.Workshop
}

// NewMemoryStore создает пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:     make(map[string]*models.Request),
		bids:         make(map[string]*models.Bid),
		appointments: make(map[string]*models.Appointment),
		workshops:    make(map[string]*models.Workshop),
	}
}

func (s *MemoryStore) CreateRequest(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[req.ID]; ok {
		return models.Errorf(models.KindConflict, "request already exists")
	}
	stored := *req
	stored.ServiceCategories = slices.Clone(req.ServiceCategories)
	stored.Bids = nil
	s.requests[req.ID] = &stored
	return nil
}

func (s *MemoryStore) GetRequest(_ context.Context, requestID string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestLocked(requestID)
}

func (s *MemoryStore) TransitionRequest(_ context.Context, t RequestTransition) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[t.RequestID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "request %s not found", t.RequestID)
	}
	if req.Status != t.From {
		return nil, models.Errorf(models.KindConflict, "request %s was modified concurrently", t.RequestID)
	}

	req.Status = t.To
	req.UpdatedAt = t.At
	if t.ExpiresAt != nil {
		expires := *t.ExpiresAt
		req.ExpiresAt = &expires
	}
	if t.CloseBids != "" {
		for _, bid := range s.bids {
			if bid.RequestID == req.ID && bid.Status.IsOpen() {
				bid.Status = t.CloseBids
				bid.UpdatedAt = t.At
			}
		}
	}
	return s.requestLocked(t.RequestID)
}

func (s *MemoryStore) ListOpenRequests(_ context.Context, f OpenRequestsFilter) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []models.Request
	for _, req := range s.requests {
		if !req.Status.AcceptsBids() || req.IsExpired(f.Now) {
			continue
		}
		if len(f.Categories) > 0 && !overlapsCategories(req.ServiceCategories, f.Categories) {
			continue
		}
		open = append(open, copyRequest(req))
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.After(open[j].CreatedAt)
	})

	if f.Offset >= len(open) {
		return nil, nil
	}
	open = open[f.Offset:]
	if f.Limit > 0 && f.Limit < len(open) {
		open = open[:f.Limit]
	}
	return open, nil
}

func (s *MemoryStore) ListCustomerRequests(_ context.Context, customerID string) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var requests []models.Request
	for id, req := range s.requests {
		if req.CustomerID != customerID {
			continue
		}
		full, _ := s.requestLocked(id)
		requests = append(requests, *full)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

func (s *MemoryStore) InsertBid(_ context.Context, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[bid.RequestID]
	if !ok {
		return models.Errorf(models.KindNotFound, "request %s not found", bid.RequestID)
	}
	if !req.Status.AcceptsBids() || req.IsExpired(bid.CreatedAt) {
		return models.Errorf(models.KindConflict, "request %s was modified concurrently", bid.RequestID)
	}
	for _, existing := range s.bids {
		if existing.RequestID == bid.RequestID && existing.WorkshopID == bid.WorkshopID {
			return models.Errorf(models.KindConflict, "bid already exists")
		}
	}

	stored := *bid
	s.bids[bid.ID] = &stored
	req.Status = models.QuotedRequest
	req.UpdatedAt = bid.CreatedAt
	return nil
}

func (s *MemoryStore) TransitionBid(_ context.Context, t BidTransition) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[t.BidID]
	if !ok || bid.RequestID != t.RequestID || !slices.Contains(t.From, bid.Status) {
		return nil, models.Errorf(models.KindConflict, "bid %s is no longer in an expected status", t.BidID)
	}
	bid.Status = t.To
	bid.UpdatedAt = t.At
	if t.Amount != nil {
		bid.Amount = *t.Amount
	}
	if t.ValidUntil != nil {
		bid.ValidUntil = *t.ValidUntil
	}
	out := *bid
	return &out, nil
}

func (s *MemoryStore) AcceptBid(_ context.Context, requestID, bidID string, at time.Time) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "request %s not found", requestID)
	}
	if !req.Status.AcceptsBids() || req.AcceptedBidID != nil || req.IsExpired(at) {
		return nil, models.Errorf(models.KindConflict, "request %s was modified concurrently", requestID)
	}
	target, ok := s.bids[bidID]
	if !ok || target.RequestID != requestID || !target.Status.Acceptable() {
		return nil, models.Errorf(models.KindConflict, "bid %s is no longer acceptable", bidID)
	}

	for _, bid := range s.bids {
		if bid.RequestID != requestID {
			continue
		}
		switch {
		case bid.ID == bidID:
			bid.Status = models.AcceptedBid
			bid.UpdatedAt = at
		case bid.Status.IsOpen():
			bid.Status = models.DeclinedBid
			bid.UpdatedAt = at
		}
	}
	accepted := bidID
	req.Status = models.AcceptedRequest
	req.AcceptedBidID = &accepted
	req.UpdatedAt = at
	return s.requestLocked(requestID)
}

func (s *MemoryStore) CreateAppointment(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.appointments {
		if existing.Status == models.CancelledAppointment {
			continue
		}
		if existing.BidID == a.BidID {
			return models.Errorf(models.KindConflict, "appointment already exists")
		}
		if existing.WorkshopID == a.WorkshopID && existing.ScheduledDate.Equal(a.ScheduledDate.Time) && existing.Overlaps(a.StartTime, a.EndTime) {
			return models.Errorf(models.KindConflict, "slot %s %s-%s was booked concurrently", a.ScheduledDate, a.StartTime, a.EndTime)
		}
	}
	stored := *a
	s.appointments[a.ID] = &stored
	return nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, appointmentID string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "appointment not found")
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) ListWorkshopAppointments(_ context.Context, workshopID string, from, to models.Date) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, a := range s.appointments {
		if a.WorkshopID != workshopID || a.ScheduledDate.Before(from.Time) || a.ScheduledDate.After(to.Time) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate.Time) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate.Time)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *MemoryStore) CancelAppointment(_ context.Context, appointmentID string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "appointment not found")
	}
	if a.Status != models.ScheduledAppointment && a.Status != models.ConfirmedAppointment {
		return nil, models.Errorf(models.KindInvalidState, "appointment %s can no longer be cancelled", appointmentID)
	}
	a.Status = models.CancelledAppointment
	out := *a
	return &out, nil
}

func (s *MemoryStore) GetWorkshop(_ context.Context, workshopID string) (*models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workshops[workshopID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "workshop %s not found", workshopID)
	}
	out := copyWorkshop(w)
	return &out, nil
}

func (s *MemoryStore) GetWorkshops(_ context.Context, workshopIDs []string) ([]models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(workshopIDs))
	var out []models.Workshop
	for _, id := range workshopIDs {
		if w, ok := s.workshops[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyWorkshop(w))
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveWorkshop(_ context.Context, w *models.Workshop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyWorkshop(w)
	s.workshops[w.ID] = &stored
	return nil
}

// requestLocked собирает копию заявки со ставками; вызывается под s.mu.
func (s *MemoryStore) requestLocked(requestID string) (*models.Request, error) {
	req, ok := s.requests[requestID]
	if !ok {
		return nil, models.Errorf(models.KindNotFound, "request not found")
	}
	out := copyRequest(req)
	for _, bid := range s.bids {
		if bid.RequestID == requestID {
			out.Bids = append(out.Bids, *bid)
		}
	}
	sort.Slice(out.Bids, func(i, j int) bool {
		if !out.Bids[i].CreatedAt.Equal(out.Bids[j].CreatedAt) {
			return out.Bids[i].CreatedAt.Before(out.Bids[j].CreatedAt)
		}
		return out.Bids[i].ID < out.Bids[j].ID
	})
	return &out, nil
}

func copyRequest(req *models.Request) models.Request {
	out := *req
	out.ServiceCategories = slices.Clone(req.ServiceCategories)
	out.Bids = nil
	if req.ExpiresAt != nil {
		expires := *req.ExpiresAt
		out.ExpiresAt = &expires
	}
	if req.AcceptedBidID != nil {
		accepted := *req.AcceptedBidID
		out.AcceptedBidID = &accepted
	}
	if req.Location != nil {
		loc := *req.Location
		out.Location = &loc
	}
	return out
}

func copyWorkshop(w *models.Workshop) models.Workshop {
	out := *w
	out.Hours = slices.Clone(w.Hours)
	if w.Coordinates != nil {
		c := *w.Coordinates
		out.Coordinates = &c
	}
	return out
}

func overlapsCategories(have []models.ServiceCategory, want []string) bool {
	for _, c := range have {
		if slices.Contains(want, string(c)) {
			return true
		}
	}
	return false
}
