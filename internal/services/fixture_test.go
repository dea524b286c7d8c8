package services

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/notify"
	"github.com/senyabanana/repair-quotes/internal/repository"
	"github.com/senyabanana/repair-quotes/internal/scheduling"
)

// monday8 - понедельник, 10 марта 2025, 08:00 UTC.
var monday8 = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

var (
	customer      = auth.Identity{UserID: "cust-1", Role: auth.RoleCustomer}
	otherCustomer = auth.Identity{UserID: "cust-2", Role: auth.RoleCustomer}
	workshop1     = auth.Identity{UserID: "u-w1", Role: auth.RoleWorkshop, WorkshopID: "ws-1"}
	workshop2     = auth.Identity{UserID: "u-w2", Role: auth.RoleWorkshop, WorkshopID: "ws-2"}
	workshop3     = auth.Identity{UserID: "u-w3", Role: auth.RoleWorkshop, WorkshopID: "ws-3"}
)

const requestTTL = 72 * time.Hour

type fixture struct {
	store       *repository.MemoryStore
	clock       *clock.Fixed
	competition *CompetitionService
	scheduling  *SchedulingService
}

func newFixture(t *testing.T, notifier notify.Notifier) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clk := clock.NewFixed(monday8)
	logger := log.New(io.Discard, "", 0)

	for _, w := range []models.Workshop{
		weekdayWorkshop("ws-1", "North Garage", 8*60, 18*60),
		weekdayWorkshop("ws-2", "South Garage", 8*60, 18*60),
		weekdayWorkshop("ws-3", "East Garage", 8*60, 18*60),
	} {
		if err := store.SaveWorkshop(context.Background(), &w); err != nil {
			t.Fatal(err)
		}
	}

	return &fixture{
		store:       store,
		clock:       clk,
		competition: NewCompetitionService(store, store, clk, logger, requestTTL),
		scheduling: NewSchedulingService(store, store, store, scheduling.NewEstimator(nil), notifier, clk, logger, SchedulingConfig{
			Location:      time.UTC,
			SlotStep:      time.Hour,
			NotifyTimeout: time.Second,
		}),
	}
}

func weekdayWorkshop(id, name string, open, closing models.ClockTime) models.Workshop {
	w := models.Workshop{ID: id, Name: name}
	for d := time.Monday; d <= time.Friday; d++ {
		w.Hours = append(w.Hours, models.OperatingHours{Weekday: d, Open: open, Close: closing})
	}
	return w
}

// openRequest создает и публикует заявку клиента на замену тормозов (2 часа).
func (f *fixture) openRequest(t *testing.T, owner auth.Identity) *models.Request {
	t.Helper()
	ctx := context.Background()
	req, err := f.competition.CreateRequest(ctx, owner, models.RequestInput{
		Vehicle:           models.Vehicle{Make: "Toyota", Model: "Corolla", Year: 2018},
		ServiceCategories: []models.ServiceCategory{models.Brakes},
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req, err = f.competition.SubmitRequest(ctx, owner, req.ID)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return req
}

func (f *fixture) bid(t *testing.T, w auth.Identity, requestID string, amount float64) *models.Bid {
	t.Helper()
	bid, err := f.competition.SubmitBid(context.Background(), w, requestID, models.BidInput{
		Amount:     amount,
		Currency:   "USD",
		ValidUntil: f.clock.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	return bid
}

// acceptedRequest возвращает заявку с принятой ставкой мастерской w.
func (f *fixture) acceptedRequest(t *testing.T, owner, w auth.Identity) (*models.Request, *models.Bid) {
	t.Helper()
	req := f.openRequest(t, owner)
	bid := f.bid(t, w, req.ID, 250)
	req, err := f.competition.AcceptBid(context.Background(), owner, req.ID, bid.ID)
	if err != nil {
		t.Fatalf("accept bid: %v", err)
	}
	return req, bid
}
