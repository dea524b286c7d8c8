package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Тесты ниже выполняются против настоящей базы, строка подключения
// берется из TEST_POSTGRES_CONN. База очищается перед каждым тестом.
func openPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	conn := os.Getenv("TEST_POSTGRES_CONN")
	if conn == "" {
		t.Skip("TEST_POSTGRES_CONN is not set")
	}

	migration, err := migrate.New("file://../../migrations", conn)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}
	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	migration.Close()

	ctx := context.Background()
	pool, err := newTestPool(ctx, conn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, `TRUNCATE appointment, bid, request, workshop_hours, workshop CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
	return pool
}

func newTestPool(ctx context.Context, conn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 16
	return pgxpool.NewWithConfig(ctx, cfg)
}

func pgRequest(t *testing.T, repo *PostgresRequestRepository, id string) {
	t.Helper()
	err := repo.CreateRequest(context.Background(), &models.Request{
		ID:                id,
		CustomerID:        "cust-1",
		Vehicle:           models.Vehicle{Make: "Toyota", Model: "Corolla"},
		ServiceCategories: []models.ServiceCategory{models.Brakes},
		Status:            models.SubmittedRequest,
		CreatedAt:         t0,
		UpdatedAt:         t0,
	})
	if err != nil {
		t.Fatalf("create request %s: %v", id, err)
	}
}

func pgBid(requestID, bidID, workshopID string) *models.Bid {
	return &models.Bid{
		ID:         bidID,
		RequestID:  requestID,
		WorkshopID: workshopID,
		Status:     models.SubmittedBid,
		Amount:     100,
		Currency:   "USD",
		ValidUntil: t0.Add(48 * time.Hour),
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}
}

func TestPostgresDuplicateBid(t *testing.T) {
	repo := NewPostgresRequestRepository(openPostgres(t))
	ctx := context.Background()
	pgRequest(t, repo, "r-1")

	if err := repo.InsertBid(ctx, pgBid("r-1", "b-1", "ws-1")); err != nil {
		t.Fatal(err)
	}
	err := repo.InsertBid(ctx, pgBid("r-1", "b-2", "ws-1"))
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for a second bid of one workshop, got %v", err)
	}

	req, err := repo.GetRequest(ctx, "r-1")
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != models.QuotedRequest || len(req.Bids) != 1 {
		t.Fatalf("unexpected request after bids: %+v", req)
	}
}

func TestPostgresConcurrentAccept(t *testing.T) {
	repo := NewPostgresRequestRepository(openPostgres(t))
	ctx := context.Background()
	pgRequest(t, repo, "r-1")

	const bids = 8
	for i := 0; i < bids; i++ {
		if err := repo.InsertBid(ctx, pgBid("r-1", fmt.Sprintf("b-%d", i), fmt.Sprintf("ws-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)
	for i := 0; i < bids; i++ {
		wg.Add(1)
		go func(bidID string) {
			defer wg.Done()
			_, err := repo.AcceptBid(ctx, "r-1", bidID, t0.Add(time.Minute))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, models.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(fmt.Sprintf("b-%d", i))
	}
	wg.Wait()

	if accepted != 1 || conflicts != bids-1 {
		t.Fatalf("expected exactly one winner, got accepted=%d conflicts=%d", accepted, conflicts)
	}

	req, err := repo.GetRequest(ctx, "r-1")
	if err != nil {
		t.Fatal(err)
	}
	counts := map[models.BidStatus]int{}
	for _, b := range req.Bids {
		counts[b.Status]++
	}
	if req.Status != models.AcceptedRequest || req.AcceptedBidID == nil || counts[models.AcceptedBid] != 1 || counts[models.DeclinedBid] != bids-1 {
		t.Fatalf("unexpected final state: status=%s counts=%v", req.Status, counts)
	}
}

func TestPostgresBookingGuards(t *testing.T) {
	pool := openPostgres(t)
	requests := NewPostgresRequestRepository(pool)
	appointments := NewPostgresAppointmentRepository(pool)
	workshops := NewPostgresWorkshopRepository(pool)
	ctx := context.Background()

	w := &models.Workshop{ID: "ws-1", Name: "North Garage", Hours: []models.OperatingHours{{Weekday: time.Monday, Open: 8 * 60, Close: 18 * 60}}}
	if err := workshops.SaveWorkshop(ctx, w); err != nil {
		t.Fatal(err)
	}

	const attempts = 6
	monday := models.NewDate(2025, time.March, 17)
	booking := func(i int, date models.Date) *models.Appointment {
		return &models.Appointment{
			ID:             fmt.Sprintf("a-%d-%s", i, date),
			RequestID:      fmt.Sprintf("r-%d", i),
			BidID:          fmt.Sprintf("b-%d", i),
			CustomerID:     "cust-1",
			WorkshopID:     "ws-1",
			ScheduledDate:  date,
			StartTime:      10 * 60,
			EndTime:        12 * 60,
			EstimatedHours: 2,
			Status:         models.ScheduledAppointment,
			Location:       models.ServiceLocation{Kind: models.AtWorkshop},
			CreatedAt:      t0,
		}
	}
	for i := 0; i < attempts; i++ {
		requestID, bidID := fmt.Sprintf("r-%d", i), fmt.Sprintf("b-%d", i)
		pgRequest(t, requests, requestID)
		if err := requests.InsertBid(ctx, pgBid(requestID, bidID, "ws-1")); err != nil {
			t.Fatal(err)
		}
		if _, err := requests.AcceptBid(ctx, requestID, bidID, t0); err != nil {
			t.Fatal(err)
		}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winner    = -1
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := appointments.CreateAppointment(ctx, booking(i, monday))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winner = i
			case errors.Is(err, models.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if winner < 0 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one booking of the slot, winner=%d conflicts=%d", winner, conflicts)
	}

	nextMonday := monday.AddDays(7)
	if err := appointments.CreateAppointment(ctx, booking(winner, nextMonday)); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for a second booking of one bid, got %v", err)
	}

	if _, err := appointments.CancelAppointment(ctx, booking(winner, monday).ID); err != nil {
		t.Fatal(err)
	}
	if err := appointments.CreateAppointment(ctx, booking(winner, nextMonday)); err != nil {
		t.Fatalf("cancelled booking must free the bid for rescheduling: %v", err)
	}
	other := (winner + 1) % attempts
	if err := appointments.CreateAppointment(ctx, booking(other, monday)); err != nil {
		t.Fatalf("cancelled booking must free the slot: %v", err)
	}

	listed, err := appointments.ListWorkshopAppointments(ctx, "ws-1", monday, nextMonday)
	if err != nil {
		t.Fatal(err)
	}
	active := 0
	for _, a := range listed {
		if a.Status != models.CancelledAppointment {
			active++
		}
	}
	if len(listed) != 3 || active != 2 {
		t.Fatalf("unexpected calendar: %+v", listed)
	}
}
