package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

func TestStoreSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quotes/tracked" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "authorization required"})
			return
		}
		json.NewEncoder(w).Encode([]models.TrackedQuote{
			{RequestID: "car1", WorkshopID: "ws1", WorkshopName: "North Garage", BidID: "b-1", Status: "accepted", UpdatedAt: start.Add(time.Hour)},
			{RequestID: "car2", WorkshopID: "ws1", WorkshopName: "North Garage", BidID: "b-2", Status: "quoted", UpdatedAt: start},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	s, _ := newStore()
	if err := s.MarkSent(ctx, sent(car1)); err != nil {
		t.Fatal(err)
	}

	n, err := s.Sync(ctx, NewServerClient(srv.URL+"/", "tok", time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 server entries, got %d", n)
	}
	if s.HasQuoteSent("car1", "ws1") {
		t.Fatal("accepted on the server must unblock a new send")
	}
	if got := s.Entry("car2", "ws1"); got == nil || got.BidID != "b-2" || got.LinkedRequestID != "car2" {
		t.Fatalf("unexpected synced entry: %+v", got)
	}

	_, err = s.Sync(ctx, NewServerClient(srv.URL, "wrong", time.Second))
	if !errors.Is(err, models.ErrDependencyFailure) {
		t.Fatalf("expected dependency failure, got %v", err)
	}
}

func TestPublishRequest(t *testing.T) {
	statuses := map[string]models.RequestStatus{
		"r-draft":     models.DraftRequest,
		"r-quoted":    models.QuotedRequest,
		"r-cancelled": models.CancelledRequest,
	}
	var submitted []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		status, ok := statuses[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "request not found"})
			return
		}
		if r.Method == http.MethodPut {
			submitted = append(submitted, id)
			json.NewEncoder(w).Encode(models.Request{ID: id, Status: models.SubmittedRequest})
			return
		}
		json.NewEncoder(w).Encode(models.CompetitionView{Customer: &models.CustomerView{Request: models.Request{ID: id, Status: status}}})
	})
	mux := http.NewServeMux()
	mux.Handle("GET /api/requests/{id}/competition", handler)
	mux.Handle("PUT /api/requests/{id}/submit", handler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewServerClient(srv.URL, "tok", time.Second)
	ctx := context.Background()

	cases := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "draft is submitted", id: "r-draft"},
		{name: "open request is left alone", id: "r-quoted"},
		{name: "closed request", id: "r-cancelled", wantErr: models.ErrInvalidState},
		{name: "unknown request", id: "r-missing", wantErr: models.ErrDependencyFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := client.PublishRequest(ctx, tc.id)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if len(submitted) != 1 || submitted[0] != "r-draft" {
		t.Fatalf("only the draft must be submitted, got %v", submitted)
	}
}
