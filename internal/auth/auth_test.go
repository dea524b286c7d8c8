package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	a := NewAuthenticator(secret)
	now := time.Now()

	cases := []struct {
		name     string
		identity Identity
		want     Identity
		wantErr  bool
	}{
		{
			name:     "customer",
			identity: Identity{UserID: "u-1", Role: RoleCustomer, WorkshopID: "ignored"},
			want:     Identity{UserID: "u-1", Role: RoleCustomer},
		},
		{
			name:     "workshop",
			identity: Identity{UserID: "u-2", Role: RoleWorkshop, WorkshopID: "ws-1"},
			want:     Identity{UserID: "u-2", Role: RoleWorkshop, WorkshopID: "ws-1"},
		},
		{name: "workshop without id", identity: Identity{UserID: "u-3", Role: RoleWorkshop}, wantErr: true},
		{name: "unknown role", identity: Identity{UserID: "u-4", Role: "admin"}, wantErr: true},
		{name: "missing user", identity: Identity{Role: RoleCustomer}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := a.Issue(tc.identity, now, time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			got, err := a.Parse(token)
			if tc.wantErr {
				if !errors.Is(err, models.ErrAuthenticationRequired) {
					t.Fatalf("expected authentication error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	a := NewAuthenticator(secret)

	expired, _ := a.Issue(Identity{UserID: "u-1", Role: RoleCustomer}, time.Now().Add(-2*time.Hour), time.Hour)
	foreign, _ := NewAuthenticator("other").Issue(Identity{UserID: "u-1", Role: RoleCustomer}, time.Now(), time.Hour)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1", Role: "customer"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{"expired": expired, "foreign secret": foreign, "alg none": none, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Parse(token); !errors.Is(err, models.ErrAuthenticationRequired) {
				t.Fatalf("expected authentication error, got %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator(secret)
	token, _ := a.Issue(Identity{UserID: "u-1", Role: RoleWorkshop, WorkshopID: "ws-1"}, time.Now(), time.Hour)

	var seen Identity
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}

	if seen.WorkshopID != "ws-1" || !seen.IsWorkshop() {
		t.Fatalf("identity not propagated: %+v", seen)
	}
}

func TestRoleChecks(t *testing.T) {
	customer := Identity{UserID: "u-1", Role: RoleCustomer}
	workshop := Identity{UserID: "u-2", Role: RoleWorkshop, WorkshopID: "ws-1"}

	if customer.RequireCustomer() != nil || workshop.RequireWorkshop() != nil {
		t.Fatalf("expected role checks to pass")
	}
	if !errors.Is(customer.RequireWorkshop(), models.ErrAuthorizationDenied) {
		t.Fatalf("customer must not pass workshop check")
	}
	if !errors.Is(workshop.RequireCustomer(), models.ErrAuthorizationDenied) {
		t.Fatalf("workshop must not pass customer check")
	}
}
