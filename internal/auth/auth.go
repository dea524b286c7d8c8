// Package auth превращает bearer-токен в Identity вызывающего и кладет ее
// в контекст запроса. Выпуск токенов остается за внешним сервисом сессий,
// Issue нужен для локальной разработки и тестов.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
	"github.com/senyabanana/repair-quotes/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorkshop Role = "workshop"
)

// Identity - аутентифицированный участник запроса.
type Identity struct {
	UserID     string
	Role       Role
	WorkshopID string // Заполнено только для роли workshop
}

// IsCustomer сообщает, что вызывающий - клиент.
func (i Identity) IsCustomer() bool { return i.Role == RoleCustomer }

// IsWorkshop сообщает, что вызывающий представляет мастерскую.
func (i Identity) IsWorkshop() bool { return i.Role == RoleWorkshop && i.WorkshopID != "" }

// RequireCustomer возвращает AuthorizationDenied для всех, кроме клиентов.
func (i Identity) RequireCustomer() error {
	if !i.IsCustomer() {
		return models.NewErrorResponse(models.KindAuthorizationDenied, "operation requires customer role")
	}
	return nil
}

// RequireWorkshop возвращает AuthorizationDenied для всех, кроме мастерских.
func (i Identity) RequireWorkshop() error {
	if !i.IsWorkshop() {
		return models.NewErrorResponse(models.KindAuthorizationDenied, "operation requires workshop role")
	}
	return nil
}

// Claims - полезная нагрузка токена.
type Claims struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	WorkshopID string `json:"workshop_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator проверяет и выпускает токены HS256.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator создает Authenticator с общим секретом.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Parse проверяет подпись и срок токена и возвращает Identity.
func (a *Authenticator) Parse(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, models.NewErrorResponse(models.KindAuthenticationRequired, "invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return Identity{}, models.NewErrorResponse(models.KindAuthenticationRequired, "invalid token claims")
	}

	identity := Identity{UserID: claims.UserID, Role: Role(claims.Role), WorkshopID: claims.WorkshopID}
	switch identity.Role {
	case RoleCustomer:
		identity.WorkshopID = ""
	case RoleWorkshop:
		if identity.WorkshopID == "" {
			return Identity{}, models.NewErrorResponse(models.KindAuthenticationRequired, "workshop token without workshop_id")
		}
	default:
		return Identity{}, models.Errorf(models.KindAuthenticationRequired, "unknown role %q", claims.Role)
	}
	return identity, nil
}

// Issue подписывает токен для identity со сроком ttl.
func (a *Authenticator) Issue(identity Identity, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:     identity.UserID,
		Role:       string(identity.Role),
		WorkshopID: identity.WorkshopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Middleware требует заголовок "Authorization: Bearer <token>".
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.Split(header, " ")
		if header == "" || len(parts) != 2 || parts[0] != "Bearer" {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}

		identity, err := a.Parse(parts[1])
		if err != nil {
			utils.SendError(w, err, "authorization required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

type ctxKey struct{}

// WithIdentity кладет Identity в контекст.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// FromContext достает Identity из контекста.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(Identity)
	return identity, ok
}
