package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"
)

// ServerClient читает серверное состояние запросов цены клиента.
type ServerClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewServerClient(baseURL, token string, timeout time.Duration) *ServerClient {
	return &ServerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchTracked загружает /api/quotes/tracked и переводит ответ в записи кэша.
func (c *ServerClient) FetchTracked(ctx context.Context) ([]Entry, error) {
	var quotes []models.TrackedQuote
	if err := c.call(ctx, http.MethodGet, "/api/quotes/tracked", &quotes); err != nil {
		return nil, fmt.Errorf("fetch tracked quotes: %w", err)
	}
	entries := make([]Entry, 0, len(quotes))
	for _, q := range quotes {
		entries = append(entries, FromServer(q))
	}
	return entries, nil
}

// PublishRequest делает заявку видимой мастерским: черновик публикуется,
// уже открытая заявка остается как есть, закрытая дает InvalidState.
func (c *ServerClient) PublishRequest(ctx context.Context, requestID string) error {
	var view models.CompetitionView
	if err := c.call(ctx, http.MethodGet, "/api/requests/"+url.PathEscape(requestID)+"/competition", &view); err != nil {
		return fmt.Errorf("read request %s: %w", requestID, err)
	}
	if view.Customer == nil {
		return models.Errorf(models.KindDependencyFailure, "request %s: response without customer view", requestID)
	}

	switch status := view.Customer.Request.Status; {
	case status == models.DraftRequest:
		if err := c.call(ctx, http.MethodPut, "/api/requests/"+url.PathEscape(requestID)+"/submit", nil); err != nil {
			return fmt.Errorf("submit request %s: %w", requestID, err)
		}
		return nil
	case status.AcceptsBids():
		return nil
	default:
		return models.Errorf(models.KindInvalidState, "request %s is %s and does not accept quotes", requestID, status)
	}
}

// call выполняет запрос к API и декодирует ответ 200 в out, если он не nil.
func (c *ServerClient) call(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.Errorf(models.KindDependencyFailure, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResponse models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errorResponse) == nil && errorResponse.Message != "" {
			return models.Errorf(models.KindDependencyFailure, "%d %s", resp.StatusCode, errorResponse.Message)
		}
		return models.Errorf(models.KindDependencyFailure, "unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Sync загружает серверное состояние и сводит его с кэшем.
func (s *Store) Sync(ctx context.Context, client *ServerClient) (int, error) {
	entries, err := client.FetchTracked(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), s.SyncFromServer(ctx, entries)
}
