package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const requestColumns = `id, customer_id, vehicle_make, vehicle_model, vehicle_year, vehicle_plate,
	service_categories, description, lat, lng, status, expires_at, accepted_bid_id, created_at, updated_at`

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRequestRepository создаёт новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		req        models.Request
		categories []string
		lat, lng   *float64
	)
	if err := row.Scan(
		&req.ID,
		&req.CustomerID,
		&req.Vehicle.Make,
		&req.Vehicle.Model,
		&req.Vehicle.Year,
		&req.Vehicle.Plate,
		&categories,
		&req.Description,
		&lat,
		&lng,
		&req.Status,
		&req.ExpiresAt,
		&req.AcceptedBidID,
		&req.CreatedAt,
		&req.UpdatedAt); err != nil {
		return nil, err
	}
	for _, c := range categories {
		req.ServiceCategories = append(req.ServiceCategories, models.ServiceCategory(c))
	}
	if lat != nil && lng != nil {
		req.Location = &models.Coordinates{Lat: *lat, Lng: *lng}
	}
	return &req, nil
}

// CreateRequest сохраняет новую заявку.
func (r *PostgresRequestRepository) CreateRequest(ctx context.Context, req *models.Request) error {
	var lat, lng *float64
	if req.Location != nil {
		lat, lng = &req.Location.Lat, &req.Location.Lng
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO request (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		req.ID,
		req.CustomerID,
		req.Vehicle.Make,
		req.Vehicle.Model,
		req.Vehicle.Year,
		req.Vehicle.Plate,
		categoryStrings(req.ServiceCategories),
		req.Description,
		lat,
		lng,
		req.Status,
		req.ExpiresAt,
		req.AcceptedBidID,
		req.CreatedAt,
		req.UpdatedAt)
	if err != nil {
		return translate(err, "request")
	}
	return nil
}

// GetRequest возвращает заявку вместе со ставками.
func (r *PostgresRequestRepository) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	req, err := scanRequest(r.DB.QueryRow(ctx, `SELECT `+requestColumns+` FROM request WHERE id = $1`, requestID))
	if err != nil {
		return nil, translate(err, "request")
	}

	bids, err := r.bidsFor(ctx, []string{req.ID})
	if err != nil {
		return nil, err
	}
	req.Bids = bids[req.ID]
	return req, nil
}

// TransitionRequest меняет статус заявки, если он все еще равен From.
func (r *PostgresRequestRepository) TransitionRequest(ctx context.Context, t RequestTransition) (*models.Request, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE request SET status = $3, expires_at = COALESCE($4, expires_at), updated_at = $5
		WHERE id = $1 AND status = $2
	`, t.RequestID, t.From, t.To, t.ExpiresAt, t.At)
	if err != nil {
		return nil, translate(err, "request")
	}
	if tag.RowsAffected() == 0 {
		return nil, r.missingOrChanged(ctx, tx, t.RequestID)
	}

	if t.CloseBids != "" {
		_, err = tx.Exec(ctx, `
			UPDATE bid SET status = $2, updated_at = $3
			WHERE request_id = $1 AND status = ANY($4)
		`, t.RequestID, t.CloseBids, t.At, pq.Array(openBidStatuses()))
		if err != nil {
			return nil, translate(err, "bid")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetRequest(ctx, t.RequestID)
}

// ListOpenRequests возвращает заявки, принимающие ставки.
func (r *PostgresRequestRepository) ListOpenRequests(ctx context.Context, f OpenRequestsFilter) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request`
	filters := []string{
		`status IN ('submitted', 'quoted')`,
		`(expires_at IS NULL OR expires_at > $1)`,
	}
	args := []interface{}{f.Now}
	argIndex := 2

	if len(f.Categories) > 0 {
		filters = append(filters, fmt.Sprintf("service_categories && $%d", argIndex))
		args = append(args, pq.Array(f.Categories))
		argIndex++
	}

	query += " WHERE " + strings.Join(filters, " AND ")
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "requests")
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// ListCustomerRequests возвращает заявки клиента вместе со ставками.
func (r *PostgresRequestRepository) ListCustomerRequests(ctx context.Context, customerID string) ([]models.Request, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+requestColumns+` FROM request WHERE customer_id = $1 ORDER BY created_at`, customerID)
	if err != nil {
		return nil, translate(err, "requests")
	}
	defer rows.Close()

	var (
		requests []models.Request
		ids      []string
	)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
		ids = append(ids, req.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	bids, err := r.bidsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Bids = bids[requests[i].ID]
	}
	return requests, nil
}

// missingOrChanged различает отсутствующую заявку и конкурентное изменение.
func (r *PostgresRequestRepository) missingOrChanged(ctx context.Context, tx pgx.Tx, requestID string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM request WHERE id = $1)`, requestID).Scan(&exists); err != nil {
		return translate(err, "request")
	}
	if !exists {
		return models.Errorf(models.KindNotFound, "request %s not found", requestID)
	}
	return models.Errorf(models.KindConflict, "request %s was modified concurrently", requestID)
}
