package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/lib/pq"
)

const bidColumns = `id, request_id, workshop_id, status, amount::float8, currency, valid_until, note, created_at, updated_at`

func scanBid(row rowScanner) (*models.Bid, error) {
	var bid models.Bid
	if err := row.Scan(
		&bid.ID,
		&bid.RequestID,
		&bid.WorkshopID,
		&bid.Status,
		&bid.Amount,
		&bid.Currency,
		&bid.ValidUntil,
		&bid.Note,
		&bid.CreatedAt,
		&bid.UpdatedAt); err != nil {
		return nil, err
	}
	return &bid, nil
}

// bidsFor возвращает ставки по заявкам, сгруппированные по request_id.
func (r *PostgresRequestRepository) bidsFor(ctx context.Context, requestIDs []string) (map[string][]models.Bid, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+bidColumns+` FROM bid WHERE request_id = ANY($1) ORDER BY created_at, id`, pq.Array(requestIDs))
	if err != nil {
		return nil, translate(err, "bids")
	}
	defer rows.Close()

	bids := make(map[string][]models.Bid, len(requestIDs))
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids[bid.RequestID] = append(bids[bid.RequestID], *bid)
	}
	return bids, rows.Err()
}

// InsertBid сохраняет ставку и переводит заявку submitted -> quoted.
// Заявка должна принимать ставки в момент записи.
func (r *PostgresRequestRepository) InsertBid(ctx context.Context, bid *models.Bid) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE request SET status = $2, updated_at = $3
		WHERE id = $1 AND status IN ('submitted', 'quoted') AND (expires_at IS NULL OR expires_at > $3)
	`, bid.RequestID, models.QuotedRequest, bid.CreatedAt)
	if err != nil {
		return translate(err, "request")
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrChanged(ctx, tx, bid.RequestID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bid (id, request_id, workshop_id, status, amount, currency, valid_until, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		bid.ID,
		bid.RequestID,
		bid.WorkshopID,
		bid.Status,
		bid.Amount,
		bid.Currency,
		bid.ValidUntil,
		bid.Note,
		bid.CreatedAt,
		bid.UpdatedAt)
	if err != nil {
		return translate(err, "bid")
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TransitionBid меняет статус ставки, если текущий статус входит в From.
func (r *PostgresRequestRepository) TransitionBid(ctx context.Context, t BidTransition) (*models.Bid, error) {
	bid, err := scanBid(r.DB.QueryRow(ctx, `
		UPDATE bid SET status = $4, amount = COALESCE($5, amount), valid_until = COALESCE($6, valid_until), updated_at = $7
		WHERE request_id = $1 AND id = $2 AND status = ANY($3)
		RETURNING `+bidColumns,
		t.RequestID, t.BidID, pq.Array(bidStatusStrings(t.From)), t.To, t.Amount, t.ValidUntil, t.At))
	if err == nil {
		return bid, nil
	}

	err = translate(err, "bid")
	if models.KindOf(err) == models.KindNotFound {
		return nil, models.Errorf(models.KindConflict, "bid %s is no longer in an expected status", t.BidID)
	}
	return nil, err
}

// AcceptBid атомарно принимает ставку: заявка переходит в accepted только
// если еще не имеет принятой ставки, остальные открытые ставки отклоняются.
// Проигравший конкурентный вызов получает Conflict.
func (r *PostgresRequestRepository) AcceptBid(ctx context.Context, requestID, bidID string, at time.Time) (*models.Request, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE request SET status = 'accepted', accepted_bid_id = $2, updated_at = $3
		WHERE id = $1
		  AND status IN ('submitted', 'quoted')
		  AND accepted_bid_id IS NULL
		  AND (expires_at IS NULL OR expires_at > $3)
	`, requestID, bidID, at)
	if err != nil {
		return nil, translate(err, "request")
	}
	if tag.RowsAffected() == 0 {
		return nil, r.missingOrChanged(ctx, tx, requestID)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE bid SET status = 'accepted', updated_at = $3
		WHERE request_id = $1 AND id = $2 AND status IN ('submitted', 'quoted')
	`, requestID, bidID, at)
	if err != nil {
		return nil, translate(err, "bid")
	}
	if tag.RowsAffected() == 0 {
		return nil, models.Errorf(models.KindConflict, "bid %s is no longer acceptable", bidID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE bid SET status = 'declined', updated_at = $3
		WHERE request_id = $1 AND id <> $2 AND status = ANY($4)
	`, requestID, bidID, at, pq.Array(openBidStatuses()))
	if err != nil {
		return nil, translate(err, "bid")
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetRequest(ctx, requestID)
}
