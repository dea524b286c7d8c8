package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tracked_quote(
  request_id TEXT NOT NULL,
  workshop_id TEXT NOT NULL,
  status TEXT NOT NULL,
  workshop_name TEXT NOT NULL DEFAULT '',
  linked_request_id TEXT NOT NULL DEFAULT '',
  bid_id TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL DEFAULT '',
  retry_count INTEGER NOT NULL DEFAULT 0,
  metadata BLOB,
  PRIMARY KEY(request_id, workshop_id)
);

CREATE TABLE IF NOT EXISTS tracking_selection(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  request_id TEXT NOT NULL DEFAULT '',
  vehicle_id TEXT NOT NULL DEFAULT ''
);
`

// SQLitePersister хранит записи кэша в локальной базе SQLite.
type SQLitePersister struct {
	db *sqlx.DB
}

// OpenSQLite открывает базу по dsn и создает таблицы при необходимости.
func OpenSQLite(dsn string) (*SQLitePersister, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tracking schema: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

type entryRow struct {
	RequestID       string `db:"request_id"`
	WorkshopID      string `db:"workshop_id"`
	Status          string `db:"status"`
	WorkshopName    string `db:"workshop_name"`
	LinkedRequestID string `db:"linked_request_id"`
	BidID           string `db:"bid_id"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
	RetryCount      int    `db:"retry_count"`
	Metadata        []byte `db:"metadata"`
}

func (r entryRow) entry() (Entry, error) {
	e := Entry{
		RequestID:       r.RequestID,
		WorkshopID:      r.WorkshopID,
		Status:          Status(r.Status),
		WorkshopName:    r.WorkshopName,
		LinkedRequestID: r.LinkedRequestID,
		BidID:           r.BidID,
		RetryCount:      r.RetryCount,
	}
	var err error
	if e.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return e, err
	}
	if len(r.Metadata) > 0 {
		if err := decMode.Unmarshal(r.Metadata, &e.Metadata); err != nil {
			return e, err
		}
	}
	return e, nil
}

func rowOf(e Entry) (entryRow, error) {
	row := entryRow{
		RequestID:       e.RequestID,
		WorkshopID:      e.WorkshopID,
		Status:          string(e.Status),
		WorkshopName:    e.WorkshopName,
		LinkedRequestID: e.LinkedRequestID,
		BidID:           e.BidID,
		CreatedAt:       formatTime(e.CreatedAt),
		UpdatedAt:       formatTime(e.UpdatedAt),
		RetryCount:      e.RetryCount,
	}
	if len(e.Metadata) > 0 {
		meta, err := encMode.Marshal(e.Metadata)
		if err != nil {
			return row, err
		}
		row.Metadata = meta
	}
	return row, nil
}

func (p *SQLitePersister) Load(ctx context.Context) (Snapshot, error) {
	var snapshot Snapshot

	var rows []entryRow
	err := p.db.SelectContext(ctx, &rows, `
	  SELECT request_id, workshop_id, status, workshop_name, linked_request_id, bid_id,
	         created_at, updated_at, retry_count, metadata
	  FROM tracked_quote
	  ORDER BY request_id, workshop_id
	`)
	if err != nil {
		return snapshot, fmt.Errorf("load tracked quotes: %w", err)
	}
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return snapshot, fmt.Errorf("decode tracked quote %s/%s: %w", row.RequestID, row.WorkshopID, err)
		}
		snapshot.Entries = append(snapshot.Entries, e)
	}

	var selection struct {
		RequestID string `db:"request_id"`
		VehicleID string `db:"vehicle_id"`
	}
	err = p.db.GetContext(ctx, &selection, `SELECT request_id, vehicle_id FROM tracking_selection WHERE id = 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snapshot, fmt.Errorf("load tracking selection: %w", err)
	default:
		snapshot.Selection = Selection{RequestID: selection.RequestID, VehicleID: selection.VehicleID}
	}
	return snapshot, nil
}

// Save заменяет содержимое таблиц снимком в одной транзакции.
func (p *SQLitePersister) Save(ctx context.Context, snapshot Snapshot) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracked_quote`); err != nil {
		return fmt.Errorf("clear tracked quotes: %w", err)
	}
	for _, e := range snapshot.Entries {
		row, err := rowOf(e)
		if err != nil {
			return fmt.Errorf("encode tracked quote metadata: %w", err)
		}
		_, err = tx.NamedExecContext(ctx, `
		  INSERT INTO tracked_quote(request_id, workshop_id, status, workshop_name, linked_request_id, bid_id,
		                            created_at, updated_at, retry_count, metadata)
		  VALUES(:request_id, :workshop_id, :status, :workshop_name, :linked_request_id, :bid_id,
		         :created_at, :updated_at, :retry_count, :metadata)
		`, row)
		if err != nil {
			return fmt.Errorf("save tracked quote %s/%s: %w", e.RequestID, e.WorkshopID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	  INSERT INTO tracking_selection(id, request_id, vehicle_id) VALUES(1, ?, ?)
	  ON CONFLICT(id) DO UPDATE SET request_id = excluded.request_id, vehicle_id = excluded.vehicle_id
	`, snapshot.Selection.RequestID, snapshot.Selection.VehicleID)
	if err != nil {
		return fmt.Errorf("save tracking selection: %w", err)
	}
	return tx.Commit()
}
