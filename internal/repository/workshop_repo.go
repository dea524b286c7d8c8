package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgresWorkshopRepository - реализация WorkshopRepository для базы данных.
type PostgresWorkshopRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresWorkshopRepository создаёт новый экземпляр PostgresWorkshopRepository.
func NewPostgresWorkshopRepository(db *pgxpool.Pool) *PostgresWorkshopRepository {
	return &PostgresWorkshopRepository{DB: db}
}

// GetWorkshop возвращает мастерскую с часами работы.
func (r *PostgresWorkshopRepository) GetWorkshop(ctx context.Context, workshopID string) (*models.Workshop, error) {
	workshops, err := r.GetWorkshops(ctx, []string{workshopID})
	if err != nil {
		return nil, err
	}
	if len(workshops) == 0 {
		return nil, models.Errorf(models.KindNotFound, "workshop %s not found", workshopID)
	}
	return &workshops[0], nil
}

// GetWorkshops возвращает найденные мастерские в порядке workshopIDs,
// отсутствующие пропускаются.
func (r *PostgresWorkshopRepository) GetWorkshops(ctx context.Context, workshopIDs []string) ([]models.Workshop, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, lat, lng FROM workshop WHERE id = ANY($1)`, pq.Array(workshopIDs))
	if err != nil {
		return nil, translate(err, "workshops")
	}
	defer rows.Close()

	found := make(map[string]*models.Workshop, len(workshopIDs))
	for rows.Next() {
		var (
			w        models.Workshop
			lat, lng *float64
		)
		if err := rows.Scan(&w.ID, &w.Name, &lat, &lng); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			w.Coordinates = &models.Coordinates{Lat: *lat, Lng: *lng}
		}
		found[w.ID] = &w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hours, err := r.DB.Query(ctx, `
		SELECT workshop_id, weekday, open_minute, close_minute FROM workshop_hours
		WHERE workshop_id = ANY($1) ORDER BY weekday
	`, pq.Array(workshopIDs))
	if err != nil {
		return nil, translate(err, "workshop hours")
	}
	defer hours.Close()

	for hours.Next() {
		var (
			workshopID         string
			weekday, open, end int
		)
		if err := hours.Scan(&workshopID, &weekday, &open, &end); err != nil {
			return nil, err
		}
		if w, ok := found[workshopID]; ok {
			w.Hours = append(w.Hours, models.OperatingHours{
				Weekday: time.Weekday(weekday),
				Open:    models.ClockTime(open),
				Close:   models.ClockTime(end),
			})
		}
	}
	if err := hours.Err(); err != nil {
		return nil, err
	}

	workshops := make([]models.Workshop, 0, len(found))
	for _, id := range workshopIDs {
		if w, ok := found[id]; ok {
			workshops = append(workshops, *w)
			delete(found, id)
		}
	}
	return workshops, nil
}

// SaveWorkshop создает или обновляет мастерскую и заменяет ее часы работы.
func (r *PostgresWorkshopRepository) SaveWorkshop(ctx context.Context, w *models.Workshop) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var lat, lng *float64
	if w.Coordinates != nil {
		lat, lng = &w.Coordinates.Lat, &w.Coordinates.Lng
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO workshop (id, name, lat, lng) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng
	`, w.ID, w.Name, lat, lng)
	if err != nil {
		return translate(err, "workshop")
	}

	if _, err = tx.Exec(ctx, `DELETE FROM workshop_hours WHERE workshop_id = $1`, w.ID); err != nil {
		return translate(err, "workshop hours")
	}
	for _, h := range w.Hours {
		_, err = tx.Exec(ctx, `
			INSERT INTO workshop_hours (workshop_id, weekday, open_minute, close_minute) VALUES ($1, $2, $3, $4)
		`, w.ID, int(h.Weekday), int(h.Open), int(h.Close))
		if err != nil {
			return translate(err, "workshop hours")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
