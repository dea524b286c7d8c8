package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, request_id, bid_id, customer_id, workshop_id, scheduled_date, start_minute, end_minute,
	estimated_hours, status, location_kind, location_address, created_at`

// PostgresAppointmentRepository - реализация AppointmentRepository для базы данных.
type PostgresAppointmentRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAppointmentRepository создаёт новый экземпляр PostgresAppointmentRepository.
func NewPostgresAppointmentRepository(db *pgxpool.Pool) *PostgresAppointmentRepository {
	return &PostgresAppointmentRepository{DB: db}
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var (
		a          models.Appointment
		start, end int
	)
	if err := row.Scan(
		&a.ID,
		&a.RequestID,
		&a.BidID,
		&a.CustomerID,
		&a.WorkshopID,
		&a.ScheduledDate.Time,
		&start,
		&end,
		&a.EstimatedHours,
		&a.Status,
		&a.Location.Kind,
		&a.Location.Address,
		&a.CreatedAt); err != nil {
		return nil, err
	}
	a.StartTime, a.EndTime = models.ClockTime(start), models.ClockTime(end)
	return &a, nil
}

// CreateAppointment сохраняет запись, повторно проверяя пересечения под
// транзакционной блокировкой на пару (мастерская, дата).
func (r *PostgresAppointmentRepository) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || '/' || $2))`, a.WorkshopID, a.ScheduledDate.String()); err != nil {
		return fmt.Errorf("lock workshop calendar: %w", err)
	}

	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM appointment
			WHERE workshop_id = $1 AND scheduled_date = $2 AND status <> 'cancelled'
			  AND start_minute < $4 AND $3 < end_minute
		)`, a.WorkshopID, a.ScheduledDate.Time, int(a.StartTime), int(a.EndTime)).Scan(&overlaps)
	if err != nil {
		return translate(err, "appointment")
	}
	if overlaps {
		return models.Errorf(models.KindConflict, "slot %s %s-%s was booked concurrently", a.ScheduledDate, a.StartTime, a.EndTime)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointment (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		a.ID,
		a.RequestID,
		a.BidID,
		a.CustomerID,
		a.WorkshopID,
		a.ScheduledDate.Time,
		int(a.StartTime),
		int(a.EndTime),
		a.EstimatedHours,
		a.Status,
		a.Location.Kind,
		a.Location.Address,
		a.CreatedAt)
	if err != nil {
		return translate(err, "appointment")
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetAppointment возвращает запись по идентификатору.
func (r *PostgresAppointmentRepository) GetAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	a, err := scanAppointment(r.DB.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointment WHERE id = $1`, appointmentID))
	if err != nil {
		return nil, translate(err, "appointment")
	}
	return a, nil
}

// ListWorkshopAppointments возвращает записи мастерской в диапазоне дат включительно.
func (r *PostgresAppointmentRepository) ListWorkshopAppointments(ctx context.Context, workshopID string, from, to models.Date) ([]models.Appointment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+appointmentColumns+` FROM appointment
		WHERE workshop_id = $1 AND scheduled_date BETWEEN $2 AND $3
		ORDER BY scheduled_date, start_minute
	`, workshopID, from.Time, to.Time)
	if err != nil {
		return nil, translate(err, "appointments")
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

// CancelAppointment отменяет запись и освобождает окно.
func (r *PostgresAppointmentRepository) CancelAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	a, err := scanAppointment(r.DB.QueryRow(ctx, `
		UPDATE appointment SET status = 'cancelled'
		WHERE id = $1 AND status IN ('scheduled', 'confirmed')
		RETURNING `+appointmentColumns, appointmentID))
	if err == nil {
		return a, nil
	}

	err = translate(err, "appointment")
	if models.KindOf(err) == models.KindNotFound {
		if _, getErr := r.GetAppointment(ctx, appointmentID); getErr != nil {
			return nil, getErr
		}
		return nil, models.Errorf(models.KindInvalidState, "appointment %s can no longer be cancelled", appointmentID)
	}
	return nil, err
}
