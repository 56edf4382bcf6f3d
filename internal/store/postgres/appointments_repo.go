package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type appointmentTx struct {
	tx bun.Tx
}

// InCustomerTx runs fn inside a transaction holding an advisory lock keyed
// by the customer ID, so validate-then-commit sequences for one customer
// serialize instead of racing past each other's overlap checks.
func (r *AppointmentRepo) InCustomerTx(ctx context.Context, customerID int64, fn func(ctx context.Context, tx store.AppointmentTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCustomerSchedule(ctx, tx, customerID); err != nil {
			return err
		}
		return fn(ctx, appointmentTx{tx: tx})
	})
}

func lockCustomerSchedule(ctx context.Context, tx bun.Tx, customerID int64) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(?)", customerID).Exec(ctx)
	return err
}

func (r *AppointmentRepo) ListRange(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("start_time >= ?", windowStart).
		Where("end_time <= ?", windowEnd).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListForContact(ctx context.Context, contactID int64) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("contact_id = ?", contactID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, appointmentID int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", appointmentID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t appointmentTx) MaxAppointmentID(ctx context.Context) (int64, error) {
	var maxID sql.NullInt64
	err := t.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("MAX(id)").
		Scan(ctx, &maxID)
	if err != nil {
		return 0, err
	}
	return maxID.Int64, nil
}

func (t appointmentTx) AppointmentsForCustomer(ctx context.Context, customerID, excludeAppointmentID int64) ([]store.AppointmentWindow, error) {
	var rows []domain.Appointment
	err := t.tx.NewSelect().
		Model(&rows).
		Column("start_time", "end_time").
		Where("customer_id = ?", customerID).
		Where("id != ?", excludeAppointmentID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]store.AppointmentWindow, 0, len(rows))
	for _, a := range rows {
		out = append(out, store.AppointmentWindow{
			StartUTC: timeconv.FormatStorage(a.StartUTC),
			EndUTC:   timeconv.FormatStorage(a.EndUTC),
		})
	}
	return out, nil
}

func (t appointmentTx) InsertAppointment(ctx context.Context, appt *domain.Appointment) error {
	_, err := t.tx.NewInsert().Model(appt).Exec(ctx)
	return mapWriteError(err)
}

func (t appointmentTx) UpdateAppointment(ctx context.Context, appt *domain.Appointment) error {
	res, err := t.tx.NewUpdate().
		Model(appt).
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t appointmentTx) DeleteAppointment(ctx context.Context, appointmentID int64) error {
	res, err := t.tx.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", appointmentID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapWriteError turns Postgres constraint violations into the store's
// sentinel errors: 23505 unique, 23503 foreign key.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return store.ErrConflict
		}
	}
	return err
}
