package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

type CustomerRepo struct {
	db *bun.DB
}

func NewCustomerRepo(db *bun.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	var rows []domain.Customer
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomerRepo) ByID(ctx context.Context, customerID int64) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.NewSelect().
		Model(&c).
		Where("id = ?", customerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, store.ErrNotFound
		}
		return domain.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepo) MaxCustomerID(ctx context.Context) (int64, error) {
	var maxID sql.NullInt64
	err := r.db.NewSelect().
		Model((*domain.Customer)(nil)).
		ColumnExpr("MAX(id)").
		Scan(ctx, &maxID)
	if err != nil {
		return 0, err
	}
	return maxID.Int64, nil
}

func (r *CustomerRepo) Insert(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.NewInsert().Model(c).Exec(ctx)
	return mapWriteError(err)
}

func (r *CustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.NewUpdate().
		Model(c).
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

// Delete removes a customer. The appointments foreign key is RESTRICT, so
// deleting a customer that still has appointments surfaces as ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, customerID int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Customer)(nil)).
		Where("id = ?", customerID).
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

func (r *CustomerRepo) Countries(ctx context.Context) ([]domain.Country, error) {
	var rows []domain.Country
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomerRepo) DivisionsForCountry(ctx context.Context, countryID int64) ([]domain.FirstLevelDivision, error) {
	var rows []domain.FirstLevelDivision
	err := r.db.NewSelect().
		Model(&rows).
		Where("country_id = ?", countryID).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
