package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

// LookupRepo serves the denormalized-name lookups: it implements both
// domain.NameLookup and domain.DivisionLookup.
type LookupRepo struct {
	db *bun.DB
}

func NewLookupRepo(db *bun.DB) *LookupRepo {
	return &LookupRepo{db: db}
}

func (r *LookupRepo) CustomerName(ctx context.Context, customerID int64) (string, error) {
	var name string
	err := r.db.NewSelect().
		Model((*domain.Customer)(nil)).
		Column("name").
		Where("id = ?", customerID).
		Limit(1).
		Scan(ctx, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *LookupRepo) ContactName(ctx context.Context, contactID int64) (string, error) {
	var name string
	err := r.db.NewSelect().
		Model((*domain.Contact)(nil)).
		Column("name").
		Where("id = ?", contactID).
		Limit(1).
		Scan(ctx, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *LookupRepo) Division(ctx context.Context, divisionID int64) (string, int64, error) {
	var row domain.FirstLevelDivision
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", divisionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, store.ErrNotFound
		}
		return "", 0, err
	}
	return row.Name, row.CountryID, nil
}

func (r *LookupRepo) CountryName(ctx context.Context, countryID int64) (string, error) {
	var name string
	err := r.db.NewSelect().
		Model((*domain.Country)(nil)).
		Column("name").
		Where("id = ?", countryID).
		Limit(1).
		Scan(ctx, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return name, nil
}
