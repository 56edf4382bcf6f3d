package store

import (
	"context"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
)

type CustomerStore interface {
	List(ctx context.Context) ([]domain.Customer, error)
	ByID(ctx context.Context, customerID int64) (domain.Customer, error)
	MaxCustomerID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	// Delete fails with ErrConflict while the customer still has
	// appointments.
	Delete(ctx context.Context, customerID int64) error

	Countries(ctx context.Context) ([]domain.Country, error)
	DivisionsForCountry(ctx context.Context, countryID int64) ([]domain.FirstLevelDivision, error)
}

type UserStore interface {
	ByUsername(ctx context.Context, username string) (domain.User, error)
}

type ContactStore interface {
	List(ctx context.Context) ([]domain.Contact, error)
}
