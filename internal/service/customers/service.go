package customers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Clock supplies the current instant for audit timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service owns customer CRUD and the country/division reference lookups the
// customer form needs.
type Service struct {
	repo      store.CustomerStore
	divisions domain.DivisionLookup
	clock     Clock
	log       *slog.Logger
}

func NewService(repo store.CustomerStore, divisions domain.DivisionLookup, clock Clock, log *slog.Logger) *Service {
	if clock == nil {
		clock = systemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, divisions: divisions, clock: clock, log: log.With(slog.String("component", "customers"))}
}

// List returns all customers with their division and country names resolved.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ResolveDivision(ctx, s.divisions, s.log)
	}
	return out, nil
}

// ByID returns one customer with denormalized names resolved.
func (s *Service) ByID(ctx context.Context, customerID int64) (domain.Customer, error) {
	c, err := s.repo.ByID(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	c.ResolveDivision(ctx, s.divisions, s.log)
	return c, nil
}

// Create validates and inserts a customer. A zero ID is assigned max(id)+1.
func (s *Service) Create(ctx context.Context, c *domain.Customer, actor string) error {
	if err := validate(c); err != nil {
		return err
	}

	now := timeconv.FormatStorage(s.clock.Now())
	c.CreateDate = now
	c.CreatedBy = actor
	c.LastUpdate = now
	c.LastUpdatedBy = actor

	if c.ID == 0 {
		maxID, err := s.repo.MaxCustomerID(ctx)
		if err != nil {
			return err
		}
		c.ID = maxID + 1
	}
	return s.repo.Insert(ctx, c)
}

// Update overwrites the persisted customer with the same ID.
func (s *Service) Update(ctx context.Context, c *domain.Customer, actor string) error {
	if err := validate(c); err != nil {
		return err
	}

	c.LastUpdate = timeconv.FormatStorage(s.clock.Now())
	c.LastUpdatedBy = actor
	return s.repo.Update(ctx, c)
}

// Delete removes a customer. The store refuses with ErrConflict while the
// customer still has appointments.
func (s *Service) Delete(ctx context.Context, customerID int64) error {
	return s.repo.Delete(ctx, customerID)
}

// Countries lists the selectable countries for the customer form.
func (s *Service) Countries(ctx context.Context) ([]domain.Country, error) {
	return s.repo.Countries(ctx)
}

// DivisionsForCountry lists the selectable first-level divisions of one
// country.
func (s *Service) DivisionsForCountry(ctx context.Context, countryID int64) ([]domain.FirstLevelDivision, error) {
	return s.repo.DivisionsForCountry(ctx, countryID)
}

func validate(c *domain.Customer) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", c.Name},
		{"address", c.Address},
		{"postal_code", c.PostalCode},
		{"phone_number", c.PhoneNumber},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return validationError(f.name + " is required")
		}
	}
	if c.DivisionID == 0 {
		return validationError("division_id is required")
	}
	return nil
}
