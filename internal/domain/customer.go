package domain

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"
)

// DivisionLookup resolves the first-level division and country names
// denormalized onto a Customer.
type DivisionLookup interface {
	// Division returns the division name and owning country ID.
	Division(ctx context.Context, divisionID int64) (string, int64, error)
	CountryName(ctx context.Context, countryID int64) (string, error)
}

// Customer is one customer record. DivisionName, CountryID and CountryName
// are denormalized from the division reference for display; DivisionID is
// the authoritative field.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID            int64  `bun:"id,pk"`
	Name          string `bun:"name,notnull"`
	Address       string `bun:"address"`
	PostalCode    string `bun:"postal_code"`
	PhoneNumber   string `bun:"phone_number"`
	DivisionID    int64  `bun:"division_id,notnull"`
	CreateDate    string `bun:"create_date"`
	CreatedBy     string `bun:"created_by"`
	LastUpdate    string `bun:"last_update"`
	LastUpdatedBy string `bun:"last_updated_by"`

	DivisionName string `bun:"-"`
	CountryID    int64  `bun:"-"`
	CountryName  string `bun:"-"`
}

// ResolveDivision fills the denormalized division and country fields from
// the customer's division ID. Failed lookups leave the fields blank and log.
func (c *Customer) ResolveDivision(ctx context.Context, divisions DivisionLookup, log *slog.Logger) {
	if divisions == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	division, countryID, err := divisions.Division(ctx, c.DivisionID)
	if err != nil {
		log.Warn("division lookup failed",
			slog.Int64("division_id", c.DivisionID),
			slog.Any("err", err),
		)
		return
	}
	c.DivisionName = division
	c.CountryID = countryID

	country, err := divisions.CountryName(ctx, countryID)
	if err != nil {
		log.Warn("country lookup failed",
			slog.Int64("country_id", countryID),
			slog.Any("err", err),
		)
		return
	}
	c.CountryName = country
}
