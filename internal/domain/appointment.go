package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

// NameLookup resolves the display names denormalized onto an Appointment.
// The names are a display convenience only; the IDs stay authoritative.
type NameLookup interface {
	CustomerName(ctx context.Context, customerID int64) (string, error)
	ContactName(ctx context.Context, contactID int64) (string, error)
}

// Appointment is one scheduled meeting. Start and end are canonical in UTC;
// the local representations are derived caches and must never be set
// independently, which is why they are unexported and only move through
// SetStart/SetEnd/Localize.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID            int64     `bun:"id,pk"`
	Title         string    `bun:"title,notnull"`
	Description   string    `bun:"description"`
	Location      string    `bun:"location"`
	Type          string    `bun:"type,notnull"`
	StartUTC      time.Time `bun:"start_time,notnull"`
	EndUTC        time.Time `bun:"end_time,notnull"`
	CreateDate    string    `bun:"create_date"`
	CreatedBy     string    `bun:"created_by"`
	LastUpdate    string    `bun:"last_update"`
	LastUpdatedBy string    `bun:"last_updated_by"`
	CustomerID    int64     `bun:"customer_id,notnull"`
	UserID        int64     `bun:"user_id,notnull"`
	ContactID     int64     `bun:"contact_id,notnull"`

	CustomerName string `bun:"-"`
	ContactName  string `bun:"-"`

	startLocal time.Time
	endLocal   time.Time
}

// SetStart interprets the calendar fields as wall-clock time in loc and
// recomputes both the UTC and local start caches together.
func (a *Appointment) SetStart(year int, month time.Month, day, hour, minute, second int, loc *time.Location) error {
	utc, err := timeconv.ToUTC(year, month, day, hour, minute, second, loc)
	if err != nil {
		return err
	}
	a.StartUTC = utc
	a.startLocal = timeconv.UTCToLocal(utc, loc)
	return nil
}

// SetEnd is the end-time counterpart of SetStart.
func (a *Appointment) SetEnd(year int, month time.Month, day, hour, minute, second int, loc *time.Location) error {
	utc, err := timeconv.ToUTC(year, month, day, hour, minute, second, loc)
	if err != nil {
		return err
	}
	a.EndUTC = utc
	a.endLocal = timeconv.UTCToLocal(utc, loc)
	return nil
}

// Localize recomputes the cached local representations from the canonical
// UTC instants, for appointments loaded straight from storage.
func (a *Appointment) Localize(loc *time.Location) {
	a.startLocal = timeconv.UTCToLocal(a.StartUTC, loc)
	a.endLocal = timeconv.UTCToLocal(a.EndUTC, loc)
}

func (a *Appointment) StartLocal() time.Time { return a.startLocal }
func (a *Appointment) EndLocal() time.Time   { return a.endLocal }

// StartStorage returns the start instant in the canonical storage format.
func (a *Appointment) StartStorage() string { return timeconv.FormatStorage(a.StartUTC) }

// EndStorage returns the end instant in the canonical storage format.
func (a *Appointment) EndStorage() string { return timeconv.FormatStorage(a.EndUTC) }

// StartDisplay returns the start instant formatted for end users, in the
// zone the appointment was last localized to.
func (a *Appointment) StartDisplay() string {
	return a.startLocal.Format(timeconv.DisplayLayout)
}

func (a *Appointment) EndDisplay() string {
	return a.endLocal.Format(timeconv.DisplayLayout)
}

// HydrateAppointmentInput carries an appointment row as it exists at the
// storage boundary: timestamps as canonical UTC strings, names absent.
type HydrateAppointmentInput struct {
	ID            int64
	Title         string
	Description   string
	Location      string
	Type          string
	StartUTC      string
	EndUTC        string
	CreateDate    string
	CreatedBy     string
	LastUpdate    string
	LastUpdatedBy string
	CustomerID    int64
	UserID        int64
	ContactID     int64
}

// HydrateAppointment builds an Appointment from raw storage fields. The
// timestamp strings must match the canonical storage format. Display names
// are resolved through names; a failed lookup leaves the name blank and logs
// rather than failing the whole hydration.
func HydrateAppointment(ctx context.Context, in HydrateAppointmentInput, names NameLookup, loc *time.Location, log *slog.Logger) (*Appointment, error) {
	if log == nil {
		log = slog.Default()
	}

	start, err := timeconv.ParseStorage(in.StartUTC)
	if err != nil {
		return nil, err
	}
	end, err := timeconv.ParseStorage(in.EndUTC)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		ID:            in.ID,
		Title:         in.Title,
		Description:   in.Description,
		Location:      in.Location,
		Type:          in.Type,
		StartUTC:      start,
		EndUTC:        end,
		CreateDate:    in.CreateDate,
		CreatedBy:     in.CreatedBy,
		LastUpdate:    in.LastUpdate,
		LastUpdatedBy: in.LastUpdatedBy,
		CustomerID:    in.CustomerID,
		UserID:        in.UserID,
		ContactID:     in.ContactID,
	}
	a.Localize(loc)
	a.ResolveNames(ctx, names, log)

	return a, nil
}

// ResolveNames fills the denormalized customer and contact names. A failed
// lookup leaves the name blank and logs rather than failing the caller.
func (a *Appointment) ResolveNames(ctx context.Context, names NameLookup, log *slog.Logger) {
	if names == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	if name, err := names.CustomerName(ctx, a.CustomerID); err != nil {
		log.Warn("customer name lookup failed",
			slog.Int64("customer_id", a.CustomerID),
			slog.Any("err", err),
		)
	} else {
		a.CustomerName = name
	}
	if name, err := names.ContactName(ctx, a.ContactID); err != nil {
		log.Warn("contact name lookup failed",
			slog.Int64("contact_id", a.ContactID),
			slog.Any("err", err),
		)
	} else {
		a.ContactName = name
	}
}
