package store

import (
	"context"
	"time"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
)

// AppointmentWindow is the shape of an appointment's time range at the
// storage boundary: canonical UTC strings, zone implied by convention.
type AppointmentWindow struct {
	StartUTC string
	EndUTC   string
}

// AppointmentTx is the storage surface available inside a per-customer
// transaction. Conflict checks and the write they guard run against the
// same tx so concurrent writers for one customer serialize.
type AppointmentTx interface {
	MaxAppointmentID(ctx context.Context) (int64, error)
	AppointmentsForCustomer(ctx context.Context, customerID, excludeAppointmentID int64) ([]AppointmentWindow, error)
	InsertAppointment(ctx context.Context, appt *domain.Appointment) error
	UpdateAppointment(ctx context.Context, appt *domain.Appointment) error
	DeleteAppointment(ctx context.Context, appointmentID int64) error
}

type AppointmentStore interface {
	// InCustomerTx runs fn inside a transaction holding the customer's
	// schedule lock.
	InCustomerTx(ctx context.Context, customerID int64, fn func(ctx context.Context, tx AppointmentTx) error) error

	ListRange(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Appointment, error)
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	ListForContact(ctx context.Context, contactID int64) ([]domain.Appointment, error)
	Delete(ctx context.Context, appointmentID int64) error
}
