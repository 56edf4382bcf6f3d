package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

// Clock supplies the current instant so the future-start check is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type ValidationReason string

const (
	ReasonMissingField         ValidationReason = "missing_field"
	ReasonNotFuture            ValidationReason = "not_future"
	ReasonEndBeforeStart       ValidationReason = "end_before_start"
	ReasonOutsideBusinessHours ValidationReason = "outside_business_hours"
	ReasonCustomerOverlap      ValidationReason = "customer_overlap"
)

type ValidationError struct {
	Reason ValidationReason
	msg    string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError builds a ValidationError with the given reason and
// user-facing message.
func NewValidationError(reason ValidationReason, msg string) *ValidationError {
	return &ValidationError{Reason: reason, msg: msg}
}

func validationError(reason ValidationReason, msg string) error {
	return NewValidationError(reason, msg)
}

// BusinessHours is the daily window appointments must fall inside,
// expressed as whole hours in Location. The window is anchored to the
// calendar date of the appointment's LOCAL start, so "business hours" stay
// meaningful from wherever the appointment's local start falls, even when
// the local date differs from the UTC date.
type BusinessHours struct {
	OpenHour  int
	CloseHour int
	Location  *time.Location
}

// Window returns the UTC open and close instants for the business day
// containing localStart's calendar date.
func (b BusinessHours) Window(localStart time.Time) (open, close time.Time) {
	year, month, day := localStart.Date()
	open = time.Date(year, month, day, b.OpenHour, 0, 0, 0, b.Location).UTC()
	close = time.Date(year, month, day, b.CloseHour, 0, 0, 0, b.Location).UTC()
	return open, close
}

// AppointmentReader is the slice of the storage surface the overlap check
// needs. store.AppointmentTx satisfies it, so the check can run inside the
// same transaction as the write it guards.
type AppointmentReader interface {
	AppointmentsForCustomer(ctx context.Context, customerID, excludeAppointmentID int64) ([]store.AppointmentWindow, error)
}

// Validator holds the scheduling constraints checked before an appointment
// is persisted.
type Validator struct {
	clock Clock
	hours BusinessHours
}

func NewValidator(clock Clock, hours BusinessHours) *Validator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Validator{clock: clock, hours: hours}
}

// StartsInFuture reports whether the appointment starts strictly after now.
// An appointment starting exactly now is not in the future.
func (v *Validator) StartsInFuture(a *domain.Appointment) bool {
	return a.StartUTC.After(v.clock.Now().UTC())
}

// EndsAfterStart reports whether the appointment ends strictly after it
// starts. Zero-duration appointments are invalid.
func (v *Validator) EndsAfterStart(a *domain.Appointment) bool {
	return a.EndUTC.After(a.StartUTC)
}

// WithinBusinessHours reports whether both the start and end instants fall
// inside the business window for the local start's calendar date. Both
// boundaries are inclusive: starting at open and ending at close are valid.
func (v *Validator) WithinBusinessHours(a *domain.Appointment) bool {
	open, close := v.hours.Window(a.StartLocal())

	start := a.StartUTC
	end := a.EndUTC

	startOK := start.Equal(open) || (start.After(open) && start.Before(close))
	endOK := end.Equal(close) || (end.Before(close) && end.After(open))
	return startOK && endOK
}

// OverlapsForCustomer reports whether the appointment's time range
// intersects any other persisted appointment for the same customer. The
// appointment's own ID is excluded so updates do not conflict with
// themselves. Intersection is full interval overlap
// (start1 < end2 && start2 < end1).
func (v *Validator) OverlapsForCustomer(ctx context.Context, a *domain.Appointment, appts AppointmentReader) (bool, error) {
	windows, err := appts.AppointmentsForCustomer(ctx, a.CustomerID, a.ID)
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		otherStart, err := timeconv.ParseStorage(w.StartUTC)
		if err != nil {
			return false, err
		}
		otherEnd, err := timeconv.ParseStorage(w.EndUTC)
		if err != nil {
			return false, err
		}
		if a.StartUTC.Before(otherEnd) && otherStart.Before(a.EndUTC) {
			return true, nil
		}
	}
	return false, nil
}

// Validate runs every scheduling check in fixed order, short-circuiting on
// the first failure so the caller always gets a deterministic message:
// required fields, future start, end after start, business hours, customer
// overlap.
func (v *Validator) Validate(ctx context.Context, a *domain.Appointment, appts AppointmentReader) error {
	if err := requiredFields(a); err != nil {
		return err
	}
	if !v.StartsInFuture(a) {
		return validationError(ReasonNotFuture, "appointment must start in the future")
	}
	if !v.EndsAfterStart(a) {
		return validationError(ReasonEndBeforeStart, "appointment end must be after its start")
	}
	if !v.WithinBusinessHours(a) {
		return validationError(ReasonOutsideBusinessHours, "appointment must fall within business hours (8:00 AM - 10:00 PM Eastern)")
	}
	overlap, err := v.OverlapsForCustomer(ctx, a, appts)
	if err != nil {
		return err
	}
	if overlap {
		return validationError(ReasonCustomerOverlap, "customer already has an appointment during that time")
	}
	return nil
}

func requiredFields(a *domain.Appointment) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", a.Title},
		{"description", a.Description},
		{"location", a.Location},
		{"type", a.Type},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return validationError(ReasonMissingField, f.name+" is required")
		}
	}
	if a.CustomerID == 0 {
		return validationError(ReasonMissingField, "customer_id is required")
	}
	if a.UserID == 0 {
		return validationError(ReasonMissingField, "user_id is required")
	}
	if a.ContactID == 0 {
		return validationError(ReasonMissingField, "contact_id is required")
	}
	return nil
}
