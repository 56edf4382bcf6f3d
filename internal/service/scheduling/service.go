package scheduling

import (
	"context"
	"log/slog"
	"time"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
	"github.com/Trieuh2/scheduler-backend/internal/timeconv"
)

// Service owns the appointment lifecycle: validate-then-commit writes inside
// a per-customer transaction, calendar-range reads, and the upcoming-start
// check.
type Service struct {
	repo      store.AppointmentStore
	names     domain.NameLookup
	validator *Validator
	clock     Clock
	log       *slog.Logger
}

// NewService wires the appointment service. names may be nil, in which case
// listed appointments come back without denormalized display names.
func NewService(repo store.AppointmentStore, names domain.NameLookup, validator *Validator, clock Clock, log *slog.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:      repo,
		names:     names,
		validator: validator,
		clock:     clock,
		log:       log.With(slog.String("component", "scheduling")),
	}
}

// Create validates the appointment and inserts it. The overlap check and the
// insert run in one transaction holding the customer's schedule lock, so two
// concurrent creates for the same customer cannot both pass the check. A
// zero ID is assigned max(id)+1 inside that same transaction.
func (s *Service) Create(ctx context.Context, appt *domain.Appointment, actor string) error {
	now := timeconv.FormatStorage(s.clock.Now())
	appt.CreateDate = now
	appt.CreatedBy = actor
	appt.LastUpdate = now
	appt.LastUpdatedBy = actor

	return s.repo.InCustomerTx(ctx, appt.CustomerID, func(ctx context.Context, tx store.AppointmentTx) error {
		if err := s.validator.Validate(ctx, appt, tx); err != nil {
			return err
		}
		if appt.ID == 0 {
			maxID, err := tx.MaxAppointmentID(ctx)
			if err != nil {
				return err
			}
			appt.ID = maxID + 1
		}
		return tx.InsertAppointment(ctx, appt)
	})
}

// Update overwrites the persisted appointment with the same ID. Validation
// excludes the appointment's own row from the overlap check. Updating twice
// with identical fields produces the same row apart from the last-update
// audit stamp.
func (s *Service) Update(ctx context.Context, appt *domain.Appointment, actor string) error {
	appt.LastUpdate = timeconv.FormatStorage(s.clock.Now())
	appt.LastUpdatedBy = actor

	return s.repo.InCustomerTx(ctx, appt.CustomerID, func(ctx context.Context, tx store.AppointmentTx) error {
		if err := s.validator.Validate(ctx, appt, tx); err != nil {
			return err
		}
		return tx.UpdateAppointment(ctx, appt)
	})
}

// Delete removes the appointment entirely. There is no soft delete.
func (s *Service) Delete(ctx context.Context, appointmentID int64) error {
	return s.repo.Delete(ctx, appointmentID)
}

// ListRange returns appointments contained in [windowStart, windowEnd],
// localized to loc, ordered by start.
func (s *Service) ListRange(ctx context.Context, windowStart, windowEnd time.Time, loc *time.Location) ([]domain.Appointment, error) {
	start := windowStart.UTC()
	end := windowEnd.UTC()
	if end.Equal(start) || end.Before(start) {
		return nil, validationError(ReasonEndBeforeStart, "window end must be after window start")
	}

	appts, err := s.repo.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	s.localize(ctx, appts, loc)
	return appts, nil
}

// ListAll returns every appointment, localized to loc, ordered by start.
func (s *Service) ListAll(ctx context.Context, loc *time.Location) ([]domain.Appointment, error) {
	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.localize(ctx, appts, loc)
	return appts, nil
}

// UpcomingWithin returns appointments starting in [at, at+within], both
// boundaries inclusive.
func (s *Service) UpcomingWithin(ctx context.Context, at time.Time, within time.Duration, loc *time.Location) ([]domain.Appointment, error) {
	from := at.UTC()
	to := from.Add(within)

	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0)
	for _, a := range appts {
		start := a.StartUTC
		if start.Equal(from) || start.Equal(to) || (start.After(from) && start.Before(to)) {
			out = append(out, a)
		}
	}
	s.localize(ctx, out, loc)
	return out, nil
}

// localize projects every appointment into loc and fills denormalized names
// when a lookup is wired.
func (s *Service) localize(ctx context.Context, appts []domain.Appointment, loc *time.Location) {
	for i := range appts {
		appts[i].Localize(loc)
		appts[i].ResolveNames(ctx, s.names, s.log)
	}
}

// MonthWindow is the calendar browsing window for a month: the first day of
// the month at midnight through the last day at midnight, in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return start, lastDay
}

// WeekWindow is the calendar browsing window for one week of a month: days
// 1-7 for week 0, shifted forward seven days per week index.
func WeekWindow(year int, month time.Month, week int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 0, 7*week)
	end := time.Date(year, month, 7, 0, 0, 0, 0, loc).AddDate(0, 0, 7*week)
	return start, end
}
