// Package reports computes the tabular reports the main screen offers:
// appointment counts by type, counts by calendar month, and a per-contact
// schedule.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month time.Month `json:"month"`
	Name  string     `json:"name"`
	Count int        `json:"count"`
}

type Service struct {
	repo store.AppointmentStore
}

func NewService(repo store.AppointmentStore) *Service {
	return &Service{repo: repo}
}

// CountByType returns the number of appointments per distinct type, sorted
// by type name.
func (s *Service) CountByType(ctx context.Context) ([]TypeCount, error) {
	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range appts {
		counts[a.Type]++
	}

	out := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// CountByMonth returns twelve entries, January through December, counting
// appointments by the calendar month of their UTC start.
func (s *Service) CountByMonth(ctx context.Context) ([]MonthCount, error) {
	appts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var counts [12]int
	for _, a := range appts {
		counts[a.StartUTC.UTC().Month()-1]++
	}

	out := make([]MonthCount, 0, 12)
	for i, n := range counts {
		m := time.Month(i + 1)
		out = append(out, MonthCount{Month: m, Name: m.String(), Count: n})
	}
	return out, nil
}

// ContactSchedule returns one contact's appointments ordered by start,
// localized to loc.
func (s *Service) ContactSchedule(ctx context.Context, contactID int64, loc *time.Location) ([]domain.Appointment, error) {
	appts, err := s.repo.ListForContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	for i := range appts {
		appts[i].Localize(loc)
	}
	return appts, nil
}
