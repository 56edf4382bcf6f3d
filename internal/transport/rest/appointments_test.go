package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/service/scheduling"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSchedulingService struct {
	createFn    func(ctx context.Context, appt *domain.Appointment, actor string) error
	updateFn    func(ctx context.Context, appt *domain.Appointment, actor string) error
	deleteFn    func(ctx context.Context, appointmentID int64) error
	listRangeFn func(ctx context.Context, windowStart, windowEnd time.Time, loc *time.Location) ([]domain.Appointment, error)
	listAllFn   func(ctx context.Context, loc *time.Location) ([]domain.Appointment, error)
	upcomingFn  func(ctx context.Context, at time.Time, within time.Duration, loc *time.Location) ([]domain.Appointment, error)
}

func (f *fakeSchedulingService) Create(ctx context.Context, appt *domain.Appointment, actor string) error {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, appt, actor)
}

func (f *fakeSchedulingService) Update(ctx context.Context, appt *domain.Appointment, actor string) error {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, appt, actor)
}

func (f *fakeSchedulingService) Delete(ctx context.Context, appointmentID int64) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, appointmentID)
}

func (f *fakeSchedulingService) ListRange(ctx context.Context, windowStart, windowEnd time.Time, loc *time.Location) ([]domain.Appointment, error) {
	if f.listRangeFn == nil {
		panic("ListRange not configured")
	}
	return f.listRangeFn(ctx, windowStart, windowEnd, loc)
}

func (f *fakeSchedulingService) ListAll(ctx context.Context, loc *time.Location) ([]domain.Appointment, error) {
	if f.listAllFn == nil {
		panic("ListAll not configured")
	}
	return f.listAllFn(ctx, loc)
}

func (f *fakeSchedulingService) UpcomingWithin(ctx context.Context, at time.Time, within time.Duration, loc *time.Location) ([]domain.Appointment, error) {
	if f.upcomingFn == nil {
		panic("UpcomingWithin not configured")
	}
	return f.upcomingFn(ctx, at, within, loc)
}

// newAppointmentsRouter mounts the handler behind a stub that stamps the
// authenticated username, mirroring what the auth middleware does.
func newAppointmentsRouter(svc schedulingService, username string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(usernameKey, username)
		c.Next()
	})
	h := NewAppointmentsHandler(svc, slog.Default())
	r.GET("/appointments", h.List)
	r.GET("/appointments/upcoming", h.Upcoming)
	r.POST("/appointments", h.Create)
	r.PUT("/appointments/:id", h.Update)
	r.DELETE("/appointments/:id", h.Delete)
	return r
}

func validWriteBody() map[string]any {
	return map[string]any{
		"title":       "Planning",
		"description": "Quarterly planning",
		"location":    "HQ",
		"type":        "Planning Session",
		"start":       map[string]any{"year": 2026, "month": 7, "day": 15, "hour": 9, "minute": 0},
		"end":         map[string]any{"year": 2026, "month": 7, "day": 15, "hour": 10, "minute": 0},
		"time_zone":   "America/New_York",
		"customer_id": 5,
		"user_id":     1,
		"contact_id":  2,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAppointment_ConvertsZoneAndPassesActor(t *testing.T) {
	var gotAppt *domain.Appointment
	var gotActor string

	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, appt *domain.Appointment, actor string) error {
			gotAppt = appt
			gotActor = actor
			appt.ID = 7
			return nil
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodPost, "/appointments", validWriteBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotActor != "admin" {
		t.Fatalf("actor = %q, want %q", gotActor, "admin")
	}

	// 9:00 Eastern in July is 13:00 UTC.
	wantStart := time.Date(2026, 7, 15, 13, 0, 0, 0, time.UTC)
	if !gotAppt.StartUTC.Equal(wantStart) {
		t.Fatalf("StartUTC = %v, want %v", gotAppt.StartUTC, wantStart)
	}

	var resp appointmentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 7 {
		t.Fatalf("id = %d, want 7", resp.ID)
	}
	if resp.Start != "2026-07-15 13:00:00" {
		t.Fatalf("start = %q", resp.Start)
	}
	if resp.StartDisplay != "2026-07-15 9:00 AM" {
		t.Fatalf("start_display = %q", resp.StartDisplay)
	}
}

func TestCreateAppointment_OverlapMapsToConflict(t *testing.T) {
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, appt *domain.Appointment, actor string) error {
			return scheduling.NewValidationError(scheduling.ReasonCustomerOverlap, "customer already has an appointment during that time")
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodPost, "/appointments", validWriteBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusConflict, w.Body.String())
	}
}

func TestCreateAppointment_ValidationMapsToBadRequest(t *testing.T) {
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, appt *domain.Appointment, actor string) error {
			return scheduling.NewValidationError(scheduling.ReasonNotFuture, "appointment must start in the future")
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodPost, "/appointments", validWriteBody())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestCreateAppointment_RejectsUnknownZone(t *testing.T) {
	body := validWriteBody()
	body["time_zone"] = "Mars/Olympus_Mons"

	r := newAppointmentsRouter(&fakeSchedulingService{}, "admin")
	w := doJSON(t, r, http.MethodPost, "/appointments", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateAppointment_RejectsImpossibleDate(t *testing.T) {
	body := validWriteBody()
	body["start"] = map[string]any{"year": 2026, "month": 2, "day": 30, "hour": 9}

	r := newAppointmentsRouter(&fakeSchedulingService{}, "admin")
	w := doJSON(t, r, http.MethodPost, "/appointments", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestListAppointments_MonthViewPassesCalendarWindow(t *testing.T) {
	var gotStart, gotEnd time.Time

	svc := &fakeSchedulingService{
		listRangeFn: func(ctx context.Context, windowStart, windowEnd time.Time, loc *time.Location) ([]domain.Appointment, error) {
			gotStart = windowStart
			gotEnd = windowEnd
			return nil, nil
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodGet, "/appointments?view=month&year=2026&month=2&tz=UTC", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	wantStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !gotStart.Equal(wantStart) || !gotEnd.Equal(wantEnd) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", gotStart, gotEnd, wantStart, wantEnd)
	}
}

func TestListAppointments_RejectsUnknownView(t *testing.T) {
	r := newAppointmentsRouter(&fakeSchedulingService{}, "admin")
	w := doJSON(t, r, http.MethodGet, "/appointments?view=fortnight", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteAppointment_NotFoundMapsTo404(t *testing.T) {
	svc := &fakeSchedulingService{
		deleteFn: func(ctx context.Context, appointmentID int64) error {
			return store.ErrNotFound
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodDelete, "/appointments/42", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpcoming_DefaultsToFifteenMinutes(t *testing.T) {
	var gotWithin time.Duration

	svc := &fakeSchedulingService{
		upcomingFn: func(ctx context.Context, at time.Time, within time.Duration, loc *time.Location) ([]domain.Appointment, error) {
			gotWithin = within
			return nil, nil
		},
	}
	r := newAppointmentsRouter(svc, "admin")

	w := doJSON(t, r, http.MethodGet, "/appointments/upcoming", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if gotWithin != 15*time.Minute {
		t.Fatalf("within = %v, want %v", gotWithin, 15*time.Minute)
	}
}
