package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/service/scheduling"
)

type schedulingService interface {
	Create(ctx context.Context, appt *domain.Appointment, actor string) error
	Update(ctx context.Context, appt *domain.Appointment, actor string) error
	Delete(ctx context.Context, appointmentID int64) error
	ListRange(ctx context.Context, windowStart, windowEnd time.Time, loc *time.Location) ([]domain.Appointment, error)
	ListAll(ctx context.Context, loc *time.Location) ([]domain.Appointment, error)
	UpcomingWithin(ctx context.Context, at time.Time, within time.Duration, loc *time.Location) ([]domain.Appointment, error)
}

type AppointmentsHandler struct {
	svc schedulingService
	log *slog.Logger
}

func NewAppointmentsHandler(svc schedulingService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.appointments")),
	}
}

// calendarFields is a wall-clock instant as the client's form fields carry
// it, interpreted in the request's time zone.
type calendarFields struct {
	Year   int `json:"year" binding:"required"`
	Month  int `json:"month" binding:"required"`
	Day    int `json:"day" binding:"required"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

type appointmentWriteRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Type        string         `json:"type"`
	Start       calendarFields `json:"start" binding:"required"`
	End         calendarFields `json:"end" binding:"required"`
	TimeZone    string         `json:"time_zone"`
	CustomerID  int64          `json:"customer_id"`
	UserID      int64          `json:"user_id"`
	ContactID   int64          `json:"contact_id"`
}

type appointmentResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Type          string `json:"type"`
	Start         string `json:"start"`
	End           string `json:"end"`
	StartDisplay  string `json:"start_display"`
	EndDisplay    string `json:"end_display"`
	CreateDate    string `json:"create_date"`
	CreatedBy     string `json:"created_by"`
	LastUpdate    string `json:"last_update"`
	LastUpdatedBy string `json:"last_updated_by"`
	CustomerID    int64  `json:"customer_id"`
	UserID        int64  `json:"user_id"`
	ContactID     int64  `json:"contact_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	ContactName   string `json:"contact_name,omitempty"`
}

func toAppointmentResponse(a *domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		Type:          a.Type,
		Start:         a.StartStorage(),
		End:           a.EndStorage(),
		StartDisplay:  a.StartDisplay(),
		EndDisplay:    a.EndDisplay(),
		CreateDate:    a.CreateDate,
		CreatedBy:     a.CreatedBy,
		LastUpdate:    a.LastUpdate,
		LastUpdatedBy: a.LastUpdatedBy,
		CustomerID:    a.CustomerID,
		UserID:        a.UserID,
		ContactID:     a.ContactID,
		CustomerName:  a.CustomerName,
		ContactName:   a.ContactName,
	}
}

func appointmentListResponse(appts []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

// requestLocation resolves the IANA zone named by tz, defaulting to UTC.
func requestLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

func (h *AppointmentsHandler) buildAppointment(c *gin.Context, id int64) (*domain.Appointment, bool) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	var req appointmentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return nil, false
	}

	loc, err := requestLocation(req.TimeZone)
	if err != nil {
		log.Warn("invalid request", slog.String("time_zone", req.TimeZone))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time zone"})
		return nil, false
	}

	appt := &domain.Appointment{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		CustomerID:  req.CustomerID,
		UserID:      req.UserID,
		ContactID:   req.ContactID,
	}
	if err := appt.SetStart(req.Start.Year, time.Month(req.Start.Month), req.Start.Day, req.Start.Hour, req.Start.Minute, req.Start.Second, loc); err != nil {
		writeServiceError(c, log, err, "appointment build")
		return nil, false
	}
	if err := appt.SetEnd(req.End.Year, time.Month(req.End.Month), req.End.Day, req.End.Hour, req.End.Minute, req.End.Second, loc); err != nil {
		writeServiceError(c, log, err, "appointment build")
		return nil, false
	}
	return appt, true
}

func (h *AppointmentsHandler) Create(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	appt, ok := h.buildAppointment(c, 0)
	if !ok {
		return
	}

	if err := h.svc.Create(c.Request.Context(), appt, actor(c)); err != nil {
		writeServiceError(c, log, err, "appointment create")
		return
	}

	log.Info("appointment created",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("customer_id", appt.CustomerID),
		slog.Time("start_time", appt.StartUTC),
		slog.Time("end_time", appt.EndUTC),
	)
	c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Update(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	appt, ok := h.buildAppointment(c, id)
	if !ok {
		return
	}

	if err := h.svc.Update(c.Request.Context(), appt, actor(c)); err != nil {
		writeServiceError(c, log, err, "appointment update")
		return
	}

	log.Info("appointment updated", slog.Int64("appointment_id", appt.ID))
	c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Delete(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, log, err, "appointment delete")
		return
	}

	log.Info("appointment deleted", slog.Int64("appointment_id", id))
	c.Status(http.StatusNoContent)
}

// List serves calendar browsing. view=all returns everything; view=month and
// view=week narrow to the named calendar window in the request's zone.
func (h *AppointmentsHandler) List(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	loc, err := requestLocation(c.Query("tz"))
	if err != nil {
		log.Warn("invalid request", slog.String("time_zone", c.Query("tz")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time zone"})
		return
	}

	view := c.DefaultQuery("view", "all")

	var appts []domain.Appointment
	switch view {
	case "all":
		appts, err = h.svc.ListAll(c.Request.Context(), loc)
	case "month", "week":
		year, yErr := strconv.Atoi(c.Query("year"))
		month, mErr := strconv.Atoi(c.Query("month"))
		if yErr != nil || mErr != nil || month < 1 || month > 12 {
			log.Warn("invalid request", slog.String("year", c.Query("year")), slog.String("month", c.Query("month")))
			c.JSON(http.StatusBadRequest, gin.H{"error": "year and month (1-12) are required"})
			return
		}

		var start, end time.Time
		if view == "month" {
			start, end = scheduling.MonthWindow(year, time.Month(month), loc)
		} else {
			week, wErr := strconv.Atoi(c.DefaultQuery("week", "0"))
			if wErr != nil || week < 0 {
				log.Warn("invalid request", slog.String("week", c.Query("week")))
				c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a non-negative integer"})
				return
			}
			start, end = scheduling.WeekWindow(year, time.Month(month), week, loc)
		}
		appts, err = h.svc.ListRange(c.Request.Context(), start, end, loc)
	default:
		log.Warn("invalid request", slog.String("view", view))
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be all, month or week"})
		return
	}
	if err != nil {
		writeServiceError(c, log, err, "appointments list")
		return
	}

	log.Debug("appointments listed", slog.String("view", view), slog.Int("count", len(appts)))
	c.JSON(http.StatusOK, gin.H{"appointments": appointmentListResponse(appts)})
}

// Upcoming returns appointments starting within the next leadMinutes,
// defaulting to the fifteen-minute login alert.
func (h *AppointmentsHandler) Upcoming(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	loc, err := requestLocation(c.Query("tz"))
	if err != nil {
		log.Warn("invalid request", slog.String("time_zone", c.Query("tz")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time zone"})
		return
	}

	leadMinutes, err := strconv.Atoi(c.DefaultQuery("within_minutes", "15"))
	if err != nil || leadMinutes <= 0 {
		log.Warn("invalid request", slog.String("within_minutes", c.Query("within_minutes")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "within_minutes must be a positive integer"})
		return
	}

	appts, err := h.svc.UpcomingWithin(c.Request.Context(), time.Now(), time.Duration(leadMinutes)*time.Minute, loc)
	if err != nil {
		writeServiceError(c, log, err, "upcoming appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointmentListResponse(appts)})
}
