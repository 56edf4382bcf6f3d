package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/service/reports"
)

type reportsService interface {
	CountByType(ctx context.Context) ([]reports.TypeCount, error)
	CountByMonth(ctx context.Context) ([]reports.MonthCount, error)
	ContactSchedule(ctx context.Context, contactID int64, loc *time.Location) ([]domain.Appointment, error)
}

type contactLister interface {
	List(ctx context.Context) ([]domain.Contact, error)
}

type ReportsHandler struct {
	svc      reportsService
	contacts contactLister
	log      *slog.Logger
}

func NewReportsHandler(svc reportsService, contacts contactLister, log *slog.Logger) *ReportsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReportsHandler{
		svc:      svc,
		contacts: contacts,
		log:      log.With(slog.String("component", "rest.reports")),
	}
}

func (h *ReportsHandler) ByType(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	counts, err := h.svc.CountByType(c.Request.Context())
	if err != nil {
		writeServiceError(c, log, err, "type report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *ReportsHandler) ByMonth(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	counts, err := h.svc.CountByMonth(c.Request.Context())
	if err != nil {
		writeServiceError(c, log, err, "month report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *ReportsHandler) ContactSchedule(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || contactID <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	loc, err := requestLocation(c.Query("tz"))
	if err != nil {
		log.Warn("invalid request", slog.String("time_zone", c.Query("tz")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time zone"})
		return
	}

	appts, err := h.svc.ContactSchedule(c.Request.Context(), contactID, loc)
	if err != nil {
		writeServiceError(c, log, err, "contact schedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointmentListResponse(appts)})
}

func (h *ReportsHandler) Contacts(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	rows, err := h.contacts.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, log, err, "contacts list")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, ct := range rows {
		out = append(out, gin.H{"id": ct.ID, "name": ct.Name, "email": ct.Email})
	}
	c.JSON(http.StatusOK, gin.H{"contacts": out})
}
