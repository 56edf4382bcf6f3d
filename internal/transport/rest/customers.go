package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
)

type customerService interface {
	List(ctx context.Context) ([]domain.Customer, error)
	ByID(ctx context.Context, customerID int64) (domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer, actor string) error
	Update(ctx context.Context, c *domain.Customer, actor string) error
	Delete(ctx context.Context, customerID int64) error
	Countries(ctx context.Context) ([]domain.Country, error)
	DivisionsForCountry(ctx context.Context, countryID int64) ([]domain.FirstLevelDivision, error)
}

type CustomersHandler struct {
	svc customerService
	log *slog.Logger
}

func NewCustomersHandler(svc customerService, log *slog.Logger) *CustomersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CustomersHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.customers")),
	}
}

type customerWriteRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PostalCode  string `json:"postal_code"`
	PhoneNumber string `json:"phone_number"`
	DivisionID  int64  `json:"division_id"`
}

type customerResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	PostalCode    string `json:"postal_code"`
	PhoneNumber   string `json:"phone_number"`
	DivisionID    int64  `json:"division_id"`
	DivisionName  string `json:"division_name,omitempty"`
	CountryID     int64  `json:"country_id,omitempty"`
	CountryName   string `json:"country_name,omitempty"`
	CreateDate    string `json:"create_date"`
	CreatedBy     string `json:"created_by"`
	LastUpdate    string `json:"last_update"`
	LastUpdatedBy string `json:"last_updated_by"`
}

func toCustomerResponse(cu *domain.Customer) customerResponse {
	return customerResponse{
		ID:            cu.ID,
		Name:          cu.Name,
		Address:       cu.Address,
		PostalCode:    cu.PostalCode,
		PhoneNumber:   cu.PhoneNumber,
		DivisionID:    cu.DivisionID,
		DivisionName:  cu.DivisionName,
		CountryID:     cu.CountryID,
		CountryName:   cu.CountryName,
		CreateDate:    cu.CreateDate,
		CreatedBy:     cu.CreatedBy,
		LastUpdate:    cu.LastUpdate,
		LastUpdatedBy: cu.LastUpdatedBy,
	}
}

func (h *CustomersHandler) List(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	rows, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, log, err, "customers list")
		return
	}

	out := make([]customerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCustomerResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"customers": out})
}

func (h *CustomersHandler) Get(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	cu, err := h.svc.ByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, log, err, "customer get")
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(&cu))
}

func (h *CustomersHandler) Create(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	var req customerWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	cu := &domain.Customer{
		Name:        req.Name,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		PhoneNumber: req.PhoneNumber,
		DivisionID:  req.DivisionID,
	}
	if err := h.svc.Create(c.Request.Context(), cu, actor(c)); err != nil {
		writeServiceError(c, log, err, "customer create")
		return
	}

	log.Info("customer created", slog.Int64("customer_id", cu.ID))
	c.JSON(http.StatusCreated, toCustomerResponse(cu))
}

func (h *CustomersHandler) Update(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	var req customerWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	cu := &domain.Customer{
		ID:          id,
		Name:        req.Name,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		PhoneNumber: req.PhoneNumber,
		DivisionID:  req.DivisionID,
	}
	if err := h.svc.Update(c.Request.Context(), cu, actor(c)); err != nil {
		writeServiceError(c, log, err, "customer update")
		return
	}

	log.Info("customer updated", slog.Int64("customer_id", cu.ID))
	c.JSON(http.StatusOK, toCustomerResponse(cu))
}

func (h *CustomersHandler) Delete(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, log, err, "customer delete")
		return
	}

	log.Info("customer deleted", slog.Int64("customer_id", id))
	c.Status(http.StatusNoContent)
}

func (h *CustomersHandler) Countries(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	rows, err := h.svc.Countries(c.Request.Context())
	if err != nil {
		writeServiceError(c, log, err, "countries list")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, co := range rows {
		out = append(out, gin.H{"id": co.ID, "name": co.Name})
	}
	c.JSON(http.StatusOK, gin.H{"countries": out})
}

func (h *CustomersHandler) Divisions(c *gin.Context) {
	log := h.log.With(slog.String("request_id", c.GetString(requestIDKey)))

	countryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || countryID <= 0 {
		log.Warn("invalid request", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	rows, err := h.svc.DivisionsForCountry(c.Request.Context(), countryID)
	if err != nil {
		writeServiceError(c, log, err, "divisions list")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, d := range rows {
		out = append(out, gin.H{"id": d.ID, "name": d.Name, "country_id": d.CountryID})
	}
	c.JSON(http.StatusOK, gin.H{"divisions": out})
}
