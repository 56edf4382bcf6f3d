package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything the HTTP surface needs wired in.
type RouterConfig struct {
	Scheduling schedulingService
	Customers  customerService
	Reports    reportsService
	Contacts   contactLister
	Auth       authService
	Verifier   tokenVerifier
	Log        *slog.Logger

	CORSOrigins []string
}

// NewRouter builds the gin engine with the login endpoint public and
// everything else behind bearer auth.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log.With(slog.String("component", "rest.access"))))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", requestIDHeader)
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(cfg.Auth, log)
	apptH := NewAppointmentsHandler(cfg.Scheduling, log)
	custH := NewCustomersHandler(cfg.Customers, log)
	repH := NewReportsHandler(cfg.Reports, cfg.Contacts, log)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", authH.Login)

	authed := v1.Group("")
	authed.Use(Auth(cfg.Verifier, log.With(slog.String("component", "rest.auth"))))
	{
		authed.GET("/appointments", apptH.List)
		authed.GET("/appointments/upcoming", apptH.Upcoming)
		authed.POST("/appointments", apptH.Create)
		authed.PUT("/appointments/:id", apptH.Update)
		authed.DELETE("/appointments/:id", apptH.Delete)

		authed.GET("/customers", custH.List)
		authed.GET("/customers/:id", custH.Get)
		authed.POST("/customers", custH.Create)
		authed.PUT("/customers/:id", custH.Update)
		authed.DELETE("/customers/:id", custH.Delete)

		authed.GET("/countries", custH.Countries)
		authed.GET("/countries/:id/divisions", custH.Divisions)
		authed.GET("/contacts", repH.Contacts)

		authed.GET("/reports/appointments-by-type", repH.ByType)
		authed.GET("/reports/appointments-by-month", repH.ByMonth)
		authed.GET("/reports/contact-schedule/:id", repH.ContactSchedule)
	}

	return r
}
