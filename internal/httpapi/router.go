package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/service"
)

// Deps are the use cases and infrastructure the router serves.
type Deps struct {
	Appointments  Appointments
	Notifications Notifications
	Tokens        Tokens
	Catalog       Catalog
	Accounts      service.AccountLookup

	// Ping reports database readiness for /healthz.
	Ping func(ctx context.Context) error

	JWTSecret []byte
	Location  *time.Location
	Log       logrus.FieldLogger
}

func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Log))

	r.GET("/healthz", healthz(d.Ping, d.Log))

	api := r.Group("/api/v1", Authenticate(d.JWTSecret, d.Accounts, d.Log))

	ah := &appointmentHandler{svc: d.Appointments, loc: d.Location, log: d.Log}
	appts := api.Group("/appointments")
	appts.POST("", ah.create)
	appts.GET("", ah.list(d.Appointments.List))
	appts.GET("/mine", ah.list(d.Appointments.ListMine))
	appts.GET("/assigned", ah.list(d.Appointments.ListAssigned))
	appts.GET("/:id", ah.get)
	appts.PATCH("/:id", ah.update)
	appts.DELETE("/:id", ah.delete)

	nh := &notificationHandler{svc: d.Notifications, log: d.Log}
	notes := api.Group("/notifications")
	notes.GET("", nh.list)
	notes.GET("/unread-count", nh.unreadCount)
	notes.PATCH("/:id/read", nh.markRead)
	notes.DELETE("/:id", nh.delete)

	ch := &catalogHandler{svc: d.Catalog, log: d.Log}
	api.GET("/services", ch.list)

	th := &tokenHandler{svc: d.Tokens, log: d.Log}
	api.POST("/notification-tokens", th.register)
	api.DELETE("/notification-tokens/:id", th.delete)

	return r
}

func healthz(ping func(context.Context) error, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.WithError(err).Warn("health check failed")
				RespondJSON(c, http.StatusServiceUnavailable, "database unavailable", nil)
				return
			}
		}
		RespondJSON(c, http.StatusOK, "ok", nil)
	}
}
