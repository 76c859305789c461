// Package handler maps the HTTP surface onto the service layer. Payload
// field names follow the JSON contract of the API (camelCase), and service
// errors map to status codes through apperr.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/classroom"
	"classtrack/internal/config"
	"classtrack/internal/store"
)

// Handler bundles the services behind the API.
type Handler struct {
	cfg        config.App
	users      *auth.Service
	classrooms *classroom.Service
	attendance *attendance.Service
	db         *store.DB
	redis      *store.Redis
}

// New creates a handler.
func New(cfg config.App, users *auth.Service, classrooms *classroom.Service, att *attendance.Service, db *store.DB, redis *store.Redis) *Handler {
	return &Handler{cfg: cfg, users: users, classrooms: classrooms, attendance: att, db: db, redis: redis}
}

// Healthz reports dependency health.
func (h *Handler) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := h.db != nil && h.db.Client != nil && h.db.Client.PingContext(ctx) == nil
	redisHealthy := h.redis.Healthy(ctx)
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
}

// respondErr writes an error response. Errors outside the taxonomy are
// logged and hidden behind a generic 500.
func respondErr(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// issueToken signs a JWT for the user.
func (h *Handler) issueToken(u auth.User) (string, time.Time, error) {
	return auth.Issue(u.ID, u.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.TokenTTL)
}
