package handler

import (
	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
)

// Mount wires every API route onto the engine. Register and login stay
// outside the JWT guard; everything else under /api requires a token.
func (h *Handler) Mount(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	private := api.Group("", auth.RequireAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	private.GET("/auth/me", h.Me)
	private.PUT("/auth/profile", h.UpdateProfile)
	private.PUT("/auth/password", h.ChangePassword)

	private.POST("/classes", h.CreateClass)
	private.GET("/classes", h.ListClasses)
	private.GET("/classes/:classId", h.GetClass)
	private.DELETE("/classes/:classId", h.DeleteClass)

	private.POST("/students", h.AddStudent)
	private.GET("/students", h.ListStudents)
	private.DELETE("/students/:studentId", h.RemoveStudent)

	private.POST("/attendance/sessions", h.CreateSession)
	private.GET("/attendance/sessions", h.ListSessions)
	private.GET("/attendance/sessions/:sessionId", h.GetSession)
	private.POST("/attendance/mark", h.Mark)
	private.POST("/attendance/mark-bulk", h.MarkBulk)
	private.POST("/attendance/quick", h.QuickMark)
	private.GET("/attendance/today", h.TodaySummary)
}
