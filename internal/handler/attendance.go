package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
)

// CreateSession handles POST /api/attendance/sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	var req attendance.CreateSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	sess, err := h.attendance.CreateSession(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

// ListSessions handles GET /api/attendance/sessions?classId=.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.attendance.ListSessions(c.Request.Context(), auth.ActorFrom(c), c.Query("classId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession handles GET /api/attendance/sessions/:sessionId. The response
// pairs the session with the full class roster and any recorded marks.
func (h *Handler) GetSession(c *gin.Context) {
	sess, roster, err := h.attendance.SessionRoster(c.Request.Context(), auth.ActorFrom(c), c.Param("sessionId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if roster == nil {
		roster = []attendance.RosterEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "students": roster})
}

type markRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Notes     string `json:"notes"`
}

// Mark handles POST /api/attendance/mark.
func (h *Handler) Mark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	mark, err := h.attendance.Mark(c.Request.Context(), auth.ActorFrom(c), req.SessionID, req.StudentID, attendance.Status(req.Status), req.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": mark})
}

type markBulkRequest struct {
	SessionID   string                 `json:"sessionId" binding:"required"`
	Attendances []attendance.MarkEntry `json:"attendances" binding:"required"`
}

// MarkBulk handles POST /api/attendance/mark-bulk.
func (h *Handler) MarkBulk(c *gin.Context) {
	var req markBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	res, err := h.attendance.MarkBulk(c.Request.Context(), auth.ActorFrom(c), req.SessionID, req.Attendances)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendances": res.Results, "count": res.Count})
}

// QuickMark handles POST /api/attendance/quick.
func (h *Handler) QuickMark(c *gin.Context) {
	var req attendance.QuickMarkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	res, err := h.attendance.QuickMark(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": res.Session, "attendances": res.Attendances})
}

// TodaySummary handles GET /api/attendance/today.
func (h *Handler) TodaySummary(c *gin.Context) {
	report, err := h.attendance.TodaySummary(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if report.Sessions == nil {
		report.Sessions = []attendance.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": report.Sessions, "summary": report.Summary})
}
