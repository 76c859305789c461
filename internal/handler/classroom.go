package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/classroom"
)

// CreateClass handles POST /api/classes.
func (h *Handler) CreateClass(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	cls, err := h.classrooms.CreateClass(c.Request.Context(), auth.ActorFrom(c), req.Name, req.Code)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"class": cls})
}

// ListClasses handles GET /api/classes.
func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.classrooms.ListClasses(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if classes == nil {
		classes = []classroom.Class{}
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// GetClass handles GET /api/classes/:classId.
func (h *Handler) GetClass(c *gin.Context) {
	cls, err := h.classrooms.GetClass(c.Request.Context(), auth.ActorFrom(c), c.Param("classId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"class": cls})
}

// DeleteClass handles DELETE /api/classes/:classId.
func (h *Handler) DeleteClass(c *gin.Context) {
	if err := h.classrooms.DeleteClass(c.Request.Context(), auth.ActorFrom(c), c.Param("classId")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted"})
}

// AddStudent handles POST /api/students.
func (h *Handler) AddStudent(c *gin.Context) {
	var req struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		StudentID string `json:"studentId" binding:"required"`
		ClassID   string `json:"classId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Validation("%s", err.Error()))
		return
	}
	st, err := h.classrooms.AddStudent(c.Request.Context(), auth.ActorFrom(c), req.FirstName, req.LastName, req.StudentID, req.ClassID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": st})
}

// ListStudents handles GET /api/students?classId=.
func (h *Handler) ListStudents(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		respondErr(c, apperr.Validation("Class ID required"))
		return
	}
	students, err := h.classrooms.ListStudents(c.Request.Context(), auth.ActorFrom(c), classID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if students == nil {
		students = []classroom.Student{}
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// RemoveStudent handles DELETE /api/students/:studentId.
func (h *Handler) RemoveStudent(c *gin.Context) {
	if err := h.classrooms.RemoveStudent(c.Request.Context(), auth.ActorFrom(c), c.Param("studentId")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student removed"})
}
