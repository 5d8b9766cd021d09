package appeals

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/activities"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

// Handler exposes the appeal surface.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new appeals handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers appeal routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/activities/:id/appeals", h.submit)
	rg.GET("/appeals", h.list)
}

type submitPayload struct {
	StudentID string                      `json:"student_id" binding:"required"`
	Message   string                      `json:"message" binding:"required"`
	Evidence  []activities.EvidenceRecord `json:"evidence"`
}

func (h *Handler) submit(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	var payload submitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, err := uuid.Parse(payload.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	appeal, err := h.service.Submit(c.Request.Context(), SubmitRequest{
		ActivityID: activityID,
		StudentID:  studentID,
		Message:    payload.Message,
		Evidence:   payload.Evidence,
	})
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, appeal)
}

func (h *Handler) list(c *gin.Context) {
	var filter ListFilter

	if activityIDStr := c.Query("activity_id"); activityIDStr != "" {
		id, err := uuid.Parse(activityIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity_id"})
			return
		}
		filter.ActivityID = &id
	}
	if studentIDStr := c.Query("student_id"); studentIDStr != "" {
		id, err := uuid.Parse(studentIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
			return
		}
		filter.StudentID = &id
	}

	appeals, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appeals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, appeals)
}
