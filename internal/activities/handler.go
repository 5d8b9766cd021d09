package activities

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

// Handler handles HTTP requests for activity submission and review
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new activities handler
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers activity routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	acts := rg.Group("/activities")
	{
		acts.POST("", h.submit)
		acts.GET("", h.list)
		acts.GET("/:id", h.get)
		acts.POST("/:id/evidence", h.attachEvidence)
		acts.POST("/:id/decision", h.decide)
	}
}

type submitPayload struct {
	StudentID       string                 `json:"student_id" binding:"required"`
	Type            string                 `json:"type" binding:"required"`
	Title           string                 `json:"title" binding:"required"`
	Organization    string                 `json:"organization"`
	Date            string                 `json:"date"`
	Location        string                 `json:"location"`
	Description     string                 `json:"description"`
	Evidence        []EvidenceRecord       `json:"evidence"`
	AdditionalProof map[string]interface{} `json:"additional_proof"`
}

func (h *Handler) submit(c *gin.Context) {
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

	var date time.Time
	if payload.Date != "" {
		date, err = time.Parse("2006-01-02", payload.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	activity, err := h.service.Submit(c.Request.Context(), SubmitRequest{
		StudentID:       studentID,
		Type:            ActivityType(payload.Type),
		Title:           payload.Title,
		Organization:    payload.Organization,
		Date:            date,
		Location:        payload.Location,
		Description:     payload.Description,
		Evidence:        payload.Evidence,
		AdditionalProof: payload.AdditionalProof,
	})
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, activity)
}

func (h *Handler) list(c *gin.Context) {
	var filter ListFilter

	if studentIDStr := c.Query("student_id"); studentIDStr != "" {
		id, err := uuid.Parse(studentIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
			return
		}
		filter.StudentID = &id
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := VerificationStatus(statusStr)
		filter.Status = &status
	}
	if typeStr := c.Query("type"); typeStr != "" {
		activityType := ActivityType(typeStr)
		filter.Type = &activityType
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	activity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activity)
}

type attachEvidencePayload struct {
	Evidence  []EvidenceRecord `json:"evidence" binding:"required"`
	ActorID   string           `json:"actor_id"`
	ActorName string           `json:"actor_name"`
}

func (h *Handler) attachEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var payload attachEvidencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := audit.Actor{ID: payload.ActorID, Name: payload.ActorName}
	activity, err := h.service.AttachEvidence(c.Request.Context(), id, payload.Evidence, actor)
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activity)
}

type decisionPayload struct {
	MentorID   string `json:"mentor_id" binding:"required"`
	MentorName string `json:"mentor_name"`
	Status     string `json:"status" binding:"required"`
	Comments   string `json:"comments" binding:"required"`
}

func (h *Handler) decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mentorID, err := uuid.Parse(payload.MentorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentor_id"})
		return
	}

	activity, err := h.service.MentorDecision(c.Request.Context(), DecisionRequest{
		ActivityID: id,
		MentorID:   mentorID,
		MentorName: payload.MentorName,
		Status:     VerificationStatus(payload.Status),
		Comments:   payload.Comments,
	})
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activity)
}
