package fraud

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

// Handler exposes the admin fraud surface.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new fraud handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers fraud alert routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	alerts := rg.Group("/fraud-alerts")
	{
		alerts.GET("", h.list)
		alerts.GET("/:id", h.get)
		alerts.POST("/:id/resolve", h.resolve)
		alerts.POST("/:id/escalate", h.escalate)
		alerts.POST("/:id/false-positive", h.falsePositive)
	}
}

func (h *Handler) list(c *gin.Context) {
	var filter ListFilter

	if severityStr := c.Query("severity"); severityStr != "" {
		severity := Severity(severityStr)
		filter.Severity = &severity
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := AlertStatus(statusStr)
		filter.Status = &status
	}

	alerts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list fraud alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	alert, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alert)
}

type actionPayload struct {
	Notes     string `json:"notes"`
	ActorID   string `json:"actor_id" binding:"required"`
	ActorName string `json:"actor_name"`
}

type alertAction func(c *gin.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error)

func (h *Handler) resolve(c *gin.Context) {
	h.act(c, func(c *gin.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
		return h.service.Resolve(c.Request.Context(), id, notes, actor)
	})
}

func (h *Handler) escalate(c *gin.Context) {
	h.act(c, func(c *gin.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
		return h.service.Escalate(c.Request.Context(), id, notes, actor)
	})
}

func (h *Handler) falsePositive(c *gin.Context) {
	h.act(c, func(c *gin.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
		return h.service.MarkFalsePositive(c.Request.Context(), id, notes, actor)
	})
}

func (h *Handler) act(c *gin.Context, action alertAction) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var payload actionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := action(c, id, payload.Notes, audit.Actor{ID: payload.ActorID, Name: payload.ActorName})
	if err != nil {
		c.JSON(faults.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alert)
}
