package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the read-only audit query surface. There is no mutation
// endpoint; entries are appended internally by the pipeline.
type Handler struct {
	recorder *Recorder
	logger   *zap.Logger
}

// NewHandler creates a new audit handler.
func NewHandler(recorder *Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		recorder: recorder,
		logger:   logger,
	}
}

// RegisterRoutes registers audit routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit-logs", h.query)
}

func (h *Handler) query(c *gin.Context) {
	filter := QueryFilter{
		ActorID: c.Query("actor_id"),
		Action:  c.Query("action"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp, expected RFC3339"})
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp, expected RFC3339"})
			return
		}
		filter.To = &t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	entries, err := h.recorder.Query(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("audit query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}
