package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"mastery-service/internal/batch"
	"mastery-service/internal/service"

	"github.com/gin-gonic/gin"
)

// UserDirectory is the slice of the user store the trigger surface
// needs: pushing a freshly processed user to the back of the batch
// ordering.
type UserDirectory interface {
	TouchLastUpdated(ctx context.Context, userID string) error
}

// TriggerHandler is the invocation surface for the engine: a
// synchronous single-user run, a bounded batch page, and the review
// completion callback from the practice surface.
type TriggerHandler struct {
	Pipeline     *service.PipelineService
	Schedules    *service.ScheduleService
	Orchestrator *batch.Orchestrator
	Users        UserDirectory
}

func NewTriggerHandler(pipeline *service.PipelineService, schedules *service.ScheduleService, orchestrator *batch.Orchestrator, users UserDirectory) *TriggerHandler {
	return &TriggerHandler{
		Pipeline:     pipeline,
		Schedules:    schedules,
		Orchestrator: orchestrator,
		Users:        users,
	}
}

// touchUser is best effort: the batch ordering hint must never fail a
// trigger call that already did its work.
func (h *TriggerHandler) touchUser(ctx context.Context, userID string) {
	if h.Users == nil {
		return
	}
	if err := h.Users.TouchLastUpdated(ctx, userID); err != nil {
		log.Printf("Failed to touch last_updated for user %s: %v", userID, err)
	}
}

type runUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Stream string `json:"stream" binding:"required"`
}

func (h *TriggerHandler) RunUser(c *gin.Context) {
	var req runUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()
	if err := h.Pipeline.RunForUser(ctx, req.UserID, req.Stream); err != nil {
		if errors.Is(err, service.ErrDataUnavailable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.touchUser(ctx, req.UserID)
	c.JSON(http.StatusOK, gin.H{"status": "processed", "user_id": req.UserID})
}

func (h *TriggerHandler) RunBatch(c *gin.Context) {
	batchSize := parseQueryInt64(c, "batch_size", 0)
	offset := parseQueryInt64(c, "offset", 0)

	stats, err := h.Orchestrator.ProcessUserBatch(context.Background(), batchSize, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type reviewCompletedRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	TopicID string `json:"topic_id" binding:"required"`
	Stream  string `json:"stream" binding:"required"`
}

// ReviewCompleted records the REVIEWED transition and immediately
// re-runs the user's pipeline so the next cycle is scheduled from
// fresh mastery.
func (h *TriggerHandler) ReviewCompleted(c *gin.Context) {
	var req reviewCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()
	if err := h.Schedules.MarkReviewed(ctx, req.UserID, req.TopicID); err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.Pipeline.RunForUser(ctx, req.UserID, req.Stream); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.touchUser(ctx, req.UserID)
	c.JSON(http.StatusOK, gin.H{"status": "rescheduled", "user_id": req.UserID, "topic_id": req.TopicID})
}

func parseQueryInt64(c *gin.Context, key string, defaultValue int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}
