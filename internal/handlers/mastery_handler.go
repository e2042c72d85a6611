package handlers

import (
	"context"
	"net/http"

	"mastery-service/internal/service"

	"github.com/gin-gonic/gin"
)

// MasteryHandler serves the read surfaces: stored mastery and the
// review schedule per user.
type MasteryHandler struct {
	Mastery   *service.MasteryService
	Schedules *service.ScheduleService
}

func NewMasteryHandler(mastery *service.MasteryService, schedules *service.ScheduleService) *MasteryHandler {
	return &MasteryHandler{Mastery: mastery, Schedules: schedules}
}

func (h *MasteryHandler) GetUserMastery(c *gin.Context) {
	userID := c.Param("id")

	topics, err := h.Mastery.GetTopicMastery(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	subjects, err := h.Mastery.GetSubjectMastery(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"topics":   topics,
		"subjects": subjects,
	})
}

func (h *MasteryHandler) GetUserSchedule(c *gin.Context) {
	userID := c.Param("id")

	schedules, err := h.Schedules.GetSchedulesForUser(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"schedules": schedules,
	})
}
