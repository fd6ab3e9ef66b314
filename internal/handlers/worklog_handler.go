package handlers

import (
	"net/http"
	"time"

	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/realtime"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
)

// StopTimerRequest optionally supplies a duration for the degraded
// path where no server-side timer is active.
type StopTimerRequest struct {
	FallbackMinutes *int `json:"fallbackMinutes"`
}

// CreateWorkLogRequest represents the request payload for a manual log entry
type CreateWorkLogRequest struct {
	TimeSpent   int        `json:"timeSpent" binding:"required"`
	StartedAt   *time.Time `json:"startedAt"`
	Description string     `json:"description"`
}

// StartTimer handles POST /api/tasks/:id/timer/start
func StartTimer(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := tracking.StartTimer(database.GetDB(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:      realtime.EventTimerStarted,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
	})
	c.JSON(http.StatusOK, task)
}

// StopTimer handles POST /api/tasks/:id/timer/stop
// Converts the elapsed session into a work log; a zero-length session
// just clears the timer and returns no worklog.
func StopTimer(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StopTimerRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	worklog, task, err := tracking.StopTimer(database.GetDB(), taskID, userID, req.FallbackMinutes)
	if err != nil {
		respondError(c, err)
		return
	}

	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:      realtime.EventTimerStopped,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
	})
	c.JSON(http.StatusOK, gin.H{
		"task":    task,
		"worklog": worklog,
	})
}

// GetWorkLogs handles GET /api/tasks/:id/worklogs
// Returns work logs for a task, most recent work first.
func GetWorkLogs(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var worklogs []models.WorkLog
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("started_at desc").
		Find(&worklogs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worklogs"})
		return
	}

	for i := range worklogs {
		worklogs[i].Author = publicUser(database.GetDB(), worklogs[i].UserID)
	}
	c.JSON(http.StatusOK, worklogs)
}

// CreateWorkLog handles POST /api/tasks/:id/worklogs
// Records a manual entry and applies the aggregate time update.
func CreateWorkLog(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	worklog, err := tracking.LogWork(database.GetDB(), taskID, userID, req.TimeSpent, req.StartedAt, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	worklog.Author = publicUser(database.GetDB(), userID)
	c.JSON(http.StatusCreated, worklog)
}

// DeleteWorkLog handles DELETE /api/tasks/:id/worklogs/:worklogId
// Removes the entry and reverses its effect on the task aggregates.
func DeleteWorkLog(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	worklogID, ok := parseIDParam(c, "worklogId")
	if !ok {
		return
	}

	if err := tracking.DeleteWorkLog(database.GetDB(), taskID, worklogID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
