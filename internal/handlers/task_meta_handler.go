package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddWatcherRequest represents the request payload for watching a task
type AddWatcherRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AddLinkRequest represents the request payload for linking two tasks
type AddLinkRequest struct {
	Type         string `json:"type" binding:"required"`
	LinkedTaskID uint   `json:"linkedTaskId" binding:"required"`
}

// AddAttachmentRequest represents the request payload for attaching a file reference
type AddAttachmentRequest struct {
	Name string `json:"name" binding:"required"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url" binding:"required"`
}

// loadTask fetches a task or writes the not-found response.
func loadTask(c *gin.Context, taskID uint) (*models.Task, bool) {
	var task models.Task
	if err := database.GetDB().First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return nil, false
	}
	return &task, true
}

// GetWatchers handles GET /api/tasks/:id/watchers
func GetWatchers(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}

	watchers := make([]models.PublicUser, 0, len(task.Watchers))
	for _, id := range task.Watchers {
		if u := publicUser(database.GetDB(), id); u != nil {
			watchers = append(watchers, *u)
		}
	}
	c.JSON(http.StatusOK, watchers)
}

// AddWatcher handles POST /api/tasks/:id/watchers
// Adding a user who already watches the task is a no-op.
func AddWatcher(c *gin.Context) {
	actorID := c.GetUint("user_id")
	if actorID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddWatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	if publicUser(database.GetDB(), req.UserID) == nil {
		respondError(c, fmt.Errorf("%w: user with id %d does not exist", tracking.ErrInvalidReference, req.UserID))
		return
	}

	for _, id := range task.Watchers {
		if id == req.UserID {
			c.JSON(http.StatusOK, task)
			return
		}
	}
	task.Watchers = append(task.Watchers, req.UserID)
	if err := database.GetDB().Model(task).Update("watchers", task.Watchers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update watchers"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// RemoveWatcher handles DELETE /api/tasks/:id/watchers/:userId
func RemoveWatcher(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	watcherID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}

	kept := task.Watchers[:0]
	for _, id := range task.Watchers {
		if id != watcherID {
			kept = append(kept, id)
		}
	}
	task.Watchers = kept
	if err := database.GetDB().Model(task).Update("watchers", task.Watchers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update watchers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetLinks handles GET /api/tasks/:id/links
func GetLinks(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task.IssueLinks)
}

// AddLink handles POST /api/tasks/:id/links
// Links are directional; no reciprocal entry is written on the target.
// A task cannot link to itself, and a second link to the same target
// is rejected.
func AddLink(c *gin.Context) {
	actorID := c.GetUint("user_id")
	if actorID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.LinkedTaskID == taskID {
		respondError(c, fmt.Errorf("%w: a task cannot link to itself", tracking.ErrValidation))
		return
	}

	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	var target models.Task
	if err := database.GetDB().First(&target, req.LinkedTaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, fmt.Errorf("%w: linked task %d does not exist", tracking.ErrInvalidReference, req.LinkedTaskID))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch linked task"})
		}
		return
	}
	for _, link := range task.IssueLinks {
		if link.LinkedTaskID == req.LinkedTaskID {
			respondError(c, fmt.Errorf("%w: task %d is already linked", tracking.ErrConflict, req.LinkedTaskID))
			return
		}
	}

	task.IssueLinks = append(task.IssueLinks, models.IssueLink{
		Type:         req.Type,
		LinkedTaskID: req.LinkedTaskID,
	})
	if err := database.GetDB().Model(task).Update("issue_links", task.IssueLinks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update links"})
		return
	}

	if err := tracking.LogActivity(database.GetDB(), task.ID, actorID, models.ActivityUpdate,
		fmt.Sprintf("linked task #%d (%s)", req.LinkedTaskID, req.Type)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// RemoveLink handles DELETE /api/tasks/:id/links/:linkedTaskId
func RemoveLink(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	linkedID, ok := parseIDParam(c, "linkedTaskId")
	if !ok {
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}

	found := false
	kept := task.IssueLinks[:0]
	for _, link := range task.IssueLinks {
		if link.LinkedTaskID == linkedID {
			found = true
			continue
		}
		kept = append(kept, link)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	task.IssueLinks = kept
	if err := database.GetDB().Model(task).Update("issue_links", task.IssueLinks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAttachments handles GET /api/tasks/:id/attachments
func GetAttachments(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task.Attachments)
}

// AddAttachment handles POST /api/tasks/:id/attachments
func AddAttachment(c *gin.Context) {
	actorID := c.GetUint("user_id")
	if actorID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	task.Attachments = append(task.Attachments, models.Attachment{
		Name: req.Name,
		Size: req.Size,
		Type: req.Type,
		URL:  req.URL,
	})
	if err := database.GetDB().Model(task).Update("attachments", task.Attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attachments"})
		return
	}

	if err := tracking.LogActivity(database.GetDB(), task.ID, actorID, models.ActivityUpdate,
		fmt.Sprintf("attached %s", req.Name)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// RemoveAttachment handles DELETE /api/tasks/:id/attachments/:index
// Attachments form an ordered sequence and are addressed by position.
func RemoveAttachment(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment index"})
		return
	}
	task, ok := loadTask(c, taskID)
	if !ok {
		return
	}
	if index >= len(task.Attachments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	task.Attachments = append(task.Attachments[:index], task.Attachments[index+1:]...)
	if err := database.GetDB().Model(task).Update("attachments", task.Attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attachments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
