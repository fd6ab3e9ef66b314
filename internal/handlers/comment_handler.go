package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCommentRequest represents the request payload for adding a comment
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetComments handles GET /api/tasks/:id/comments
// Returns comments for a task, newest first.
func GetComments(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var comments []models.Comment
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	for i := range comments {
		comments[i].Author = publicUser(database.GetDB(), comments[i].UserID)
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /api/tasks/:id/comments
// Stores the comment, records a comment activity, and fans out one
// mention notification per user referenced as @[Display Name] in the
// content. Repeated mentions of the same user collapse to one.
func CreateComment(c *gin.Context) {
	userID := c.GetUint("user_id")
	userName := c.GetString("user_name")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		}
		return
	}

	comment := models.Comment{
		Content: req.Content,
		TaskID:  taskID,
		UserID:  userID,
	}
	if err := db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if err := tracking.LogActivity(db, taskID, userID, models.ActivityComment, "added a comment"); err != nil {
		respondError(c, err)
		return
	}

	mentioned, err := tracking.ResolveMentions(db, req.Content, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, user := range mentioned {
		if err := tracking.Notify(db, user.ID, models.NotifyMention, "You were mentioned",
			fmt.Sprintf("%s mentioned you in a comment on task: %s", userName, task.Title),
			fmt.Sprintf("/project/%d", task.ProjectID)); err != nil {
			respondError(c, err)
			return
		}
	}

	comment.Author = publicUser(db, userID)
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/tasks/:id/comments/:commentId
// Only the comment's author may remove it.
func DeleteComment(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.GetDB().
		Where("id = ? AND task_id = ?", commentID, taskID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		}
		return
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this comment"})
		return
	}

	if err := database.GetDB().Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetActivities handles GET /api/tasks/:id/activities
// Returns the audit trail for a task, newest first.
func GetActivities(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var activities []models.Activity
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Find(&activities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}

	for i := range activities {
		activities[i].Actor = publicUser(database.GetDB(), activities[i].UserID)
	}
	c.JSON(http.StatusOK, activities)
}
