package handlers

import (
	"net/http"
	"strconv"

	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/realtime"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title             string              `json:"title" binding:"required"`
	Description       string              `json:"description"`
	ProjectID         uint                `json:"projectId" binding:"required"`
	AssigneeID        *uint               `json:"assigneeId"`
	Status            models.TaskStatus   `json:"status"`
	Priority          models.TaskPriority `json:"priority"`
	IssueType         models.IssueType    `json:"issueType"`
	DueDate           *string             `json:"dueDate"`
	Labels            []string            `json:"labels"`
	ParentTaskID      *uint               `json:"parentTaskId"`
	StoryPoints       *int                `json:"storyPoints"`
	OriginalEstimate  *int                `json:"originalEstimate"`
	RemainingEstimate *int                `json:"remainingEstimate"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title             *string              `json:"title"`
	Description       *string              `json:"description"`
	Status            *models.TaskStatus   `json:"status"`
	Priority          *models.TaskPriority `json:"priority"`
	IssueType         *models.IssueType    `json:"issueType"`
	AssigneeID        *uint                `json:"assigneeId"`
	DueDate           *string              `json:"dueDate"`
	Labels            *[]string            `json:"labels"`
	StoryPoints       *int                 `json:"storyPoints"`
	OriginalEstimate  *int                 `json:"originalEstimate"`
	RemainingEstimate *int                 `json:"remainingEstimate"`
}

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id: " + raw})
		return 0, false
	}
	return uint(id), true
}

/*
*
GetProjectTasks handles GET /api/tasks/:id
Returns all tasks belonging to the project with the given id.
*/
func GetProjectTasks(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var tasks []models.Task
	if err := database.GetDB().Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	enrichTasks(database.GetDB(), tasks)
	c.JSON(http.StatusOK, tasks)
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task reported by the authenticated user
*/
func CreateTask(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tracking.CreateTask(database.GetDB(), tracking.TaskCreate{
		Title:             req.Title,
		Description:       req.Description,
		ProjectID:         req.ProjectID,
		AssigneeID:        req.AssigneeID,
		Status:            req.Status,
		Priority:          req.Priority,
		IssueType:         req.IssueType,
		DueDate:           req.DueDate,
		Labels:            req.Labels,
		ParentTaskID:      req.ParentTaskID,
		StoryPoints:       req.StoryPoints,
		OriginalEstimate:  req.OriginalEstimate,
		RemainingEstimate: req.RemainingEstimate,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	enrichTask(database.GetDB(), task)
	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:      realtime.EventTaskCreated,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
	})
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Applies a partial field update; status transitions are gated on
// subtask completion and changes are recorded in the activity trail.
func UpdateTask(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tracking.ApplyUpdate(database.GetDB(), taskID, tracking.TaskUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		Priority:          req.Priority,
		IssueType:         req.IssueType,
		AssigneeID:        req.AssigneeID,
		DueDate:           req.DueDate,
		Labels:            req.Labels,
		StoryPoints:       req.StoryPoints,
		OriginalEstimate:  req.OriginalEstimate,
		RemainingEstimate: req.RemainingEstimate,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	enrichTask(database.GetDB(), task)
	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:      realtime.EventTaskUpdated,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
	})
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id?permanent=bool
// Soft-deletes by default; permanent=true erases the row and its
// dependents irreversibly.
func DeleteTask(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	permanent := c.Query("permanent") == "true"
	if err := tracking.DeleteTask(database.GetDB(), taskID, permanent); err != nil {
		respondError(c, err)
		return
	}

	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:   realtime.EventTaskDeleted,
		TaskID: taskID,
		UserID: userID,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RestoreTask handles POST /api/tasks/:id/restore
// Clears the soft-delete marker so the task reappears in listings.
func RestoreTask(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := tracking.RestoreTask(database.GetDB(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	enrichTask(database.GetDB(), task)
	realtime.GetHub().BroadcastEvent(userID, realtime.Event{
		Type:      realtime.EventTaskRestored,
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    userID,
	})
	c.JSON(http.StatusOK, task)
}

// GetSubtasks handles GET /api/tasks/:id/subtasks
// Returns the immediate children of a task, oldest first.
func GetSubtasks(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var subtasks []models.Task
	if err := database.GetDB().
		Where("parent_task_id = ?", taskID).
		Order("created_at asc").
		Find(&subtasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtasks"})
		return
	}

	enrichTasks(database.GetDB(), subtasks)
	c.JSON(http.StatusOK, subtasks)
}
