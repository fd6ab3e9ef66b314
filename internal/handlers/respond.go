package handlers

import (
	"errors"
	"net/http"

	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps the tracking error taxonomy onto HTTP statuses.
// Anything unclassified is a plain server error.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracking.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tracking.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, tracking.ErrPreconditionFailed),
		errors.Is(err, tracking.ErrInvalidReference),
		errors.Is(err, tracking.ErrValidation):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// publicUser looks up the response projection for a user id.
func publicUser(db *gorm.DB, id uint) *models.PublicUser {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil
	}
	p := u.Public()
	return &p
}

// enrichTask fills the non-persisted assignee/reporter projections.
func enrichTask(db *gorm.DB, task *models.Task) {
	if task.AssigneeID != nil {
		task.Assignee = publicUser(db, *task.AssigneeID)
	}
	if task.ReporterID != 0 {
		task.Reporter = publicUser(db, task.ReporterID)
	}
}

// enrichTasks fills projections for a slice with one users query.
func enrichTasks(db *gorm.DB, tasks []models.Task) {
	if len(tasks) == 0 {
		return
	}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return
	}
	byID := make(map[uint]models.PublicUser, len(users))
	for _, u := range users {
		byID[u.ID] = u.Public()
	}
	for i := range tasks {
		if tasks[i].AssigneeID != nil {
			if p, ok := byID[*tasks[i].AssigneeID]; ok {
				tasks[i].Assignee = &p
			}
		}
		if p, ok := byID[tasks[i].ReporterID]; ok {
			tasks[i].Reporter = &p
		}
	}
}
