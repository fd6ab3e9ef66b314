package tracking

import (
	"errors"
	"fmt"

	"issue-tracker-api/internal/models"

	"gorm.io/gorm"
)

// TaskCreate carries the fields accepted when creating a task.
type TaskCreate struct {
	Title             string
	Description       string
	ProjectID         uint
	AssigneeID        *uint
	Status            models.TaskStatus
	Priority          models.TaskPriority
	IssueType         models.IssueType
	DueDate           *string
	Labels            []string
	ParentTaskID      *uint
	StoryPoints       *int
	OriginalEstimate  *int
	RemainingEstimate *int
}

// TaskUpdate is a partial set of field changes. Nil means "leave as is".
type TaskUpdate struct {
	Title             *string
	Description       *string
	Status            *models.TaskStatus
	Priority          *models.TaskPriority
	IssueType         *models.IssueType
	AssigneeID        *uint
	DueDate           *string
	Labels            *[]string
	StoryPoints       *int
	OriginalEstimate  *int
	RemainingEstimate *int
}

// CreateTask validates references, persists the task and records the
// creation audit trail. An invalid assignee fails the whole request;
// the activity and notification writes after the insert are
// best-effort and surface their error without rolling the task back.
func CreateTask(db *gorm.DB, in TaskCreate, reporterID uint) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.ProjectID == 0 {
		return nil, fmt.Errorf("%w: projectId is required", ErrValidation)
	}

	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, priority)
	}
	issueType := in.IssueType
	if issueType == "" {
		issueType = models.TypeTask
	}
	if !models.ValidIssueType(issueType) {
		return nil, fmt.Errorf("%w: invalid issueType %q", ErrValidation, issueType)
	}

	assigneeID := in.AssigneeID
	if assigneeID != nil {
		var user models.User
		if err := db.First(&user, *assigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: assignee with id %d does not exist", ErrInvalidReference, *assigneeID)
			}
			return nil, err
		}
	}

	if in.ParentTaskID != nil {
		var parent models.Task
		if err := db.First(&parent, *in.ParentTaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent task %d does not exist", ErrInvalidReference, *in.ParentTaskID)
			}
			return nil, err
		}
	}

	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}

	task := models.Task{
		Title:             in.Title,
		Description:       in.Description,
		Status:            status,
		Priority:          priority,
		IssueType:         issueType,
		ProjectID:         in.ProjectID,
		AssigneeID:        assigneeID,
		ReporterID:        reporterID,
		ParentTaskID:      in.ParentTaskID,
		DueDate:           in.DueDate,
		Labels:            labels,
		Attachments:       []models.Attachment{},
		IssueLinks:        []models.IssueLink{},
		Watchers:          []uint{},
		StoryPoints:       in.StoryPoints,
		OriginalEstimate:  in.OriginalEstimate,
		RemainingEstimate: in.RemainingEstimate,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	if err := LogActivity(db, task.ID, reporterID, models.ActivityCreate, "created this task"); err != nil {
		return &task, err
	}
	if assigneeID != nil {
		if err := Notify(db, *assigneeID, models.NotifyInfo, "New Task Assigned",
			fmt.Sprintf("You have been assigned to task: %s", task.Title),
			fmt.Sprintf("/project/%d", task.ProjectID)); err != nil {
			return &task, err
		}
		if err := LogActivity(db, task.ID, reporterID, models.ActivityUpdate,
			fmt.Sprintf("assigned to user #%d", *assigneeID)); err != nil {
			return &task, err
		}
	}
	return &task, nil
}

// ApplyUpdate applies a partial field update to a task, enforcing the
// subtask-completion gate before any mutation. For each of status,
// priority and assignee that changed it appends an activity record,
// and a changed assignee additionally receives a notification. Those
// side-effect writes happen after the update has committed.
func ApplyUpdate(db *gorm.DB, taskID uint, upd TaskUpdate, actorID uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	oldStatus := task.Status
	oldPriority := task.Priority
	oldAssignee := task.AssigneeID

	if upd.Status != nil {
		if !models.ValidStatus(*upd.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *upd.Status)
		}
		// Moving to Done requires every immediate subtask to be Done.
		if *upd.Status == models.StatusDone && oldStatus != models.StatusDone {
			var incomplete int64
			if err := db.Model(&models.Task{}).
				Where("parent_task_id = ? AND status <> ?", task.ID, models.StatusDone).
				Count(&incomplete).Error; err != nil {
				return nil, err
			}
			if incomplete > 0 {
				return nil, fmt.Errorf("%w: cannot complete task, all subtasks must be completed first", ErrPreconditionFailed)
			}
		}
	}
	if upd.Priority != nil && !models.ValidPriority(*upd.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, *upd.Priority)
	}
	if upd.IssueType != nil && !models.ValidIssueType(*upd.IssueType) {
		return nil, fmt.Errorf("%w: invalid issueType %q", ErrValidation, *upd.IssueType)
	}

	var newAssignee *models.User
	assigneeChanged := upd.AssigneeID != nil && (oldAssignee == nil || *oldAssignee != *upd.AssigneeID)
	if assigneeChanged {
		var user models.User
		if err := db.First(&user, *upd.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: assignee with id %d does not exist", ErrInvalidReference, *upd.AssigneeID)
			}
			return nil, err
		}
		newAssignee = &user
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.IssueType != nil {
		task.IssueType = *upd.IssueType
	}
	if upd.AssigneeID != nil {
		task.AssigneeID = upd.AssigneeID
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.Labels != nil {
		task.Labels = *upd.Labels
	}
	if upd.StoryPoints != nil {
		task.StoryPoints = upd.StoryPoints
	}
	if upd.OriginalEstimate != nil {
		task.OriginalEstimate = upd.OriginalEstimate
	}
	if upd.RemainingEstimate != nil {
		task.RemainingEstimate = upd.RemainingEstimate
	}

	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}

	if upd.Status != nil && task.Status != oldStatus {
		if err := LogActivity(db, task.ID, actorID, models.ActivityStatus,
			fmt.Sprintf("changed status from %s to %s", oldStatus, task.Status)); err != nil {
			return &task, err
		}
	}
	if upd.Priority != nil && task.Priority != oldPriority {
		if err := LogActivity(db, task.ID, actorID, models.ActivityPriority,
			fmt.Sprintf("changed priority from %s to %s", oldPriority, task.Priority)); err != nil {
			return &task, err
		}
	}
	if assigneeChanged {
		if err := LogActivity(db, task.ID, actorID, models.ActivityAssign,
			fmt.Sprintf("assigned to %s", newAssignee.Name)); err != nil {
			return &task, err
		}
		if err := Notify(db, newAssignee.ID, models.NotifyInfo, "Task Assignment Update",
			fmt.Sprintf("You have been assigned to task: %s", task.Title),
			fmt.Sprintf("/project/%d", task.ProjectID)); err != nil {
			return &task, err
		}
	}
	return &task, nil
}

// DeleteTask soft-deletes a task and its immediate subtasks, comments
// and activities. With permanent set it erases the rows and their
// dependents irreversibly, including an already soft-deleted task.
func DeleteTask(db *gorm.DB, taskID uint, permanent bool) error {
	query := db
	if permanent {
		query = db.Unscoped()
	}
	var task models.Task
	if err := query.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return err
	}

	if permanent {
		if err := db.Unscoped().Where("parent_task_id = ?", task.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := db.Unscoped().Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := db.Unscoped().Where("task_id = ?", task.ID).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := db.Where("task_id = ?", task.ID).Delete(&models.WorkLog{}).Error; err != nil {
			return err
		}
		return db.Unscoped().Delete(&task).Error
	}

	if err := db.Where("parent_task_id = ?", task.ID).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := db.Where("task_id = ?", task.ID).Delete(&models.Activity{}).Error; err != nil {
		return err
	}
	return db.Delete(&task).Error
}

// RestoreTask clears the soft-delete marker. It does not distinguish a
// task that was never deleted from one that was; only an id that never
// existed is a NotFound.
func RestoreTask(db *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := db.Unscoped().First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	if task.DeletedAt.Valid {
		if err := db.Unscoped().Model(&task).Update("deleted_at", nil).Error; err != nil {
			return nil, err
		}
	}
	if err := db.First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
