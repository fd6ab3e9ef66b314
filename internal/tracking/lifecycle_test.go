package tracking

import (
	"testing"

	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTask(t *testing.T, db *gorm.DB, task models.Task) models.Task {
	t.Helper()
	if task.Title == "" {
		task.Title = "task"
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.IssueType == "" {
		task.IssueType = models.TypeTask
	}
	if task.ProjectID == 0 {
		task.ProjectID = 1
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestCreateTask_Defaults(t *testing.T) {
	db := newTestDB(t)
	reporter := seedUser(t, db, "alice")

	task, err := CreateTask(db, TaskCreate{Title: "Fix login", ProjectID: 1}, reporter.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, task.Status)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Equal(t, models.TypeTask, task.IssueType)
	require.Equal(t, reporter.ID, task.ReporterID)

	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Equal(t, models.ActivityCreate, activities[0].Type)
}

func TestCreateTask_UnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	reporter := seedUser(t, db, "alice")

	missing := uint(999)
	_, err := CreateTask(db, TaskCreate{Title: "x", ProjectID: 1, AssigneeID: &missing}, reporter.ID)
	require.ErrorIs(t, err, ErrInvalidReference)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateTask_AssignedNotifiesAssignee(t *testing.T) {
	db := newTestDB(t)
	reporter := seedUser(t, db, "alice")
	assignee := seedUser(t, db, "bob")

	task, err := CreateTask(db, TaskCreate{Title: "x", ProjectID: 1, AssigneeID: &assignee.ID}, reporter.ID)
	require.NoError(t, err)
	require.Equal(t, assignee.ID, *task.AssigneeID)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", assignee.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, "New Task Assigned", notifications[0].Title)

	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&activities).Error)
	require.Len(t, activities, 2) // create + assignment
}

func TestApplyUpdate_DoneBlockedByIncompleteSubtasks(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	parent := seedTask(t, db, models.Task{Title: "parent"})
	seedTask(t, db, models.Task{Title: "child", ParentTaskID: &parent.ID, Status: models.StatusInProgress})

	done := models.StatusDone
	_, err := ApplyUpdate(db, parent.ID, TaskUpdate{Status: &done}, actor.ID)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	// No mutation occurred
	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, parent.ID).Error)
	require.Equal(t, models.StatusTodo, reloaded.Status)
}

func TestApplyUpdate_DoneAllowedWhenSubtasksDone(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	parent := seedTask(t, db, models.Task{Title: "parent"})
	seedTask(t, db, models.Task{Title: "child", ParentTaskID: &parent.ID, Status: models.StatusDone})

	done := models.StatusDone
	task, err := ApplyUpdate(db, parent.ID, TaskUpdate{Status: &done}, actor.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, task.Status)

	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ? AND type = ?", parent.ID, models.ActivityStatus).Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Contains(t, activities[0].Description, "changed status from Todo to Done")
}

func TestApplyUpdate_AssigneeChangeLogsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	assignee := seedUser(t, db, "bob")
	task := seedTask(t, db, models.Task{Title: "t"})

	updated, err := ApplyUpdate(db, task.ID, TaskUpdate{AssigneeID: &assignee.ID}, actor.ID)
	require.NoError(t, err)
	require.Equal(t, assignee.ID, *updated.AssigneeID)

	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ? AND type = ?", task.ID, models.ActivityAssign).Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Contains(t, activities[0].Description, "assigned to bob")

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", assignee.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
}

func TestApplyUpdate_InvalidStatus(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})

	bogus := models.TaskStatus("Archived")
	_, err := ApplyUpdate(db, task.ID, TaskUpdate{Status: &bogus}, actor.ID)
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplyUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")

	title := "x"
	_, err := ApplyUpdate(db, 12345, TaskUpdate{Title: &title}, actor.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndRestore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	task := seedTask(t, db, models.Task{Title: "disposable", Description: "keep me"})

	require.NoError(t, DeleteTask(db, task.ID, false))

	// Hidden from default reads
	var missing models.Task
	err := db.First(&missing, task.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	restored, err := RestoreTask(db, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Title, restored.Title)
	require.Equal(t, task.Description, restored.Description)
	require.False(t, restored.DeletedAt.Valid)
}

func TestDeleteTask_SoftCascadesToSubtasksAndComments(t *testing.T) {
	db := newTestDB(t)
	parent := seedTask(t, db, models.Task{Title: "parent"})
	child := seedTask(t, db, models.Task{Title: "child", ParentTaskID: &parent.ID})
	comment := models.Comment{Content: "hi", TaskID: parent.ID, UserID: 1}
	require.NoError(t, db.Create(&comment).Error)

	require.NoError(t, DeleteTask(db, parent.ID, false))

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", child.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Comment{}).Where("task_id = ?", parent.ID).Count(&count).Error)
	require.Zero(t, count)

	// Still present under the soft-delete scope
	require.NoError(t, db.Unscoped().Model(&models.Task{}).Where("id = ?", child.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDeleteTask_PermanentErasesRow(t *testing.T) {
	db := newTestDB(t)
	task := seedTask(t, db, models.Task{Title: "gone"})
	worklog := models.WorkLog{TaskID: task.ID, UserID: 1, TimeSpent: 10}
	require.NoError(t, db.Create(&worklog).Error)

	require.NoError(t, DeleteTask(db, task.ID, true))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.WorkLog{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Zero(t, count)

	// Permanently gone: restore now reports NotFound
	_, err := RestoreTask(db, task.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreTask_NeverExisted(t *testing.T) {
	db := newTestDB(t)
	_, err := RestoreTask(db, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}
