package tracking

import (
	"testing"
	"time"

	"issue-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

func stubClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	current := at
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return &current
}

func TestStartTimer_SetsStartTime(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})

	stubClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	started, err := StartTimer(db, task.ID, actor.ID)
	require.NoError(t, err)
	require.NotNil(t, started.TimerStartTime)
	require.True(t, started.TimerRunning())
}

func TestStartTimer_AlreadyRunning(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})
	stubClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := StartTimer(db, task.ID, actor.ID)
	require.NoError(t, err)

	_, err = StartTimer(db, task.ID, actor.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestStartTimer_NotFound(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	_, err := StartTimer(db, 404, actor.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStopTimer_NinetySecondsLogsTwoMinutes(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	remaining := 10
	task := seedTask(t, db, models.Task{Title: "t", RemainingEstimate: &remaining})

	clock := stubClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	_, err := StartTimer(db, task.ID, actor.ID)
	require.NoError(t, err)

	*clock = clock.Add(90 * time.Second)
	worklog, stopped, err := StopTimer(db, task.ID, actor.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, worklog)
	require.Equal(t, 2, worklog.TimeSpent) // ceil(1.5m)
	require.Equal(t, "auto-logged from timer", worklog.Description)
	require.Nil(t, stopped.TimerStartTime)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 2, reloaded.TimeSpent)
	require.Equal(t, 8, *reloaded.RemainingEstimate)
	require.Nil(t, reloaded.TimerStartTime)

	var count int64
	require.NoError(t, db.Model(&models.WorkLog{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ? AND type = ?", task.ID, models.ActivityWorklog).Find(&activities).Error)
	require.Len(t, activities, 1)
}

func TestStopTimer_ZeroElapsedJustClears(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})

	stubClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	_, err := StartTimer(db, task.ID, actor.ID)
	require.NoError(t, err)

	worklog, stopped, err := StopTimer(db, task.ID, actor.ID, nil)
	require.NoError(t, err)
	require.Nil(t, worklog)
	require.Nil(t, stopped.TimerStartTime)

	var count int64
	require.NoError(t, db.Model(&models.WorkLog{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestStopTimer_NoTimerNoFallback(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})

	_, _, err := StopTimer(db, task.ID, actor.ID, nil)
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestStopTimer_FallbackMinutes(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})
	stubClock(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	fallback := 15
	worklog, _, err := StopTimer(db, task.ID, actor.ID, &fallback)
	require.NoError(t, err)
	require.NotNil(t, worklog)
	require.Equal(t, 15, worklog.TimeSpent)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 15, reloaded.TimeSpent)
}

func TestLogWork_UpdatesAggregates(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	remaining := 100
	task := seedTask(t, db, models.Task{Title: "t", TimeSpent: 5, RemainingEstimate: &remaining})

	worklog, err := LogWork(db, task.ID, actor.ID, 30, nil, "investigated bug")
	require.NoError(t, err)
	require.Equal(t, 30, worklog.TimeSpent)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 35, reloaded.TimeSpent)
	require.Equal(t, 70, *reloaded.RemainingEstimate)
}

func TestLogWork_RemainingClampedAtZero(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	remaining := 10
	task := seedTask(t, db, models.Task{Title: "t", RemainingEstimate: &remaining})

	_, err := LogWork(db, task.ID, actor.ID, 45, nil, "")
	require.NoError(t, err)

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 45, reloaded.TimeSpent)
	require.Equal(t, 0, *reloaded.RemainingEstimate)
}

func TestLogWork_RejectsNonPositiveMinutes(t *testing.T) {
	db := newTestDB(t)
	actor := seedUser(t, db, "alice")
	task := seedTask(t, db, models.Task{Title: "t"})

	_, err := LogWork(db, task.ID, actor.ID, 0, nil, "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = LogWork(db, task.ID, actor.ID, -5, nil, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteWorkLog_ReversesAggregates(t *testing.T) {
	db := newTestDB(t)
	remaining := 20
	task := seedTask(t, db, models.Task{Title: "t", TimeSpent: 100, RemainingEstimate: &remaining})
	worklog := models.WorkLog{TaskID: task.ID, UserID: 1, TimeSpent: 30}
	require.NoError(t, db.Create(&worklog).Error)

	require.NoError(t, DeleteWorkLog(db, task.ID, worklog.ID))

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 70, reloaded.TimeSpent)
	require.Equal(t, 50, *reloaded.RemainingEstimate)

	var count int64
	require.NoError(t, db.Model(&models.WorkLog{}).Where("id = ?", worklog.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteWorkLog_CreditsEstimateEvenWhenUnset(t *testing.T) {
	// Historical behavior: the credit is unconditional, so deleting a
	// worklog materializes an estimate on a task that never had one.
	db := newTestDB(t)
	task := seedTask(t, db, models.Task{Title: "t", TimeSpent: 30})
	worklog := models.WorkLog{TaskID: task.ID, UserID: 1, TimeSpent: 30}
	require.NoError(t, db.Create(&worklog).Error)

	require.NoError(t, DeleteWorkLog(db, task.ID, worklog.ID))

	var reloaded models.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	require.Equal(t, 0, reloaded.TimeSpent)
	require.NotNil(t, reloaded.RemainingEstimate)
	require.Equal(t, 30, *reloaded.RemainingEstimate)
}

func TestDeleteWorkLog_NotFound(t *testing.T) {
	db := newTestDB(t)
	task := seedTask(t, db, models.Task{Title: "t"})
	require.ErrorIs(t, DeleteWorkLog(db, task.ID, 999), ErrNotFound)
}
