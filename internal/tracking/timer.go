package tracking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"issue-tracker-api/internal/models"

	"gorm.io/gorm"
)

// timeNow is stubbed in tests to simulate elapsed timer sessions.
var timeNow = time.Now

// StartTimer transitions a task's timer from idle to running. The
// transition is a conditional update on timer_start_time so that two
// concurrent starts cannot both succeed.
func StartTimer(db *gorm.DB, taskID, actorID uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	now := timeNow()
	res := db.Model(&models.Task{}).
		Where("id = ? AND timer_start_time IS NULL", taskID).
		Updates(map[string]any{
			"timer_start_time":  now,
			"last_heartbeat_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: timer is already running for task %d", ErrConflict, taskID)
	}

	task.TimerStartTime = &now
	task.LastHeartbeatAt = &now
	return &task, nil
}

// StopTimer transitions running to idle and converts the elapsed time
// into a work log. Elapsed minutes are the ceiling of the elapsed
// seconds over 60, so any positive duration logs at least one minute.
// If no timer is active a caller-supplied fallback duration may be
// logged instead; with neither, the call fails before any mutation.
// A zero-minute session just clears the timer.
//
// Clearing timer_start_time is guarded by a compare-and-swap on the
// observed start value, so racing stops credit at most one work log.
func StopTimer(db *gorm.DB, taskID, actorID uint, fallbackMinutes *int) (*models.WorkLog, *models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, nil, err
	}

	now := timeNow()

	if task.TimerStartTime == nil {
		if fallbackMinutes == nil || *fallbackMinutes <= 0 {
			return nil, nil, fmt.Errorf("%w: no active timer for task %d", ErrPreconditionFailed, taskID)
		}
		// Degraded path: no server-side timer, trust the supplied duration.
		startedAt := now.Add(-time.Duration(*fallbackMinutes) * time.Minute)
		worklog, err := recordTimerWork(db, &task, actorID, *fallbackMinutes, startedAt)
		if err != nil {
			return nil, &task, err
		}
		return worklog, &task, nil
	}

	startedAt := *task.TimerStartTime
	res := db.Model(&models.Task{}).
		Where("id = ? AND timer_start_time = ?", taskID, startedAt).
		Updates(map[string]any{
			"timer_start_time":  nil,
			"last_heartbeat_at": nil,
		})
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Another stop consumed this session first.
		return nil, nil, fmt.Errorf("%w: no active timer for task %d", ErrPreconditionFailed, taskID)
	}
	task.TimerStartTime = nil
	task.LastHeartbeatAt = nil

	elapsed := int(math.Ceil(now.Sub(startedAt).Seconds() / 60))
	if elapsed <= 0 {
		return nil, &task, nil
	}

	worklog, err := recordTimerWork(db, &task, actorID, elapsed, startedAt)
	if err != nil {
		return nil, &task, err
	}
	return worklog, &task, nil
}

// LogWork records a manual work entry and applies the same aggregate
// update as a timer stop.
func LogWork(db *gorm.DB, taskID, actorID uint, minutes int, startedAt *time.Time, description string) (*models.WorkLog, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w: timeSpent must be a positive number of minutes", ErrValidation)
	}
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	started := timeNow()
	if startedAt != nil {
		started = *startedAt
	}
	worklog := models.WorkLog{
		TaskID:      task.ID,
		UserID:      actorID,
		TimeSpent:   minutes,
		StartedAt:   started,
		Description: description,
	}
	if err := db.Create(&worklog).Error; err != nil {
		return nil, err
	}
	if err := applyTimeDelta(db, &task, minutes); err != nil {
		return &worklog, err
	}
	if err := LogActivity(db, task.ID, actorID, models.ActivityWorklog,
		fmt.Sprintf("logged %dm of work", minutes)); err != nil {
		return &worklog, err
	}
	return &worklog, nil
}

// DeleteWorkLog removes a work log and reverses its effect on the
// task's aggregates: timeSpent is debited (floored at zero) and
// remainingEstimate is credited the full amount unconditionally, even
// if it was unset when the entry was logged. That asymmetry matches
// the historical behavior and is a linear reversal, not a true undo.
func DeleteWorkLog(db *gorm.DB, taskID, worklogID uint) error {
	var worklog models.WorkLog
	if err := db.Where("id = ? AND task_id = ?", worklogID, taskID).First(&worklog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: worklog %d", ErrNotFound, worklogID)
		}
		return err
	}
	if err := db.Delete(&worklog).Error; err != nil {
		return err
	}

	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Task vanished; nothing left to rebalance.
			return nil
		}
		return err
	}

	newSpent := task.TimeSpent - worklog.TimeSpent
	if newSpent < 0 {
		newSpent = 0
	}
	remaining := 0
	if task.RemainingEstimate != nil {
		remaining = *task.RemainingEstimate
	}
	newRemaining := remaining + worklog.TimeSpent

	return db.Model(&task).Updates(map[string]any{
		"time_spent":         newSpent,
		"remaining_estimate": newRemaining,
	}).Error
}

// recordTimerWork converts an elapsed timer session into a work log
// plus aggregate updates and the worklog audit record.
func recordTimerWork(db *gorm.DB, task *models.Task, actorID uint, minutes int, startedAt time.Time) (*models.WorkLog, error) {
	worklog := models.WorkLog{
		TaskID:      task.ID,
		UserID:      actorID,
		TimeSpent:   minutes,
		StartedAt:   startedAt,
		Description: "auto-logged from timer",
	}
	if err := db.Create(&worklog).Error; err != nil {
		return nil, err
	}
	if err := applyTimeDelta(db, task, minutes); err != nil {
		return &worklog, err
	}
	if err := LogActivity(db, task.ID, actorID, models.ActivityWorklog,
		fmt.Sprintf("logged %dm of work", minutes)); err != nil {
		return &worklog, err
	}
	return &worklog, nil
}

// applyTimeDelta credits minutes to timeSpent and deducts them from
// remainingEstimate when one is set, clamped at zero. The task struct
// is updated in place to reflect the persisted values.
func applyTimeDelta(db *gorm.DB, task *models.Task, minutes int) error {
	updates := map[string]any{
		"time_spent": task.TimeSpent + minutes,
	}
	if task.RemainingEstimate != nil {
		newRemaining := *task.RemainingEstimate - minutes
		if newRemaining < 0 {
			newRemaining = 0
		}
		updates["remaining_estimate"] = newRemaining
	}
	if err := db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return err
	}
	task.TimeSpent += minutes
	if task.RemainingEstimate != nil {
		newRemaining := *task.RemainingEstimate - minutes
		if newRemaining < 0 {
			newRemaining = 0
		}
		task.RemainingEstimate = &newRemaining
	}
	return nil
}
