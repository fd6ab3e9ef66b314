package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"issue-tracker-api/internal/auth"
	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/middleware"
	"issue-tracker-api/internal/models"
	"issue-tracker-api/internal/testutil"
	"issue-tracker-api/internal/tracking"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_DuplicateMentionNotifiesOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	tracking.ResetMentionCache()

	author := models.User{Name: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&author).Error)
	jane := models.User{Name: "Jane Smith", Email: "jane@example.com", Password: "x"}
	require.NoError(t, db.Create(&jane).Error)
	task := models.Task{Title: "t", Status: models.StatusTodo, ProjectID: 1}
	require.NoError(t, db.Create(&task).Error)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/tasks/:id/comments", CreateComment)

	token, err := auth.GenerateToken(author.ID, author.Name)
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", task.ID), token, map[string]any{
		"content": "ping @[Jane Smith], again @[Jane Smith]",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, author.ID, created.UserID)
	require.NotNil(t, created.Author)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", jane.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotifyMention, notifications[0].Type)
	require.Contains(t, notifications[0].Message, "alice mentioned you")

	// Comment activity recorded on the task
	var activities []models.Activity
	require.NoError(t, db.Where("task_id = ? AND type = ?", task.ID, models.ActivityComment).Find(&activities).Error)
	require.Len(t, activities, 1)
}

func TestCreateComment_SelfMentionNotNotified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	tracking.ResetMentionCache()

	author := models.User{Name: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&author).Error)
	task := models.Task{Title: "t", Status: models.StatusTodo, ProjectID: 1}
	require.NoError(t, db.Create(&task).Error)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/tasks/:id/comments", CreateComment)

	token, err := auth.GenerateToken(author.ID, author.Name)
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", task.ID), token, map[string]any{
		"content": "note to self @[alice]",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateComment_TaskNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	author := models.User{Name: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&author).Error)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/tasks/:id/comments", CreateComment)

	token, err := auth.GenerateToken(author.ID, author.Name)
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, "/api/tasks/999/comments", token, map[string]any{"content": "hi"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
