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

// CreateProjectRequest represents the request payload for creating a project
type CreateProjectRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Template     string `json:"template"`
	TeamLeaderID *uint  `json:"teamLeaderId"`
}

// UpdateProjectRequest represents the request payload for updating a project
type UpdateProjectRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	TeamLeaderID *uint   `json:"teamLeaderId"`
}

// AddMemberRequest represents the request payload for adding a member
type AddMemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// addMember inserts a membership row unless it exists, enforcing the
// per-project cap.
func addMember(db *gorm.DB, projectID, userID uint) error {
	var existing models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var count int64
	if err := db.Model(&models.ProjectMember{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxProjectMembers {
		return fmt.Errorf("%w: project member limit of %d reached", tracking.ErrConflict, models.MaxProjectMembers)
	}
	return db.Create(&models.ProjectMember{ProjectID: projectID, UserID: userID}).Error
}

// enrichProject fills the owner/teamLeader projections.
func enrichProject(db *gorm.DB, project *models.Project) {
	project.Owner = publicUser(db, project.OwnerID)
	if project.TeamLeaderID != nil {
		project.TeamLeader = publicUser(db, *project.TeamLeaderID)
	}
}

// CreateProject handles POST /api/projects
// The owner joins as a member automatically, as does the team leader
// when one is set.
func CreateProject(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := req.Template
	if template == "" {
		template = "Kanban"
	}
	project := models.Project{
		Name:         req.Name,
		Description:  req.Description,
		Template:     template,
		OwnerID:      userID,
		TeamLeaderID: req.TeamLeaderID,
	}

	db := database.GetDB()
	if err := db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	if err := addMember(db, project.ID, userID); err != nil {
		respondError(c, err)
		return
	}
	if req.TeamLeaderID != nil {
		if err := addMember(db, project.ID, *req.TeamLeaderID); err != nil {
			respondError(c, err)
			return
		}
	}

	enrichProject(db, &project)
	c.JSON(http.StatusCreated, project)
}

// GetProjects handles GET /api/projects
func GetProjects(c *gin.Context) {
	var projects []models.Project
	if err := database.GetDB().Order("created_at desc").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}
	for i := range projects {
		enrichProject(database.GetDB(), &projects[i])
	}
	c.JSON(http.StatusOK, projects)
}

// GetDashboardStats handles GET /api/projects/dashboard-stats
func GetDashboardStats(c *gin.Context) {
	db := database.GetDB()

	var totalProjects int64
	if err := db.Model(&models.Project{}).Count(&totalProjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	var activeTasks int64
	if err := db.Model(&models.Task{}).
		Where("status IN ?", []models.TaskStatus{models.StatusTodo, models.StatusInProgress}).
		Count(&activeTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	var completedTasks int64
	if err := db.Model(&models.Task{}).
		Where("status = ?", models.StatusDone).
		Count(&completedTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalProjects":  totalProjects,
		"activeTasks":    activeTasks,
		"completedTasks": completedTasks,
	})
}

// GetProject handles GET /api/projects/:id
func GetProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var project models.Project
	if err := database.GetDB().First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	enrichProject(database.GetDB(), &project)
	c.JSON(http.StatusOK, project)
}

// UpdateProject handles PUT /api/projects/:id
// A changed team leader is added to the membership, subject to the cap.
func UpdateProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	leaderChanged := req.TeamLeaderID != nil &&
		(project.TeamLeaderID == nil || *project.TeamLeaderID != *req.TeamLeaderID)

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.TeamLeaderID != nil {
		project.TeamLeaderID = req.TeamLeaderID
	}

	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	if leaderChanged {
		if err := addMember(db, project.ID, *req.TeamLeaderID); err != nil {
			respondError(c, err)
			return
		}
	}

	enrichProject(db, &project)
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/:id
// Only the owner may delete a project.
func DeleteProject(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := database.GetDB()
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can delete this project"})
		return
	}

	if err := db.Delete(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}

// GetProjectStats handles GET /api/projects/:id/stats
// Returns task counts grouped by status for one project.
func GetProjectStats(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type row struct {
		Status models.TaskStatus `json:"status"`
		Count  int64             `json:"count"`
	}
	var rows []row
	if err := database.GetDB().Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetProjectTrash handles GET /api/projects/:id/trash
// Lists soft-deleted tasks of a project so they can be restored.
func GetProjectTrash(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var tasks []models.Task
	if err := database.GetDB().Unscoped().
		Where("project_id = ? AND deleted_at IS NOT NULL", projectID).
		Order("deleted_at desc").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trash"})
		return
	}

	enrichTasks(database.GetDB(), tasks)
	c.JSON(http.StatusOK, tasks)
}

// GetProjectMembers handles GET /api/projects/:id/members
func GetProjectMembers(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := database.GetDB()
	var members []models.ProjectMember
	if err := db.Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	userIDs := make([]uint, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	var users []models.User
	if len(userIDs) > 0 {
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
			return
		}
	}

	resp := make([]gin.H, 0, len(users))
	for _, u := range users {
		resp = append(resp, gin.H{"id": u.ID, "name": u.Name, "email": u.Email})
	}
	c.JSON(http.StatusOK, resp)
}

// AddProjectMember handles POST /api/projects/:id/members
// Membership is capped at eight users per project.
func AddProjectMember(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	if publicUser(db, req.UserID) == nil {
		respondError(c, fmt.Errorf("%w: user with id %d does not exist", tracking.ErrInvalidReference, req.UserID))
		return
	}
	if err := addMember(db, projectID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"projectId": projectID, "userId": req.UserID})
}

// RemoveProjectMember handles DELETE /api/projects/:id/members/:userId
func RemoveProjectMember(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := database.GetDB().
		Where("project_id = ? AND user_id = ?", projectID, memberID).
		Delete(&models.ProjectMember{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
