package services

import (
	"errors"

	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/models"
	"github.com/circuit-dev/circuit/internal/types"
	"gorm.io/gorm"
)

// CreateProject inserts the project and makes the creator its first admin.
// Both rows commit or neither does.
func CreateProject(gdb *gorm.DB, actorID uint, name string) (*models.Project, error) {
	project := models.Project{Name: name}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    actorID,
			ProjectID: project.ID,
			Role:      types.RoleAdmin,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		return nil, err
	}

	return &project, nil
}

// ListUserProjects returns every project the user belongs to, in no
// particular order.
func ListUserProjects(gdb *gorm.DB, userID uint) ([]models.Project, error) {
	var projects []models.Project

	err := gdb.
		Joins("JOIN project_memberships ON project_memberships.project_id = projects.id").
		Where("project_memberships.user_id = ?", userID).
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	return projects, nil
}

// DeleteProject removes the project and everything under it. Admin only.
// Dependents go first: assignments reference tasks, tasks and messages and
// memberships reference the project, so the project row is deleted last.
// The whole cascade is one transaction, and deletes are unscoped so no row
// referencing the project survives.
func DeleteProject(gdb *gorm.DB, actorID, projectID uint) error {
	admin, err := authz.IsAdmin(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !admin {
		return ErrDenied
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"task_id IN (?)",
			tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.TaskAssignment{}).Error

		if err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Project{}, projectID).Error
	})
}

type MemberView struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type TaskView struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Assignees   []string `json:"assignees"`
}

type MessageView struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

type ProjectView struct {
	ID       uint          `json:"id"`
	Name     string        `json:"name"`
	Members  []MemberView  `json:"members"`
	Tasks    []TaskView    `json:"tasks"`
	Messages []MessageView `json:"messages"`
}

// GetProjectView assembles the full per-project view for a member: roster,
// tasks with resolved assignee usernames, and messages in ascending timestamp
// order labelled with each sender's current username. Non-members are denied
// without revealing whether the project exists.
func GetProjectView(gdb *gorm.DB, projectID, requesterID uint) (*ProjectView, error) {
	member, err := authz.CanViewProject(gdb, requesterID, projectID)

	if err != nil {
		return nil, err
	}

	if !member {
		return nil, ErrDenied
	}

	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	view := ProjectView{
		ID:       project.ID,
		Name:     project.Name,
		Members:  []MemberView{},
		Tasks:    []TaskView{},
		Messages: []MessageView{},
	}

	var memberships []models.ProjectMembership

	err = gdb.Preload("User").Where("project_id = ?", projectID).Find(&memberships).Error

	if err != nil {
		return nil, err
	}

	for _, m := range memberships {
		view.Members = append(view.Members, MemberView{
			UserID:   m.UserID,
			Username: m.User.Username,
			Role:     m.Role,
		})
	}

	var tasks []models.Task

	err = gdb.Preload("TaskAssignments.User").Where("project_id = ?", projectID).Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		assignees := []string{}

		for _, assignment := range task.TaskAssignments {
			assignees = append(assignees, assignment.User.Username)
		}

		view.Tasks = append(view.Tasks, TaskView{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Status:      task.Status,
			Assignees:   assignees,
		})
	}

	messages, err := ListProjectMessages(gdb, projectID)

	if err != nil {
		return nil, err
	}

	view.Messages = messages

	return &view, nil
}
