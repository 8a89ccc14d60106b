package services

import (
	"errors"

	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultTaskStatus = "todo"

// taskInProject loads the task and confirms it belongs to the project the
// actor was authorized against. A task under a different project is treated
// as absent.
func taskInProject(gdb *gorm.DB, projectID, taskID uint) (*models.Task, error) {
	var task models.Task

	err := gdb.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &task, nil
}

// CreateTask inserts a task and assigns it to the named users. Any project
// member may create tasks. Each assignee name resolves independently;
// unknown names are skipped rather than failing the whole operation.
func CreateTask(gdb *gorm.DB, actorID, projectID uint, title, description, status string, assigneeNames []string) (*models.Task, error) {
	member, err := authz.CanMutateTask(gdb, actorID, projectID)

	if err != nil {
		return nil, err
	}

	if !member {
		return nil, ErrDenied
	}

	if status == "" {
		status = DefaultTaskStatus
	}

	task := models.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		// Deduplicate before inserting: a unique-violation INSERT would
		// abort the whole transaction on postgres, so repeated names
		// must never reach the database.
		seen := make(map[uint]bool)

		for _, name := range assigneeNames {
			user, err := userByUsername(tx, name)

			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return err
			}

			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			assignment := models.TaskAssignment{TaskID: task.ID, UserID: user.ID}

			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateTaskStatus sets the task's status. Membership is the only gate.
func UpdateTaskStatus(gdb *gorm.DB, actorID, projectID, taskID uint, status string) error {
	member, err := authz.CanMutateTask(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return ErrDenied
	}

	task, err := taskInProject(gdb, projectID, taskID)

	if err != nil {
		return err
	}

	return gdb.Model(task).Update("status", status).Error
}

// AssignTask adds username to the task's assignees. An existing assignment
// for the pair is a benign no-op.
func AssignTask(gdb *gorm.DB, actorID, projectID, taskID uint, username string) error {
	member, err := authz.CanMutateTask(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return ErrDenied
	}

	task, err := taskInProject(gdb, projectID, taskID)

	if err != nil {
		return err
	}

	user, err := userByUsername(gdb, username)

	if err != nil {
		return err
	}

	assignment := models.TaskAssignment{TaskID: task.ID, UserID: user.ID}

	return gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error
}

// DeleteTask removes the task and its assignments. Any member may delete any
// task in the project; there is no admin restriction on task deletion.
func DeleteTask(gdb *gorm.DB, actorID, projectID, taskID uint) error {
	member, err := authz.CanMutateTask(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return ErrDenied
	}

	task, err := taskInProject(gdb, projectID, taskID)

	if err != nil {
		return err
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Task{}, task.ID).Error
	})
}
