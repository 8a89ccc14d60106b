package services

import (
	"errors"

	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/models"
	"github.com/circuit-dev/circuit/internal/types"
	"gorm.io/gorm"
)

func userByUsername(gdb *gorm.DB, username string) (*models.User, error) {
	var user models.User

	err := gdb.Where("username = ?", username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// AddMember grants targetUsername a role in the project. The actor must be an
// admin. An already-present membership is reported as ErrDuplicate without
// touching the row: the insert itself is the arbiter, so two simultaneous
// adds for the same user resolve through the composite unique index.
func AddMember(gdb *gorm.DB, actorID, projectID uint, targetUsername, role string) error {
	if !types.ValidRole(role) {
		return ErrDenied
	}

	admin, err := authz.CanManageMembers(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !admin {
		return ErrDenied
	}

	target, err := userByUsername(gdb, targetUsername)

	if err != nil {
		return err
	}

	membership := models.ProjectMembership{
		UserID:    target.ID,
		ProjectID: projectID,
		Role:      role,
	}

	if err := gdb.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}

	return nil
}

// removeMembership deletes the user's assignments on the project's tasks and
// then the membership row, in that order, inside one transaction. Assignment
// cleanup must come first so no assignment ever references a non-member.
func removeMembership(gdb *gorm.DB, projectID, userID uint) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"user_id = ? AND task_id IN (?)",
			userID,
			tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.TaskAssignment{}).Error

		if err != nil {
			return err
		}

		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMembership{}).Error
	})
}

// RemoveMember removes targetUsername from the project. The actor must be an
// admin and may not remove themselves through this path; stepping down is not
// supported, so an admin only exits via another admin or project deletion.
func RemoveMember(gdb *gorm.DB, actorID, projectID uint, targetUsername string) error {
	admin, err := authz.CanManageMembers(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !admin {
		return ErrDenied
	}

	target, err := userByUsername(gdb, targetUsername)

	if err != nil {
		return err
	}

	if target.ID == actorID {
		return ErrDenied
	}

	member, err := authz.IsMember(gdb, target.ID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return ErrNotFound
	}

	return removeMembership(gdb, projectID, target.ID)
}

// LeaveProject removes the actor's own membership. Admins cannot leave: a
// project must never lose its last admin through this path.
func LeaveProject(gdb *gorm.DB, actorID, projectID uint) error {
	m, err := authz.IsAdmin(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if m {
		return ErrDenied
	}

	member, err := authz.IsMember(gdb, actorID, projectID)

	if err != nil {
		return err
	}

	if !member {
		return ErrNotFound
	}

	return removeMembership(gdb, projectID, actorID)
}
