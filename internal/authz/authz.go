// Package authz decides who may see or mutate a project and its contents.
// Every predicate re-reads the membership table on each call, so decisions
// always reflect the latest committed data. Absence of a row is a clean
// false; only storage failures return an error.
package authz

import (
	"errors"

	"github.com/circuit-dev/circuit/internal/models"
	"github.com/circuit-dev/circuit/internal/types"
	"gorm.io/gorm"
)

func membership(gdb *gorm.DB, userID, projectID uint) (*models.ProjectMembership, error) {
	var m models.ProjectMembership

	err := gdb.Where("user_id = ? AND project_id = ?", userID, projectID).First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &m, nil
}

// IsMember reports whether a membership row exists for the pair.
func IsMember(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	m, err := membership(gdb, userID, projectID)
	return m != nil, err
}

// IsAdmin reports whether the user holds the admin role in the project.
// An admin is always a member as well.
func IsAdmin(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	m, err := membership(gdb, userID, projectID)

	if err != nil || m == nil {
		return false, err
	}

	return m.Role == types.RoleAdmin, nil
}

// CanViewProject gates read access to a project and everything under it.
func CanViewProject(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	return IsMember(gdb, userID, projectID)
}

// CanManageMembers gates adding and removing members.
func CanManageMembers(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	return IsAdmin(gdb, userID, projectID)
}

// CanMutateTask gates task creation, status changes, assignment and deletion.
// Deliberately membership-gated, not admin-gated: any member may touch any
// task in a project they belong to.
func CanMutateTask(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	return IsMember(gdb, userID, projectID)
}

// CanSendMessage gates posting to the project's message board.
func CanSendMessage(gdb *gorm.DB, userID, projectID uint) (bool, error) {
	return IsMember(gdb, userID, projectID)
}
