package services

import (
	"fmt"
	"testing"

	"github.com/circuit-dev/circuit/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Message{},
	))

	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{Username: username, PasswordHash: "hashed"}
	require.NoError(t, gdb.Create(&user).Error)

	return &user
}

// createTestProject creates the project through the service so the creator
// gets the usual admin membership.
func createTestProject(t *testing.T, gdb *gorm.DB, creatorID uint, name string) *models.Project {
	t.Helper()

	project, err := CreateProject(gdb, creatorID, name)
	require.NoError(t, err)

	return project
}

func membershipCount(t *testing.T, gdb *gorm.DB, projectID, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, gdb.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error)

	return count
}

func assignmentCount(t *testing.T, gdb *gorm.DB, taskID, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, gdb.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error)

	return count
}

func requireRole(t *testing.T, gdb *gorm.DB, projectID, userID uint, role string) {
	t.Helper()

	var m models.ProjectMembership
	require.NoError(t, gdb.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error)
	require.Equal(t, role, m.Role)
}
