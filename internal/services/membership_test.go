package services

import (
	"testing"

	"github.com/circuit-dev/circuit/internal/authz"
	"github.com/circuit-dev/circuit/internal/models"
	"github.com/circuit-dev/circuit/internal/types"
	"github.com/stretchr/testify/require"
)

func TestAddMember(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))
	requireRole(t, gdb, project.ID, bob.ID, types.RoleMember)
}

func TestAddMemberDeniedForNonAdmin(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	carol := createTestUser(t, gdb, "carol")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))

	// bob holds plain membership; he may not grow the roster, and the
	// denial leaves no trace regardless of target validity.
	err := AddMember(gdb, bob.ID, project.ID, "carol", types.RoleMember)
	require.ErrorIs(t, err, ErrDenied)
	require.Zero(t, membershipCount(t, gdb, project.ID, carol.ID))

	err = AddMember(gdb, bob.ID, project.ID, "nobody", types.RoleMember)
	require.ErrorIs(t, err, ErrDenied)

	// Outsiders are denied outright.
	err = AddMember(gdb, carol.ID, project.ID, "carol", types.RoleMember)
	require.ErrorIs(t, err, ErrDenied)
}

func TestAddMemberUnknownTarget(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	project := createTestProject(t, gdb, alice.ID, "P")

	err := AddMember(gdb, alice.ID, project.ID, "nobody", types.RoleMember)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddMemberDuplicateIsBenign(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))

	err := AddMember(gdb, alice.ID, project.ID, "bob", types.RoleAdmin)
	require.ErrorIs(t, err, ErrDuplicate)

	// The original membership is untouched.
	requireRole(t, gdb, project.ID, bob.ID, types.RoleMember)
	require.EqualValues(t, 1, membershipCount(t, gdb, project.ID, bob.ID))
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	err := AddMember(gdb, alice.ID, project.ID, "bob", "owner")
	require.ErrorIs(t, err, ErrDenied)
}

func TestRemoveMemberCleansUpAssignments(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))

	task, err := CreateTask(gdb, alice.ID, project.ID, "T", "", "", []string{"bob"})
	require.NoError(t, err)
	require.EqualValues(t, 1, assignmentCount(t, gdb, task.ID, bob.ID))

	require.NoError(t, RemoveMember(gdb, alice.ID, project.ID, "bob"))

	// Add-then-remove leaves the pair exactly as it started, assignments
	// included.
	require.Zero(t, membershipCount(t, gdb, project.ID, bob.ID))
	require.Zero(t, assignmentCount(t, gdb, task.ID, bob.ID))

	// And the pair can be re-added afterwards.
	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))
}

func TestRemoveMemberGates(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))

	// Non-admin actor.
	err := RemoveMember(gdb, bob.ID, project.ID, "alice")
	require.ErrorIs(t, err, ErrDenied)
	require.EqualValues(t, 1, membershipCount(t, gdb, project.ID, alice.ID))

	// Self-removal is blocked even for admins.
	err = RemoveMember(gdb, alice.ID, project.ID, "alice")
	require.ErrorIs(t, err, ErrDenied)

	// Unknown target.
	err = RemoveMember(gdb, alice.ID, project.ID, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	// Known user who is not a member.
	createTestUser(t, gdb, "carol")
	err = RemoveMember(gdb, alice.ID, project.ID, "carol")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdminHandoff(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	carol := createTestUser(t, gdb, "carol")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))
	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "carol", types.RoleAdmin))

	// With a second admin in place, carol can remove alice.
	require.NoError(t, RemoveMember(gdb, carol.ID, project.ID, "alice"))

	require.Zero(t, membershipCount(t, gdb, project.ID, alice.ID))
	requireRole(t, gdb, project.ID, carol.ID, types.RoleAdmin)
	requireRole(t, gdb, project.ID, bob.ID, types.RoleMember)
}

func TestLeaveProject(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	require.NoError(t, AddMember(gdb, alice.ID, project.ID, "bob", types.RoleMember))

	task, err := CreateTask(gdb, bob.ID, project.ID, "T", "", "", []string{"bob"})
	require.NoError(t, err)

	require.NoError(t, LeaveProject(gdb, bob.ID, project.ID))

	require.Zero(t, membershipCount(t, gdb, project.ID, bob.ID))
	require.Zero(t, assignmentCount(t, gdb, task.ID, bob.ID))
}

func TestLeaveProjectBlockedForAdmins(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	project := createTestProject(t, gdb, alice.ID, "P")

	err := LeaveProject(gdb, alice.ID, project.ID)
	require.ErrorIs(t, err, ErrDenied)

	admin, aerr := authz.IsAdmin(gdb, alice.ID, project.ID)
	require.NoError(t, aerr)
	require.True(t, admin)
}

func TestLeaveProjectNotAMember(t *testing.T) {
	gdb := newTestDB(t)

	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	project := createTestProject(t, gdb, alice.ID, "P")

	err := LeaveProject(gdb, bob.ID, project.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Nothing was created as a side effect.
	var count int64
	require.NoError(t, gdb.Model(&models.ProjectMembership{}).
		Where("project_id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
