package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleScheduler, PermissionShiftManage, true},
		{RoleAdmin, PermissionAuditDecide, true},
		{RoleScheduler, PermissionShiftExecute, true},
		{RoleSupervisor, PermissionScheduleExport, true},
		{RoleSupervisor, PermissionAuditDecide, false},
		{RoleCleaner, PermissionShiftExecute, true},
		{RoleCleaner, PermissionShiftViewDrafts, false},
		{RoleCleaner, PermissionScheduleExport, false},
		{Role("visitor"), PermissionShiftViewPublished, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.role, c.perm), "%s/%s", c.role, c.perm)
	}
}

func TestRole_IsScheduler(t *testing.T) {
	assert.True(t, RoleAdmin.IsScheduler())
	assert.True(t, RoleScheduler.IsScheduler())
	assert.False(t, RoleSupervisor.IsScheduler())
	assert.False(t, RoleCleaner.IsScheduler())
	assert.False(t, Role("").IsScheduler())
}
