package user

type Permission string

const (
	// Own work
	PermissionShiftViewPublished Permission = "shift.view_published"
	PermissionShiftExecute       Permission = "shift.execute"
	PermissionCalendarViewOwn    Permission = "calendar.view_own"

	// Schedule management
	PermissionShiftViewDrafts   Permission = "shift.view_drafts"
	PermissionShiftManage       Permission = "shift.manage"
	PermissionSchedulePublish   Permission = "schedule.publish"
	PermissionServiceTypeManage Permission = "service_type.manage"
	PermissionScheduleExport    Permission = "schedule.export"

	// Quality audit
	PermissionAuditDecide Permission = "audit.decide"
)

var fieldPermissions = []Permission{
	PermissionShiftViewPublished,
	PermissionShiftExecute,
	PermissionCalendarViewOwn,
}

var schedulerPermissions = append([]Permission{
	PermissionShiftViewDrafts,
	PermissionShiftManage,
	PermissionSchedulePublish,
	PermissionServiceTypeManage,
	PermissionScheduleExport,
	PermissionAuditDecide,
}, fieldPermissions...)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin:     schedulerPermissions,
	RoleScheduler: schedulerPermissions,
	// Supervisors run inspections and read the week like field staff
	RoleSupervisor: append([]Permission{PermissionScheduleExport}, fieldPermissions...),
	RoleCleaner:    fieldPermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
