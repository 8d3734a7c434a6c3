package user

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"      // Back-office administrator
	RoleScheduler  Role = "scheduler"  // Builds and audits the schedule
	RoleSupervisor Role = "supervisor" // Performs inspections
	RoleCleaner    Role = "cleaner"    // Field staff
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Staff is a read-only view of a person record owned by the personnel directory.
type Staff struct {
	ID        string
	Name      string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsScheduler reports whether the role may see drafts and mutate the schedule.
func (r Role) IsScheduler() bool {
	return HasPermission(r, PermissionShiftManage)
}

// IsAssignable checks the staff member is active and holds one of the given roles.
func (s Staff) IsAssignable(assignableRoles []string) bool {
	if s.Status != StatusActive {
		return false
	}
	for _, r := range assignableRoles {
		if string(s.Role) == r {
			return true
		}
	}
	return false
}
