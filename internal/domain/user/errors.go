package user

import "errors"

var (
	ErrStaffNotFound         = errors.New("staff member not found")
	ErrStaffNotAssignable    = errors.New("staff member is not active or not assignable")
	ErrSchedulerRoleRequired = errors.New("scheduler role required")
	ErrPermissionDenied      = errors.New("permission denied")
)
