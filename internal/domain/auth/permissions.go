package auth

import "context"

// Role names double as the SPA's home path segments (/employee, /manager,
// /hr), so they stay lowercase.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	}
	return false
}

const (
	PermLeaveRead         = "leave.read"
	PermLeaveWrite        = "leave.write"
	PermLeaveApprove      = "leave.approve"
	PermWFHRead           = "wfh.read"
	PermNotificationsRead = "notifications.read"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermAdminMetrics      = "admin.metrics"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermLeaveWrite,
		PermWFHRead,
		PermNotificationsRead,
	},
	RoleManager: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermWFHRead,
		PermNotificationsRead,
		PermReportsRead,
	},
	RoleHR: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermWFHRead,
		PermNotificationsRead,
		PermReportsRead,
		PermAuditRead,
		PermAdminMetrics,
	},
}

// Permissions answers role/permission checks from the fixed catalog above.
// The portal has a closed set of roles, so no lookup table is involved.
type Permissions struct{}

func (Permissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}
