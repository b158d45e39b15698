package model

import "github.com/google/uuid"

// Permission represents a string code for a specific system capability.
type Permission string

const (
	// PermissionManageUsers allows listing, updating, and deleting accounts.
	PermissionManageUsers Permission = "users:manage"

	// PermissionManageQuestions allows creating and editing question bank entries.
	PermissionManageQuestions Permission = "questions:manage"

	// PermissionManageExams allows creating and editing exams.
	PermissionManageExams Permission = "exams:manage"

	// PermissionViewAnalytics allows viewing dashboards and exam results.
	PermissionViewAnalytics Permission = "analytics:view"

	// PermissionDeleteContent allows deleting any content regardless of owner.
	PermissionDeleteContent Permission = "content:delete"

	// PermissionModerateContent allows moderating content created by others.
	PermissionModerateContent Permission = "content:moderate"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionManageUsers,
	PermissionManageQuestions,
	PermissionManageExams,
	PermissionViewAnalytics,
	PermissionDeleteContent,
	PermissionModerateContent,
}

// RolePermissions is the capability set attached to a role.
type RolePermissions struct {
	CanManageUsers     bool `json:"can_manage_users"`
	CanManageQuestions bool `json:"can_manage_questions"`
	CanManageExams     bool `json:"can_manage_exams"`
	CanViewAnalytics   bool `json:"can_view_analytics"`
	CanDeleteContent   bool `json:"can_delete_content"`
	CanModerateContent bool `json:"can_moderate_content"`
}

// PermissionsFor maps a role to its fixed capability set. It is total over
// the three roles; an unknown role gets the all-false (student) set.
func PermissionsFor(role Role) RolePermissions {
	switch role {
	case RoleAdmin:
		return RolePermissions{
			CanManageUsers:     true,
			CanManageQuestions: true,
			CanManageExams:     true,
			CanViewAnalytics:   true,
			CanDeleteContent:   true,
			CanModerateContent: true,
		}
	case RoleTeacher:
		// Teachers manage only content they created; the ownership rule is
		// enforced by CanManageContent at the call site.
		return RolePermissions{
			CanManageQuestions: true,
			CanManageExams:     true,
			CanViewAnalytics:   true,
		}
	default:
		return RolePermissions{}
	}
}

// HasPermission reports whether the role's capability set grants perm.
func HasPermission(role Role, perm Permission) bool {
	p := PermissionsFor(role)
	switch perm {
	case PermissionManageUsers:
		return p.CanManageUsers
	case PermissionManageQuestions:
		return p.CanManageQuestions
	case PermissionManageExams:
		return p.CanManageExams
	case PermissionViewAnalytics:
		return p.CanViewAnalytics
	case PermissionDeleteContent:
		return p.CanDeleteContent
	case PermissionModerateContent:
		return p.CanModerateContent
	}
	return false
}

// CanManageContent reports whether a user may mutate a piece of content.
// Admins may manage anything; teachers only what they created.
func CanManageContent(role Role, creatorID, userID uuid.UUID) bool {
	if role == RoleAdmin {
		return true
	}
	if role == RoleTeacher && creatorID == userID {
		return true
	}
	return false
}
