// Package permissions implements the role checks used by handlers and
// middleware. Roles are strictly ordered: admin > manager > viewer.
package permissions

import "github.com/dataloft-systems/dataloft-backend/internal/models"

var roleRank = map[models.Role]int{
	models.RoleViewer:  1,
	models.RoleManager: 2,
	models.RoleAdmin:   3,
}

// IsAdmin reports whether the role is admin.
func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// IsManagerOrAbove reports whether the role is manager or admin.
func IsManagerOrAbove(role models.Role) bool {
	return roleRank[role] >= roleRank[models.RoleManager]
}

// IsViewerOrAbove reports whether the role is any recognized role.
func IsViewerOrAbove(role models.Role) bool {
	return roleRank[role] >= roleRank[models.RoleViewer]
}

// CanAccessObject reports whether a user may touch an object owned by
// ownerID. Admins may touch anything; everyone else only their own objects.
func CanAccessObject(role models.Role, userID, ownerID string) bool {
	if IsAdmin(role) {
		return true
	}
	return userID != "" && userID == ownerID
}
