package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		role           models.Role
		admin          bool
		managerOrAbove bool
		viewerOrAbove  bool
	}{
		{models.RoleAdmin, true, true, true},
		{models.RoleManager, false, true, true},
		{models.RoleViewer, false, false, true},
		{models.Role("intern"), false, false, false},
		{models.Role(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.admin, IsAdmin(tt.role))
			assert.Equal(t, tt.managerOrAbove, IsManagerOrAbove(tt.role))
			assert.Equal(t, tt.viewerOrAbove, IsViewerOrAbove(tt.role))
		})
	}
}

func TestCanAccessObject(t *testing.T) {
	assert.True(t, CanAccessObject(models.RoleAdmin, "admin-1", "someone-else"))
	assert.True(t, CanAccessObject(models.RoleViewer, "user-1", "user-1"))
	assert.False(t, CanAccessObject(models.RoleViewer, "user-1", "user-2"))
	assert.False(t, CanAccessObject(models.RoleManager, "user-1", "user-2"))
	assert.False(t, CanAccessObject(models.RoleViewer, "", ""))
}
