package access

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/bookshelf/internal/model"
)

// ============================================================================
// Default Roles
// ============================================================================

func TestDefaultGate_RolePermissions(t *testing.T) {
	t.Parallel()
	g := Default()

	tests := []struct {
		group string
		perms map[model.Permission]bool
	}{
		{RoleViewers, map[model.Permission]bool{
			model.PermissionView: true, model.PermissionCreate: false,
			model.PermissionEdit: false, model.PermissionDelete: false,
		}},
		{RoleEditors, map[model.Permission]bool{
			model.PermissionView: true, model.PermissionCreate: true,
			model.PermissionEdit: true, model.PermissionDelete: false,
		}},
		{RoleAdmins, map[model.Permission]bool{
			model.PermissionView: true, model.PermissionCreate: true,
			model.PermissionEdit: true, model.PermissionDelete: true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			t.Parallel()
			for p, want := range tt.perms {
				assert.Equal(t, want, g.Allows([]string{tt.group}, p), "%s %s", tt.group, p)
			}
		})
	}
}

func TestGate_UnionOfGroups(t *testing.T) {
	t.Parallel()

	g, err := NewGate([]Role{
		{Name: "Deleters", Permissions: model.NewPermissionSet(model.PermissionDelete)},
		{Name: "Readers", Permissions: model.NewPermissionSet(model.PermissionView)},
	})
	require.NoError(t, err)

	groups := []string{"Readers", "Deleters"}
	assert.True(t, g.Allows(groups, model.PermissionView))
	assert.True(t, g.Allows(groups, model.PermissionDelete))
	assert.False(t, g.Allows(groups, model.PermissionEdit))
}

func TestGate_UnknownGroupGrantsNothing(t *testing.T) {
	t.Parallel()
	g := Default()

	assert.False(t, g.Allows([]string{"admins"}, model.PermissionView), "names are case sensitive")
	assert.False(t, g.Allows(nil, model.PermissionView))
	assert.Zero(t, g.PermissionsFor([]string{"Nobody"}))
}

func TestGate_Check(t *testing.T) {
	t.Parallel()
	g := Default()

	assert.ErrorIs(t, g.Check(nil, model.PermissionView), ErrUnauthenticated)

	viewer := &model.User{Username: "vera", Groups: []string{RoleViewers}}
	assert.NoError(t, g.Check(viewer, model.PermissionView))

	err := g.Check(viewer, model.PermissionDelete)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "can_delete")
}

func TestNewGate_RejectsBadRoles(t *testing.T) {
	t.Parallel()

	_, err := NewGate([]Role{{Name: "A"}, {Name: "A"}})
	assert.ErrorIs(t, err, ErrDuplicateRole)

	_, err = NewGate([]Role{{Name: "  "}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestGate_RolesReturnsCopy(t *testing.T) {
	t.Parallel()
	g := Default()

	roles := g.Roles()
	require.Len(t, roles, 3)
	assert.Equal(t, []string{RoleViewers, RoleEditors, RoleAdmins}, []string{roles[0].Name, roles[1].Name, roles[2].Name})

	roles[0].Permissions = model.NewPermissionSet(model.AllPermissions...)
	assert.False(t, g.Allows([]string{RoleViewers}, model.PermissionDelete), "mutating the copy must not change the gate")
}

// ============================================================================
// INI Loading
// ============================================================================

const sampleGroups = `
[Viewers]
description = Read only
permissions = can_view

[Librarians]
permissions = can_view, can_create , can_edit, can_delete
`

func TestParseGroups(t *testing.T) {
	t.Parallel()

	g, err := ParseGroups([]byte(sampleGroups))
	require.NoError(t, err)

	assert.True(t, g.HasRole("Librarians"))
	assert.False(t, g.HasRole(RoleEditors))
	assert.True(t, g.Allows([]string{"Librarians"}, model.PermissionDelete))
	assert.False(t, g.Allows([]string{"Viewers"}, model.PermissionCreate))

	r, ok := g.Role("Viewers")
	require.True(t, ok)
	assert.Equal(t, "Read only", r.Description)
}

func TestParseGroups_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		err  error
	}{
		{"unknown permission", "[X]\npermissions = can_publish\n", nil},
		{"missing key", "[X]\ndescription = nothing\n", ErrInvalidRole},
		{"no groups", "key = value\n", ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseGroups([]byte(tt.data))
			require.Error(t, err)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
			}
		})
	}
}

func TestLoadGroups_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "groups.ini")
	require.NoError(t, os.WriteFile(path, []byte(sampleGroups), 0o600))

	g, err := LoadGroups(path)
	require.NoError(t, err)
	assert.True(t, g.HasRole("Librarians"))
}

func TestLoadGroups_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	g, err := LoadGroups("")
	require.NoError(t, err)
	assert.True(t, g.HasRole(RoleAdmins))

	g, err = LoadGroups(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)
	assert.True(t, g.HasRole(RoleEditors))
}

func TestLoadGroups_ShippedFileMatchesDefaults(t *testing.T) {
	t.Parallel()

	g, err := LoadGroups(filepath.Join("..", "..", "config", "groups.ini"))
	require.NoError(t, err)

	want := Default()
	for _, role := range want.Roles() {
		got, ok := g.Role(role.Name)
		require.True(t, ok, "missing group %s", role.Name)
		assert.Equal(t, role.Permissions, got.Permissions, role.Name)
		assert.Equal(t, role.Description, got.Description, role.Name)
	}
}
