package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/bookshelf/internal/model"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDuplicateRole    = errors.New("duplicate role")
	ErrInvalidRole      = errors.New("invalid role")
)

// Role names of the built-in configuration
const (
	RoleViewers = "Viewers"
	RoleEditors = "Editors"
	RoleAdmins  = "Admins"
)

// Role is a named group holding a set of Book permissions
type Role struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Permissions model.PermissionSet `json:"-"`
}

// DefaultRoles returns the built-in Viewers/Editors/Admins definition
func DefaultRoles() []Role {
	return []Role{
		{
			Name:        RoleViewers,
			Description: "Can browse the catalogue",
			Permissions: model.NewPermissionSet(model.PermissionView),
		},
		{
			Name:        RoleEditors,
			Description: "Can add and edit books",
			Permissions: model.NewPermissionSet(model.PermissionView, model.PermissionCreate, model.PermissionEdit),
		},
		{
			Name:        RoleAdmins,
			Description: "Full control over the catalogue",
			Permissions: model.NewPermissionSet(model.AllPermissions...),
		},
	}
}

// Gate answers permission questions against a fixed role table.
// It has no mutators; build a new Gate to change the configuration.
type Gate struct {
	roles map[string]Role
	order []string
}

// NewGate builds a gate from roles. Names must be unique and non-empty.
func NewGate(roles []Role) (*Gate, error) {
	g := &Gate{roles: make(map[string]Role, len(roles))}
	for _, r := range roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRole)
		}
		if _, exists := g.roles[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, name)
		}
		r.Name = name
		g.roles[name] = r
		g.order = append(g.order, name)
	}
	return g, nil
}

// Default returns a gate over DefaultRoles
func Default() *Gate {
	g, err := NewGate(DefaultRoles())
	if err != nil {
		panic(err)
	}
	return g
}

// PermissionsFor returns the union of the permissions granted by the groups.
// Unknown group names grant nothing.
func (g *Gate) PermissionsFor(groups []string) model.PermissionSet {
	var set model.PermissionSet
	for _, name := range groups {
		if r, ok := g.roles[name]; ok {
			set = set.Union(r.Permissions)
		}
	}
	return set
}

// Allows reports whether any of the groups grants p
func (g *Gate) Allows(groups []string, p model.Permission) bool {
	return g.PermissionsFor(groups).Has(p)
}

// Check returns ErrUnauthenticated for a nil user and ErrPermissionDenied when
// none of the user's groups grants p.
func (g *Gate) Check(user *model.User, p model.Permission) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !g.Allows(user.Groups, p) {
		return fmt.Errorf("%w: %s requires %s", ErrPermissionDenied, user.Username, p)
	}
	return nil
}

// Role looks up a role by name
func (g *Gate) Role(name string) (Role, bool) {
	r, ok := g.roles[name]
	return r, ok
}

// HasRole reports whether the name is a configured role
func (g *Gate) HasRole(name string) bool {
	_, ok := g.roles[name]
	return ok
}

// Roles returns a copy of the role table in configuration order
func (g *Gate) Roles() []Role {
	out := make([]Role, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.roles[name])
	}
	return out
}
