package model

import (
	"fmt"
	"strings"
)

// Permission is an atomic right on the Book catalogue
type Permission int

const (
	PermissionView Permission = iota + 1
	PermissionCreate
	PermissionEdit
	PermissionDelete
)

// AllPermissions lists every permission in declaration order
var AllPermissions = []Permission{PermissionView, PermissionCreate, PermissionEdit, PermissionDelete}

// String returns the codename used in group configuration
func (p Permission) String() string {
	switch p {
	case PermissionView:
		return "can_view"
	case PermissionCreate:
		return "can_create"
	case PermissionEdit:
		return "can_edit"
	case PermissionDelete:
		return "can_delete"
	}
	return fmt.Sprintf("Permission(%d)", int(p))
}

// bit maps a permission onto its PermissionSet flag. Unknown values map to zero
// and therefore never grant anything.
func (p Permission) bit() PermissionSet {
	switch p {
	case PermissionView:
		return 1 << 0
	case PermissionCreate:
		return 1 << 1
	case PermissionEdit:
		return 1 << 2
	case PermissionDelete:
		return 1 << 3
	}
	return 0
}

// ParsePermission converts a configuration codename such as "can_edit".
// It is only meant for reading configuration; code refers to the constants.
func ParsePermission(codename string) (Permission, error) {
	switch strings.TrimSpace(codename) {
	case "can_view":
		return PermissionView, nil
	case "can_create":
		return PermissionCreate, nil
	case "can_edit":
		return PermissionEdit, nil
	case "can_delete":
		return PermissionDelete, nil
	}
	return 0, fmt.Errorf("unknown permission %q", codename)
}

// PermissionSet is a set of permissions stored as bit flags
type PermissionSet uint8

// NewPermissionSet builds a set from the given permissions
func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s = s.With(p)
	}
	return s
}

// Has reports whether p is in the set
func (s PermissionSet) Has(p Permission) bool {
	bit := p.bit()
	return bit != 0 && s&bit == bit
}

// With returns a copy of the set that includes p
func (s PermissionSet) With(p Permission) PermissionSet {
	return s | p.bit()
}

// Union merges two sets
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	return s | other
}

// Permissions lists the members of the set in declaration order
func (s PermissionSet) Permissions() []Permission {
	var out []Permission
	for _, p := range AllPermissions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// String renders the set as comma separated codenames
func (s PermissionSet) String() string {
	perms := s.Permissions()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
