package access

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/ini.v1"

	"github.com/forgo/bookshelf/internal/model"
)

// LoadGroups reads the role table from an INI file. Each section is a group:
//
//	[Editors]
//	description = Can add and edit books
//	permissions = can_view, can_create, can_edit
//
// An empty path or a missing file yields the built-in roles.
func LoadGroups(path string) (*Gate, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Warn("groups file not found, using built-in roles", "path", path)
		return Default(), nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups file: %w", err)
	}
	return gateFromINI(cfg)
}

// ParseGroups reads the role table from INI data
func ParseGroups(data []byte) (*Gate, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse groups: %w", err)
	}
	return gateFromINI(cfg)
}

func gateFromINI(cfg *ini.File) (*Gate, error) {
	var roles []Role
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		if !section.HasKey("permissions") {
			return nil, fmt.Errorf("%w: group %s has no permissions key", ErrInvalidRole, section.Name())
		}

		var set model.PermissionSet
		for _, codename := range section.Key("permissions").Strings(",") {
			p, err := model.ParsePermission(codename)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", section.Name(), err)
			}
			set = set.With(p)
		}

		roles = append(roles, Role{
			Name:        section.Name(),
			Description: section.Key("description").String(),
			Permissions: set,
		})
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no groups defined", ErrInvalidRole)
	}
	return NewGate(roles)
}
