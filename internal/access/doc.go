// Package access implements the permission gate for the Book catalogue.
//
// Groups (Viewers, Editors, Admins by default) are loaded once at start-up
// and never change afterwards. Handlers ask the gate whether a user's groups
// grant an enumerated model.Permission:
//
//	gate, err := access.LoadGroups(cfg.Access.GroupsFile)
//	if err := gate.Check(user, model.PermissionEdit); err != nil {
//	    // access.ErrUnauthenticated or access.ErrPermissionDenied
//	}
package access
