package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Email and username are unique.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			username: $username,
			email: $email,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			groups: $groups,
			created_at: time::now(),
			updated_at: time::now()
		}
	`
	groups := user.Groups
	if groups == nil {
		groups = []string{}
	}
	vars := map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
		"hash":     ptrToNone(user.Hash),
		"groups":   groups,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: %s", database.ErrDuplicate, duplicateField(err))
		}
		return err
	}

	created, err := parseUserResult(firstRow(result))
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// GetByID retrieves a user by ID, nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rid, ok := scopedID(tableUser, id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": rid})
}

// GetByEmail retrieves a user by email, nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE email = $email LIMIT 1`, map[string]interface{}{"email": email})
}

// GetByUsername retrieves a user by username, nil when absent
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE username = $username LIMIT 1`, map[string]interface{}{"username": username})
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return notFoundAsNil[model.User](nil, err)
	}
	return notFoundAsNil[model.User](parseUserResult(result))
}

// Update persists the profile fields
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	rid, ok := scopedID(tableUser, user.ID)
	if !ok {
		return database.ErrNotFound
	}
	query := `
		UPDATE type::record($id) SET
			email = $email,
			bio = $bio,
			location = $location,
			website = $website,
			updated_at = time::now()
	`
	vars := map[string]interface{}{
		"id":       rid,
		"email":    user.Email,
		"bio":      user.Bio,
		"location": user.Location,
		"website":  user.Website,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// UpdateLastLogin stamps a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	rid, ok := scopedID(tableUser, userID)
	if !ok {
		return database.ErrNotFound
	}
	query := `UPDATE type::record($id) SET last_login_at = time::now()`
	vars := map[string]interface{}{"id": rid}

	return r.db.Execute(ctx, query, vars)
}

// SetGroups replaces a user's group memberships
func (r *UserRepository) SetGroups(ctx context.Context, userID string, groups []string) error {
	rid, ok := scopedID(tableUser, userID)
	if !ok {
		return database.ErrNotFound
	}
	query := `UPDATE type::record($id) SET groups = $groups, updated_at = time::now()`
	vars := map[string]interface{}{
		"id":     rid,
		"groups": groups,
	}

	return r.db.Execute(ctx, query, vars)
}

// Helper functions

func parseUserResult(result interface{}) (*model.User, error) {
	user, err := decodeRecord[model.User](result)
	if err != nil {
		return nil, err
	}

	// Hash is skipped by json:"-", read it from the raw record
	if data, ok := result.(map[string]interface{}); ok {
		if h := getString(data, "hash"); h != "" {
			user.Hash = &h
		}
	}
	return user, nil
}

// duplicateField names the unique index a violation came from
func duplicateField(err error) string {
	if database.DuplicateIndex(err) == "user_username" {
		return "username already exists"
	}
	return "email already exists"
}

// ptrToNone converts a string pointer to either the string value or nil,
// which the query turns into NONE
func ptrToNone(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
