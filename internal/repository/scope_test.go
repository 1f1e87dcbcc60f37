package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/repository"
	"github.com/forgo/bookshelf/internal/service"
)

// echoDB answers every read with the record its $id names and records
// every statement it receives
type echoDB struct {
	statements []string
	ids        []interface{}
}

func (d *echoDB) Connect(context.Context) error { return nil }
func (d *echoDB) Close() error                  { return nil }
func (d *echoDB) Ping(context.Context) error    { return nil }

func (d *echoDB) Query(_ context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	d.statements = append(d.statements, query)
	d.ids = append(d.ids, vars["id"])
	row := map[string]interface{}{"id": vars["id"], "title": "Dune", "username": "alice"}
	return []interface{}{map[string]interface{}{"result": []interface{}{row}}}, nil
}

func (d *echoDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	d.statements = append(d.statements, query)
	d.ids = append(d.ids, vars["id"])
	return map[string]interface{}{"id": vars["id"], "title": "Dune", "username": "alice"}, nil
}

func (d *echoDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := d.Query(ctx, query, vars)
	return err
}

func TestBookService_DeleteRefusesOtherTables(t *testing.T) {
	for _, id := range []string{"user:alice", "post:p1", "comment:c1", "book:a-b", "book:", ""} {
		t.Run(id, func(t *testing.T) {
			db := &echoDB{}
			books := service.NewBookService(service.BookServiceConfig{Repo: repository.NewBookRepository(db)})

			err := books.Delete(context.Background(), id)

			assert.ErrorIs(t, err, service.ErrBookNotFound)
			assert.Empty(t, db.statements, "no statement may reach the store")
		})
	}
}

func TestBookRepository_AcceptsKeyOrBookID(t *testing.T) {
	for _, id := range []string{"b1", "book:b1"} {
		t.Run(id, func(t *testing.T) {
			db := &echoDB{}
			repo := repository.NewBookRepository(db)

			book, err := repo.GetByID(context.Background(), id)
			require.NoError(t, err)
			require.NotNil(t, book)
			assert.Equal(t, "book:b1", book.ID)

			require.NoError(t, repo.Delete(context.Background(), id))
			assert.Equal(t, []interface{}{"book:b1", "book:b1"}, db.ids)
		})
	}
}

func TestRepositories_ForeignTableIDs(t *testing.T) {
	ctx := context.Background()
	db := &echoDB{}

	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	users := repository.NewUserRepository(db)

	post, err := posts.GetByID(ctx, "user:alice")
	require.NoError(t, err)
	assert.Nil(t, post)

	comment, err := comments.GetByID(ctx, "post:p1")
	require.NoError(t, err)
	assert.Nil(t, comment)

	user, err := users.GetByID(ctx, "book:b1")
	require.NoError(t, err)
	assert.Nil(t, user)

	list, err := comments.ListByPost(ctx, "user:alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	mutations := []error{
		posts.Delete(ctx, "user:alice"),
		posts.Update(ctx, &model.Post{ID: "book:b1"}),
		comments.Delete(ctx, "post:p1"),
		comments.Update(ctx, &model.Comment{ID: "user:alice"}),
		comments.Create(ctx, &model.Comment{PostID: "user:alice", AuthorID: "user:bob"}),
		users.SetGroups(ctx, "post:p1", []string{"Admins"}),
		users.UpdateLastLogin(ctx, "book:b1"),
	}
	for i, err := range mutations {
		assert.Truef(t, errors.Is(err, database.ErrNotFound), "mutation %d: got %v", i, err)
	}
	assert.Empty(t, db.statements)
}
