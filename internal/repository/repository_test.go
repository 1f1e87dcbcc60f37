package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/repository"
	"github.com/forgo/bookshelf/internal/testing/fixtures"
	"github.com/forgo/bookshelf/internal/testing/testdb"
)

// ============================================================================
// Books
// ============================================================================

func TestBookRepository_CreateAndGet(t *testing.T) {
	tdb := testdb.New(t)
	repo := repository.NewBookRepository(tdb.DB)

	book := &model.Book{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965}
	require.NoError(t, repo.Create(tdb.Ctx(), book))
	assert.NotEmpty(t, book.ID)
	assert.False(t, book.CreatedAt.IsZero())

	byID, err := repo.GetByID(tdb.Ctx(), book.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Frank Herbert", byID.Author)

	byTitle, err := repo.GetByTitle(tdb.Ctx(), "Dune")
	require.NoError(t, err)
	require.NotNil(t, byTitle)
	assert.Equal(t, book.ID, byTitle.ID)

	missing, err := repo.GetByTitle(tdb.Ctx(), "Not A Book")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookRepository_DuplicateTitle(t *testing.T) {
	tdb := testdb.New(t)
	repo := repository.NewBookRepository(tdb.DB)

	require.NoError(t, repo.Create(tdb.Ctx(), &model.Book{Title: "Emma", Author: "Jane Austen", PublicationYear: 1815}))
	err := repo.Create(tdb.Ctx(), &model.Book{Title: "Emma", Author: "Someone Else", PublicationYear: 1900})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestBookRepository_ListFilters(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewBookRepository(tdb.DB)

	for _, b := range []fixtures.BookOpts{
		{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965},
		{Title: "Neuromancer", Author: "William Gibson", PublicationYear: 1984},
		{Title: "Count Zero", Author: "William Gibson", PublicationYear: 1986},
		{Title: "Emma", Author: "Jane Austen", PublicationYear: 1815},
	} {
		f.CreateBook(t, func(o *fixtures.BookOpts) { *o = b })
	}

	page, err := repo.List(tdb.Ctx(), model.BookFilter{AuthorContains: "gibson"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Books, 2)
	assert.Equal(t, "Count Zero", page.Books[0].Title, "default ordering is by title")

	page, err = repo.List(tdb.Ctx(), model.BookFilter{Decade: 1980, Ordering: model.OrderYearDesc})
	require.NoError(t, err)
	require.Len(t, page.Books, 2)
	assert.Equal(t, 1986, page.Books[0].PublicationYear)

	page, err = repo.List(tdb.Ctx(), model.BookFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Dune", page.Books[0].Title)
	assert.True(t, page.HasMore())

	all, err := repo.ListAll(tdb.Ctx())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBookRepository_UpdateAndDelete(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewBookRepository(tdb.DB)

	book := f.CreateBook(t)
	book.Author = "Updated Author"
	require.NoError(t, repo.Update(tdb.Ctx(), book))

	got, err := repo.GetByID(tdb.Ctx(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Author", got.Author)

	require.NoError(t, repo.Delete(tdb.Ctx(), book.ID))
	got, err = repo.GetByID(tdb.Ctx(), book.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// ============================================================================
// Posts and Comments
// ============================================================================

func TestPostRepository_CreateListSearch(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewPostRepository(tdb.DB)

	author := f.CreateUser(t)
	first := f.CreatePost(t, author, func(o *fixtures.PostOpts) {
		o.Title = "Learning Go"
		o.Tags = []string{"go"}
	})
	f.CreatePost(t, author, func(o *fixtures.PostOpts) { o.Title = "Gardening notes" })

	assert.Equal(t, author.ID, first.AuthorID)
	assert.Equal(t, author.Username, first.AuthorName)
	assert.False(t, first.CreatedAt.IsZero())

	posts, err := repo.List(tdb.Ctx(), 5, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Gardening notes", posts[0].Title, "newest first")

	count, err := repo.Count(tdb.Ctx())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := repo.Search(tdb.Ctx(), "LEARNING", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	tagged, err := repo.ListByTag(tdb.Ctx(), "go")
	require.NoError(t, err)
	assert.Len(t, tagged, 1)

	mine, err := repo.ListByAuthor(tdb.Ctx(), author.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestPostRepository_DeleteRemovesComments(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	posts := repository.NewPostRepository(tdb.DB)
	comments := repository.NewCommentRepository(tdb.DB)

	author := f.CreateUser(t)
	post := f.CreatePost(t, author)
	f.CreateComment(t, post, author)
	f.CreateComment(t, post, author)

	got, err := posts.GetByID(tdb.Ctx(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	require.NoError(t, posts.Delete(tdb.Ctx(), post.ID))

	got, err = posts.GetByID(tdb.Ctx(), post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	left, err := comments.ListByPost(tdb.Ctx(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCommentRepository_Update(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewCommentRepository(tdb.DB)

	author := f.CreateUser(t)
	comment := f.CreateComment(t, f.CreatePost(t, author), author)
	assert.Equal(t, author.Username, comment.AuthorName)

	comment.Content = "edited comment"
	require.NoError(t, repo.Update(tdb.Ctx(), comment))

	got, err := repo.GetByID(tdb.Ctx(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited comment", got.Content)
}

// ============================================================================
// Users
// ============================================================================

func TestUserRepository_Lookups(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewUserRepository(tdb.DB)

	user := f.CreateEditor(t)
	require.NotNil(t, user.Hash)

	byName, err := repo.GetByUsername(tdb.Ctx(), user.Username)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
	assert.NotNil(t, byName.Hash)
	assert.Equal(t, []string{"Editors"}, byName.Groups)

	byEmail, err := repo.GetByEmail(tdb.Ctx(), user.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	none, err := repo.GetByUsername(tdb.Ctx(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	repo := repository.NewUserRepository(tdb.DB)

	existing := f.CreateUser(t)
	err := repo.Create(tdb.Ctx(), &model.User{Username: existing.Username, Email: "other@test.local"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}
