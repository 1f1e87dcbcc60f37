package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/forgo/bookshelf/internal/model"
)

// Mock implementations. Every mock returns copies so that tests observe
// what was stored rather than the caller's pointer.

var mockEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// ============================================================================
// Books
// ============================================================================

type mockBookRepo struct {
	books      map[string]*model.Book
	seq        int
	createErr  error
	updateErr  error
	getErr     error
	updates    int
	deleted    []string
	lastFilter model.BookFilter
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[string]*model.Book)}
}

func (m *mockBookRepo) seed(title, author string, year int) *model.Book {
	m.seq++
	b := &model.Book{
		ID:              fmt.Sprintf("book:%d", m.seq),
		Title:           title,
		Author:          author,
		PublicationYear: year,
		CreatedAt:       mockEpoch,
		UpdatedAt:       mockEpoch,
	}
	m.books[b.ID] = b
	c := *b
	return &c
}

func (m *mockBookRepo) Create(ctx context.Context, book *model.Book) error {
	if m.createErr != nil {
		return m.createErr
	}
	created := m.seed(book.Title, book.Author, book.PublicationYear)
	*book = *created
	return nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (m *mockBookRepo) GetByTitle(ctx context.Context, title string) (*model.Book, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, b := range m.books {
		if b.Title == title {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockBookRepo) ListAll(ctx context.Context) ([]*model.Book, error) {
	out := make([]*model.Book, 0, len(m.books))
	for _, b := range m.books {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockBookRepo) List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error) {
	m.lastFilter = filter
	all, _ := m.ListAll(ctx)
	return &model.BookPage{Books: all, Total: len(all), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *model.Book) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.books[book.ID]; !ok {
		return fmt.Errorf("no book %s", book.ID)
	}
	m.updates++
	c := *book
	c.UpdatedAt = mockEpoch.Add(time.Duration(m.updates) * time.Hour)
	m.books[book.ID] = &c
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id string) error {
	delete(m.books, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// ============================================================================
// Posts
// ============================================================================

type mockPostRepo struct {
	posts     map[string]*model.Post
	seq       int
	createErr error
	comments  *mockCommentRepo
	lastLimit int
}

func newMockPostRepo(comments *mockCommentRepo) *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post), comments: comments}
}

func (m *mockPostRepo) copyOf(p *model.Post) *model.Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if m.comments != nil {
		c.CommentCount = m.comments.countFor(p.ID)
	}
	return &c
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	stored := *post
	stored.ID = fmt.Sprintf("post:%d", m.seq)
	stored.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Minute)
	stored.UpdatedAt = stored.CreatedAt
	stored.Tags = slices.Clone(post.Tags)
	m.posts[stored.ID] = &stored
	*post = *m.copyOf(&stored)
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return m.copyOf(p), nil
}

func (m *mockPostRepo) newestFirst(keep func(*model.Post) bool) []*model.Post {
	var out []*model.Post
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, m.copyOf(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockPostRepo) List(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	all := m.newestFirst(func(*model.Post) bool { return true })
	if offset >= len(all) {
		return []*model.Post{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *mockPostRepo) Count(ctx context.Context) (int, error) {
	return len(m.posts), nil
}

func (m *mockPostRepo) Search(ctx context.Context, q string, limit int) ([]*model.Post, error) {
	m.lastLimit = limit
	q = strings.ToLower(q)
	return m.newestFirst(func(p *model.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Content), q) ||
			slices.Contains(p.Tags, q)
	}), nil
}

func (m *mockPostRepo) ListByTag(ctx context.Context, tag string) ([]*model.Post, error) {
	return m.newestFirst(func(p *model.Post) bool { return slices.Contains(p.Tags, tag) }), nil
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	return m.newestFirst(func(p *model.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *model.Post) error {
	stored, ok := m.posts[post.ID]
	if !ok {
		return fmt.Errorf("no post %s", post.ID)
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Tags = slices.Clone(post.Tags)
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Hour)
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	delete(m.posts, id)
	if m.comments != nil {
		m.comments.deleteForPost(id)
	}
	return nil
}

// ============================================================================
// Comments
// ============================================================================

type mockCommentRepo struct {
	comments map[string]*model.Comment
	seq      int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) countFor(postID string) int {
	n := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func (m *mockCommentRepo) deleteForPost(postID string) {
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
		}
	}
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	m.seq++
	stored := *comment
	stored.ID = fmt.Sprintf("comment:%d", m.seq)
	stored.CreatedAt = mockEpoch.Add(time.Duration(m.seq) * time.Minute)
	stored.UpdatedAt = stored.CreatedAt
	m.comments[stored.ID] = &stored
	*comment = stored
	return nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	stored, ok := m.comments[comment.ID]
	if !ok {
		return fmt.Errorf("no comment %s", comment.ID)
	}
	stored.Content = comment.Content
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id string) error {
	delete(m.comments, id)
	return nil
}

// ============================================================================
// Users
// ============================================================================

type mockUserRepo struct {
	users      map[string]*model.User
	seq        int
	createErr  error
	updateErr  error
	lastLogins map[string]int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[string]*model.User),
		lastLogins: make(map[string]int),
	}
}

func (m *mockUserRepo) find(match func(*model.User) bool) *model.User {
	for _, u := range m.users {
		if match(u) {
			c := *u
			c.Groups = slices.Clone(u.Groups)
			return &c
		}
	}
	return nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	stored := *user
	stored.ID = fmt.Sprintf("user:%d", m.seq)
	stored.CreatedAt = mockEpoch
	stored.UpdatedAt = mockEpoch
	m.users[stored.ID] = &stored
	*user = stored
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username }), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.users[user.ID]
	if !ok {
		return fmt.Errorf("no user %s", user.ID)
	}
	stored.Email = user.Email
	stored.Bio = user.Bio
	stored.Location = user.Location
	stored.Website = user.Website
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	m.lastLogins[userID]++
	return nil
}

func (m *mockUserRepo) SetGroups(ctx context.Context, userID string, groups []string) error {
	stored, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("no user %s", userID)
	}
	stored.Groups = slices.Clone(groups)
	return nil
}
