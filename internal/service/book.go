package service

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
)

// BookRepository defines the interface for book storage
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	GetByTitle(ctx context.Context, title string) (*model.Book, error)
	ListAll(ctx context.Context) ([]*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id string) error
}

// BookService handles the book catalogue
type BookService struct {
	repo BookRepository
}

// BookServiceConfig holds configuration for the book service
type BookServiceConfig struct {
	Repo BookRepository
}

// NewBookService creates a new book service
func NewBookService(cfg BookServiceConfig) *BookService {
	return &BookService{
		repo: cfg.Repo,
	}
}

// RetrieveAll returns every book ordered by title
func (s *BookService) RetrieveAll(ctx context.Context) ([]*model.Book, error) {
	return s.repo.ListAll(ctx)
}

// List returns one filtered page of books
func (s *BookService) List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error) {
	if errs := filter.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}
	if filter.Ordering == "" {
		filter.Ordering = model.DefaultBookOrdering
	}
	if filter.Limit <= 0 || filter.Limit > model.MaxBooksPageSize {
		filter.Limit = model.BooksPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Get retrieves a book by ID
func (s *BookService) Get(ctx context.Context, id string) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// Create adds a book. Titles are unique across the catalogue.
func (s *BookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	title := strings.TrimSpace(req.Title)
	existing, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBookTitleExists
	}

	book := &model.Book{
		Title:           title,
		Author:          strings.TrimSpace(req.Author),
		PublicationYear: req.PublicationYear,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, translateBookError(err)
	}
	return book, nil
}

// UpdateByTitle fetches the book with exactly this title, applies the request,
// persists it and returns the row re-read by id.
func (s *BookService) UpdateByTitle(ctx context.Context, title string, req *model.UpdateBookRequest) (*model.Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrBookTitleRequired
	}
	book, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return s.apply(ctx, book, req)
}

// Update applies a partial update to the book with this id
func (s *BookService) Update(ctx context.Context, id string, req *model.UpdateBookRequest) (*model.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, book, req)
}

func (s *BookService) apply(ctx context.Context, book *model.Book, req *model.UpdateBookRequest) (*model.Book, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyBookUpdate
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
		if title != book.Title {
			clash, err := s.repo.GetByTitle(ctx, title)
			if err != nil {
				return nil, err
			}
			if clash != nil && clash.ID != book.ID {
				return nil, ErrBookTitleExists
			}
		}
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		req.Author = &author
	}
	req.Apply(book)

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, translateBookError(err)
	}

	// Re-read so callers see the stored row, including updated_at
	return s.Get(ctx, book.ID)
}

// DeleteByTitle removes the book with exactly this title
func (s *BookService) DeleteByTitle(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrBookTitleRequired
	}
	book, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	return s.repo.Delete(ctx, book.ID)
}

// Delete removes the book with this id
func (s *BookService) Delete(ctx context.Context, id string) error {
	book, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, book.ID)
}

func translateBookError(err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return ErrBookTitleExists
	}
	return err
}
