package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
)

// BookRepository handles book data access
type BookRepository struct {
	db database.Database
}

// NewBookRepository creates a new book repository
func NewBookRepository(db database.Database) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a book and fills in its id and timestamps
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		CREATE book CONTENT {
			title: $title,
			author: $author,
			publication_year: $publication_year,
			created_at: time::now(),
			updated_at: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":            book.Title,
		"author":           book.Author,
		"publication_year": book.PublicationYear,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: book title already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := decodeRecord[model.Book](firstRow(result))
	if err != nil {
		return err
	}
	*book = *created
	return nil
}

// GetByID retrieves a book by ID, nil when absent
func (r *BookRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	rid, ok := scopedID(tableBook, id)
	if !ok {
		return nil, nil
	}
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": rid}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return notFoundAsNil[model.Book](nil, err)
	}
	return notFoundAsNil[model.Book](decodeRecord[model.Book](result))
}

// GetByTitle retrieves the book with exactly this title, nil when absent
func (r *BookRepository) GetByTitle(ctx context.Context, title string) (*model.Book, error) {
	query := `SELECT * FROM book WHERE title = $title LIMIT 1`
	vars := map[string]interface{}{"title": title}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return notFoundAsNil[model.Book](nil, err)
	}
	return notFoundAsNil[model.Book](decodeRecord[model.Book](result))
}

// ListAll returns every book ordered by title
func (r *BookRepository) ListAll(ctx context.Context) ([]*model.Book, error) {
	result, err := r.db.Query(ctx, `SELECT * FROM book ORDER BY title ASC`, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Book](statementRows(result, 0))
}

// List returns one page of books matching the filter and the total match count.
// The filter is expected to be validated; an unknown ordering falls back to title.
func (r *BookRepository) List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error) {
	where, vars := bookFilterClause(filter)

	ordering := filter.Ordering
	if !ordering.IsValid() {
		ordering = model.DefaultBookOrdering
	}
	direction := "ASC"
	if ordering.Descending() {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > model.MaxBooksPageSize {
		limit = model.BooksPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	vars["limit"] = limit
	vars["offset"] = offset

	query := fmt.Sprintf(`
		SELECT * FROM book %s ORDER BY %s %s, title ASC LIMIT $limit START $offset;
		SELECT count() AS count FROM book %s GROUP ALL;
	`, where, ordering.Field(), direction, where)

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	books, err := decodeRows[model.Book](statementRows(result, 0))
	if err != nil {
		return nil, err
	}

	return &model.BookPage{
		Books:  books,
		Total:  extractCount(statementRows(result, 1)),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// bookFilterClause builds the WHERE clause shared by the page and count queries
func bookFilterClause(f model.BookFilter) (string, map[string]interface{}) {
	var conds []string
	vars := map[string]interface{}{}

	if s := strings.TrimSpace(f.TitleContains); s != "" {
		conds = append(conds, "string::lowercase(title) CONTAINS $title_contains")
		vars["title_contains"] = strings.ToLower(s)
	}
	if s := strings.TrimSpace(f.AuthorContains); s != "" {
		conds = append(conds, "string::lowercase(author) CONTAINS $author_contains")
		vars["author_contains"] = strings.ToLower(s)
	}
	if f.Year != 0 {
		conds = append(conds, "publication_year = $year")
		vars["year"] = f.Year
	}
	if f.YearFrom != 0 {
		conds = append(conds, "publication_year >= $year_from")
		vars["year_from"] = f.YearFrom
	}
	if f.YearTo != 0 {
		conds = append(conds, "publication_year <= $year_to")
		vars["year_to"] = f.YearTo
	}
	if f.Decade != 0 {
		conds = append(conds, "publication_year >= $decade_start AND publication_year < $decade_end")
		vars["decade_start"] = f.Decade
		vars["decade_end"] = f.Decade + 10
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, "(string::lowercase(title) CONTAINS $search OR string::lowercase(author) CONTAINS $search)")
		vars["search"] = strings.ToLower(s)
	}

	if len(conds) == 0 {
		return "", vars
	}
	return "WHERE " + strings.Join(conds, " AND "), vars
}

// Update persists title, author and publication year
func (r *BookRepository) Update(ctx context.Context, book *model.Book) error {
	rid, ok := scopedID(tableBook, book.ID)
	if !ok {
		return database.ErrNotFound
	}
	query := `
		UPDATE type::record($id) SET
			title = $title,
			author = $author,
			publication_year = $publication_year,
			updated_at = time::now()
	`
	vars := map[string]interface{}{
		"id":               rid,
		"title":            book.Title,
		"author":           book.Author,
		"publication_year": book.PublicationYear,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: book title already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// Delete removes a book
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	rid, ok := scopedID(tableBook, id)
	if !ok {
		return database.ErrNotFound
	}
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": rid}

	return r.db.Execute(ctx, query, vars)
}
