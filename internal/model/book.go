package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Book constraints
const (
	MinBookTitleLength  = 2
	MaxBookTitleLength  = 200
	MinBookAuthorLength = 2
	MaxBookAuthorLength = 100
	MinPublicationYear  = 1000
	BooksPageSize       = 10
	MaxBooksPageSize    = 100
)

// Book is a catalogue entry
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublicationYear int       `json:"publication_year"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookOrdering is a sort key accepted by book listings.
// A leading "-" sorts descending.
type BookOrdering string

const (
	OrderTitle      BookOrdering = "title"
	OrderTitleDesc  BookOrdering = "-title"
	OrderAuthor     BookOrdering = "author"
	OrderAuthorDesc BookOrdering = "-author"
	OrderYear       BookOrdering = "publication_year"
	OrderYearDesc   BookOrdering = "-publication_year"
)

// DefaultBookOrdering applies when a listing names no ordering
const DefaultBookOrdering = OrderTitle

// IsValid checks the ordering against the known sort keys
func (o BookOrdering) IsValid() bool {
	switch o {
	case OrderTitle, OrderTitleDesc, OrderAuthor, OrderAuthorDesc, OrderYear, OrderYearDesc:
		return true
	}
	return false
}

// Field returns the column name without the direction prefix
func (o BookOrdering) Field() string {
	return strings.TrimPrefix(string(o), "-")
}

// Descending reports whether the ordering is reversed
func (o BookOrdering) Descending() bool {
	return strings.HasPrefix(string(o), "-")
}

// BookFilter narrows a book listing. Zero values mean "no constraint".
type BookFilter struct {
	TitleContains  string       `json:"title,omitempty"`
	AuthorContains string       `json:"author,omitempty"`
	Year           int          `json:"publication_year,omitempty"`
	YearFrom       int          `json:"year_from,omitempty"`
	YearTo         int          `json:"year_to,omitempty"`
	Decade         int          `json:"decade,omitempty"`
	Search         string       `json:"search,omitempty"`
	Ordering       BookOrdering `json:"ordering,omitempty"`
	Limit          int          `json:"limit,omitempty"`
	Offset         int          `json:"offset,omitempty"`
}

// Validate checks filter values that cannot be silently corrected
func (f *BookFilter) Validate() []FieldError {
	var errors []FieldError
	if f.Ordering != "" && !f.Ordering.IsValid() {
		errors = append(errors, FieldError{Field: "ordering", Message: "ordering must be one of title, author, publication_year (optionally prefixed with -)"})
	}
	if f.YearFrom != 0 && f.YearTo != 0 && f.YearFrom > f.YearTo {
		errors = append(errors, FieldError{Field: "year_from", Message: "year_from must not be after year_to"})
	}
	if f.Decade != 0 && f.Decade%10 != 0 {
		errors = append(errors, FieldError{Field: "decade", Message: "decade must be a multiple of 10, e.g. 1990"})
	}
	return errors
}

// BookPage is one page of a filtered listing
type BookPage struct {
	Books  []*Book `json:"books"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// HasMore reports whether another page follows
func (p *BookPage) HasMore() bool {
	return p.Offset+len(p.Books) < p.Total
}

// CreateBookRequest is the payload for adding a book
type CreateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
}

// Validate validates the create request against the current year
func (r *CreateBookRequest) Validate() []FieldError {
	var errors []FieldError
	errors = append(errors, validateBookTitle(r.Title)...)
	errors = append(errors, validateBookAuthor(r.Author)...)
	errors = append(errors, validatePublicationYear(r.PublicationYear, time.Now().Year())...)
	return errors
}

// UpdateBookRequest is a partial update; nil fields are left alone
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

// Validate validates only the fields that are set
func (r *UpdateBookRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Title != nil {
		errors = append(errors, validateBookTitle(*r.Title)...)
	}
	if r.Author != nil {
		errors = append(errors, validateBookAuthor(*r.Author)...)
	}
	if r.PublicationYear != nil {
		errors = append(errors, validatePublicationYear(*r.PublicationYear, time.Now().Year())...)
	}
	return errors
}

// IsEmpty reports whether the update would change nothing
func (r *UpdateBookRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.PublicationYear == nil
}

// Apply copies the set fields onto the book
func (r *UpdateBookRequest) Apply(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.PublicationYear != nil {
		b.PublicationYear = *r.PublicationYear
	}
}

func validateBookTitle(title string) []FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	switch {
	case n == 0:
		return []FieldError{{Field: "title", Message: "title cannot be blank"}}
	case n < MinBookTitleLength:
		return []FieldError{{Field: "title", Message: "title must be at least 2 characters long"}}
	case n > MaxBookTitleLength:
		return []FieldError{{Field: "title", Message: "title must be 200 characters or less"}}
	}
	return nil
}

func validateBookAuthor(author string) []FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(author))
	switch {
	case n == 0:
		return []FieldError{{Field: "author", Message: "author is required"}}
	case n < MinBookAuthorLength:
		return []FieldError{{Field: "author", Message: "author must be at least 2 characters long"}}
	case n > MaxBookAuthorLength:
		return []FieldError{{Field: "author", Message: "author must be 100 characters or less"}}
	}
	return nil
}

func validatePublicationYear(year, currentYear int) []FieldError {
	if year < MinPublicationYear {
		return []FieldError{{Field: "publication_year", Message: "publication_year must be 1000 or later"}}
	}
	if year > currentYear {
		return []FieldError{{Field: "publication_year", Message: "publication year cannot be in the future"}}
	}
	return nil
}
