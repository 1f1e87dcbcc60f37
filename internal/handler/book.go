package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/session"
)

// BookService defines the catalogue operations of the book pages and API
type BookService interface {
	List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	Update(ctx context.Context, id string, req *model.UpdateBookRequest) (*model.Book, error)
	UpdateByTitle(ctx context.Context, title string, req *model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id string) error
	DeleteByTitle(ctx context.Context, title string) error
}

// BookHandler serves the catalogue pages. Permission checks happen in the
// route middleware.
type BookHandler struct {
	views    *Views
	sessions Sessions
	books    BookService
}

// BookHandlerConfig holds dependencies for the book handler
type BookHandlerConfig struct {
	Views    *Views
	Sessions Sessions
	Books    BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(cfg BookHandlerConfig) *BookHandler {
	return &BookHandler{
		views:    cfg.Views,
		sessions: cfg.Sessions,
		books:    cfg.Books,
	}
}

var bookFields = []string{"title", "author", "publication_year"}

func bookPath(id string) string {
	return "/books/" + model.RecordKey(id) + "/"
}

func bookTarget(id string) string {
	return "book:" + model.RecordKey(id)
}

// ============================================================================
// Filter Parsing
// ============================================================================

// parseBookFilter reads listing filters and ?limit=/?offset= from query
// parameters. Values that are not numbers are reported as field errors.
func parseBookFilter(q url.Values) (model.BookFilter, []model.FieldError) {
	var errs []model.FieldError
	intParam := func(name string) int {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, model.FieldError{Field: name, Message: name + " must be a whole number"})
			return 0
		}
		return n
	}

	f := model.BookFilter{
		TitleContains:  strings.TrimSpace(q.Get("title")),
		AuthorContains: strings.TrimSpace(q.Get("author")),
		Year:           intParam("publication_year"),
		YearFrom:       intParam("year_from"),
		YearTo:         intParam("year_to"),
		Decade:         intParam("decade"),
		Search:         strings.TrimSpace(q.Get("search")),
		Ordering:       model.BookOrdering(strings.TrimSpace(q.Get("ordering"))),
		Limit:          intParam("limit"),
		Offset:         intParam("offset"),
	}
	return f, errs
}

// pageNumber reads ?page= for the paginated pages. Missing, invalid and
// non-positive values mean the first page.
func pageNumber(q url.Values) int {
	n, err := strconv.Atoi(q.Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// bookRequest converts posted form values. When the year is missing or not a
// number the other fields are validated too, so the form shows every problem.
func bookRequest(values map[string]string) (*model.CreateBookRequest, []model.FieldError) {
	req := &model.CreateBookRequest{Title: values["title"], Author: values["author"]}
	raw := values["publication_year"]
	if raw == "" {
		return req, append([]model.FieldError{{Field: "publication_year", Message: "publication_year is required"}}, req.Validate()...)
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return req, append([]model.FieldError{{Field: "publication_year", Message: "Enter a whole number."}}, req.Validate()...)
	}
	req.PublicationYear = year
	return req, nil
}

// ============================================================================
// Pages
// ============================================================================

type bookListData struct {
	Books    *model.BookPage
	Query    url.Values
	Page     int
	HasPrev  bool
	HasNext  bool
	PrevLink string
	NextLink string
}

// List handles GET /books/
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, errs := parseBookFilter(query)
	if len(errs) > 0 {
		h.views.RenderError(w, r, model.NewValidationError(errs))
		return
	}
	page := pageNumber(query)
	filter.Limit = model.BooksPageSize
	filter.Offset = (page - 1) * model.BooksPageSize

	books, err := h.books.List(r.Context(), filter)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}

	data := bookListData{Books: books, Query: query, Page: page, HasPrev: page > 1, HasNext: books.HasMore()}
	if data.HasPrev {
		data.PrevLink = pageLink(query, page-1)
	}
	if data.HasNext {
		data.NextLink = pageLink(query, page+1)
	}
	h.views.Render(w, r, http.StatusOK, "book_list.html", &Page{
		Title: "Books",
		Form:  filterForm(query),
		Data:  data,
	})
}

func pageLink(q url.Values, page int) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set("page", strconv.Itoa(page))
	return "?" + next.Encode()
}

func filterForm(q url.Values) map[string]string {
	out := make(map[string]string)
	for _, k := range []string{"title", "author", "publication_year", "year_from", "year_to", "decade", "search", "ordering"} {
		out[k] = q.Get(k)
	}
	return out
}

type bookFormData struct {
	Book   *model.Book
	Action string
}

// New handles GET /books/new/
func (h *BookHandler) New(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "book_form.html", &Page{
		Title: "Add book",
		Data:  bookFormData{Action: "/books/new/"},
	})
}

// Create handles POST /books/new/
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	values, err := postedForm(r, bookFields...)
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}
	data := bookFormData{Action: "/books/new/"}

	req, errs := bookRequest(values)
	if len(errs) > 0 {
		h.formError(w, r, model.NewValidationError(errs), "Add book", values, data)
		return
	}

	book, err := h.books.Create(r.Context(), req)
	if err != nil {
		h.formError(w, r, err, "Add book", values, data)
		return
	}
	h.views.redirect(w, r, "/books/", session.FlashSuccess, "\""+book.Title+"\" was added to the catalogue.")
}

// Edit handles GET /books/{id}/edit/
func (h *BookHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "book_form.html", &Page{
		Title: "Edit book",
		Form: map[string]string{
			"title":            book.Title,
			"author":           book.Author,
			"publication_year": strconv.Itoa(book.PublicationYear),
		},
		Data: bookFormData{Book: book, Action: bookPath(id) + "edit/"},
	})
}

// Update handles POST /books/{id}/edit/. The form always carries every field.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	values, err := postedForm(r, bookFields...)
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	current, err := h.books.Get(r.Context(), id)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	data := bookFormData{Book: current, Action: bookPath(id) + "edit/"}

	req, errs := bookRequest(values)
	if len(errs) > 0 {
		h.formError(w, r, model.NewValidationError(errs), "Edit book", values, data)
		return
	}

	book, err := h.books.Update(r.Context(), id, &model.UpdateBookRequest{
		Title:           &req.Title,
		Author:          &req.Author,
		PublicationYear: &req.PublicationYear,
	})
	if err != nil {
		h.formError(w, r, err, "Edit book", values, data)
		return
	}
	h.views.redirect(w, r, "/books/", session.FlashSuccess, "\""+book.Title+"\" was updated.")
}

func (h *BookHandler) formError(w http.ResponseWriter, r *http.Request, err error, title string, values map[string]string, data bookFormData) {
	status, fields, ok := formFailure(err)
	if !ok {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, status, "book_form.html", &Page{Title: title, Form: values, Errors: fields, Data: data})
}

// ConfirmDelete handles GET /books/{id}/delete/
func (h *BookHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "confirm_delete.html", &Page{
		Title:   "Delete book",
		Confirm: h.sessions.IssueConfirmation(r.Context(), bookTarget(id)),
		Data: confirmData{
			Kind:   "book",
			Name:   book.Title,
			Action: bookPath(id) + "delete/",
			Cancel: "/books/",
		},
	})
}

// Delete handles POST /books/{id}/delete/
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	if !h.sessions.Confirm(r.Context(), bookTarget(id), r.PostFormValue("confirm")) {
		h.views.redirect(w, r, bookPath(id)+"delete/", session.FlashWarning, "Please confirm the deletion.")
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, "/books/", session.FlashSuccess, "\""+book.Title+"\" was deleted.")
}
