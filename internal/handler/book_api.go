package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/forgo/bookshelf/internal/model"
)

// BookAPIHandler serves the JSON catalogue under /v1/books
type BookAPIHandler struct {
	books BookService
}

// NewBookAPIHandler creates a new book API handler
func NewBookAPIHandler(books BookService) *BookAPIHandler {
	return &BookAPIHandler{books: books}
}

func bookLinks(b *model.Book) map[string]string {
	return map[string]string{
		"self":     "/v1/books/" + b.Key(),
		"by_title": "/v1/books/by-title/" + url.PathEscape(b.Title),
	}
}

// List handles GET /v1/books
func (h *BookAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseBookFilter(r.URL.Query())
	if len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	page, err := h.books.List(r.Context(), filter)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	links := map[string]string{"self": r.URL.RequestURI()}
	if page.HasMore() {
		q := r.URL.Query()
		q.Set("limit", strconv.Itoa(page.Limit))
		q.Set("offset", strconv.Itoa(page.Offset+page.Limit))
		q.Del("page")
		links["next"] = "/v1/books?" + q.Encode()
	}

	WriteCollection(w, http.StatusOK, page.Books, &PaginationInfo{
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
	}, links)
}

// Get handles GET /v1/books/{id}
func (h *BookAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, book, bookLinks(book))
}

// Create handles POST /v1/books
func (h *BookAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book, err := h.books.Create(r.Context(), &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	w.Header().Set("Location", "/v1/books/"+book.Key())
	WriteData(w, http.StatusCreated, book, bookLinks(book))
}

// Update handles PATCH /v1/books/{id}
func (h *BookAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book, err := h.books.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, book, bookLinks(book))
}

// Delete handles DELETE /v1/books/{id}
func (h *BookAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.books.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteNoContent(w)
}

// UpdateByTitle handles PATCH /v1/books/by-title/{title}. The response is
// the row as re-read after the write.
func (h *BookAPIHandler) UpdateByTitle(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book, err := h.books.UpdateByTitle(r.Context(), r.PathValue("title"), &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, book, bookLinks(book))
}

// DeleteByTitle handles DELETE /v1/books/by-title/{title}
func (h *BookAPIHandler) DeleteByTitle(w http.ResponseWriter, r *http.Request) {
	if err := h.books.DeleteByTitle(r.Context(), r.PathValue("title")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteNoContent(w)
}
