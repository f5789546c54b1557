package book

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

var isbnRe = regexp.MustCompile(`^[0-9]{10,13}$`)

// serverError hides the store fault from the caller and logs it with the
// request id for correlation.
func (h *HTTPHandler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("store error",
		zap.String("op", op),
		zap.String("request_id", httpx.RequestIDFrom(r)),
		zap.Error(err),
	)
	httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "server error - contact support", nil)
}

// parseBookID reads the {bookid} path segment as a positive integer.
func parseBookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("bookid"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseRatingLevel reads the rating query parameter as a star level 1-5.
func parseRatingLevel(r *http.Request) (int, bool) {
	level, err := strconv.Atoi(r.URL.Query().Get("rating"))
	if err != nil || level < 1 || level > 5 {
		return 0, false
	}
	return level, true
}

type createBookRequest struct {
	Title                   string `json:"title" validate:"required"`
	OriginalTitle           string `json:"original_title" validate:"required"`
	ISBN13                  int64  `json:"isbn13" validate:"required,isbn13"`
	OriginalPublicationYear int    `json:"original_publication_year" validate:"required"`
	Authors                 string `json:"authors" validate:"required"`
	ImageURL                string `json:"image_url" validate:"required"`
	SmallImageURL           string `json:"small_image_url" validate:"required"`
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "One or more body parameters are missing or invalid", details)
		return
	}
	if len(SplitAuthors(req.Authors)) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "One or more body parameters are missing or invalid",
			[]httpx.ErrorDetail{{Field: "authors", Message: "authors must list at least one name"}})
		return
	}

	created, err := h.service.Create(r.Context(), NewBook{
		ISBN13:        req.ISBN13,
		Title:         req.Title,
		OriginalTitle: req.OriginalTitle,
		Publication:   req.OriginalPublicationYear,
		ImageURL:      req.ImageURL,
		SmallImageURL: req.SmallImageURL,
	}, req.Authors)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			httpx.JSONError(w, http.StatusBadRequest, "DUPLICATE_ISBN", "A book with this ISBN already exists", nil)
			return
		}
		h.serverError(w, r, "create book", err)
		return
	}

	httpx.JSONSuccessCreated(w, map[string]any{"book": created})
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	books, total, err := h.service.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.serverError(w, r, "list books", err)
		return
	}

	httpx.JSONSuccess(w, map[string]any{"books": books}, map[string]any{
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetByISBN handles GET /books/isbn/{isbn}
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("isbn")
	if !isbnRe.MatchString(raw) {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_ISBN", "Invalid ISBN format", nil)
		return
	}
	isbn, _ := strconv.ParseInt(raw, 10, 64)

	b, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.serverError(w, r, "get book by isbn", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"book": b}, nil)
}

// ListByAuthor handles GET /books/author/{author}
func (h *HTTPHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")
	if strings.TrimSpace(author) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_AUTHOR", "Invalid author name", nil)
		return
	}

	books, err := h.service.ListByAuthor(r.Context(), author)
	if err != nil {
		if errors.Is(err, ErrAuthorNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Author not found", nil)
			return
		}
		h.serverError(w, r, "list books by author", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"books": books}, nil)
}

// ListByAge handles GET /books/age
func (h *HTTPHandler) ListByAge(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if !query.Has("order") {
		httpx.JSONError(w, http.StatusBadRequest, "MISSING_ORDER", `Missing order query parameter. It must be "old" or "new"`, nil)
		return
	}
	order := strings.ToLower(query.Get("order"))
	if order != "old" && order != "new" {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_ORDER", `Invalid order query parameter. It must be "old" or "new"`, nil)
		return
	}

	limit := 20
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			httpx.JSONError(w, http.StatusBadRequest, "INVALID_LIMIT", "Invalid limit query parameter. It must be between 1 and 200", nil)
			return
		}
		limit = n
	}

	page := 1
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			httpx.JSONError(w, http.StatusBadRequest, "INVALID_PAGE", "Invalid page query parameter. It must be between 1 and 100", nil)
			return
		}
		page = n
	}

	books, err := h.service.ListByAge(r.Context(), order == "old", limit, (page-1)*limit)
	if err != nil {
		h.serverError(w, r, "list books by age", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"books": books}, nil)
}

// ListByRatingRange handles GET /books/ratingRange
func (h *HTTPHandler) ListByRatingRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minRating, errMin := strconv.ParseFloat(query.Get("minRating"), 64)
	maxRating, errMax := strconv.ParseFloat(query.Get("maxRating"), 64)
	if errMin != nil || errMax != nil || minRating < 1 || maxRating > 5 || minRating > maxRating {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_RATING_RANGE", "Invalid or missing rating range. Bounds must satisfy 1.0 <= minRating <= maxRating <= 5.0", nil)
		return
	}

	books, err := h.service.ListByRatingRange(r.Context(), minRating, maxRating)
	if err != nil {
		h.serverError(w, r, "list books by rating range", err)
		return
	}
	if len(books) == 0 {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "No books found in range", nil)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"books": books}, nil)
}

// SearchByTitle handles GET /books/title/{title}
func (h *HTTPHandler) SearchByTitle(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.PathValue("title"))
	if title == "" {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_TITLE", "Missing or invalid title parameter", nil)
		return
	}

	books, err := h.service.SearchByTitle(r.Context(), title)
	if err != nil {
		h.serverError(w, r, "search books by title", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"books": books}, nil)
}

// GetRatings handles GET /books/bookid/{bookid}/ratings
func (h *HTTPHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Invalid or missing book ID", nil)
		return
	}

	ratings, err := h.service.GetRatings(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.serverError(w, r, "get ratings", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"ratings": ratings}, nil)
}

// GetImage handles GET /books/bookid/{bookid}/image
func (h *HTTPHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	h.getIcon(w, r, func(icons Icons) string { return icons.Large })
}

// GetSmallImage handles GET /books/bookid/{bookid}/small-image
func (h *HTTPHandler) GetSmallImage(w http.ResponseWriter, r *http.Request) {
	h.getIcon(w, r, func(icons Icons) string { return icons.Small })
}

func (h *HTTPHandler) getIcon(w http.ResponseWriter, r *http.Request, pick func(Icons) string) {
	bookID, ok := parseBookID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Invalid or missing book ID", nil)
		return
	}

	icons, err := h.service.GetIcons(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Image not found for given book ID", nil)
			return
		}
		h.serverError(w, r, "get book image", err)
		return
	}

	url := pick(icons)
	if url == "" {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Image not found for given book ID", nil)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"image": url}, nil)
}

// SetRatingCount handles PATCH /books/bookid/{bookid}/numOfRatings/{numRatings}
func (h *HTTPHandler) SetRatingCount(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Invalid or missing book ID", nil)
		return
	}

	count, err := strconv.Atoi(r.PathValue("numRatings"))
	if err != nil || count < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_COUNT", "Invalid or missing number of ratings", nil)
		return
	}

	level, ok := parseRatingLevel(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_RATING", "Invalid or missing rating level", nil)
		return
	}

	h.respondWithMutatedBook(w, r, "set rating count", func() (Book, error) {
		return h.service.SetRatingCount(r.Context(), bookID, level, count)
	})
}

// IncrementRating handles PATCH /books/bookid/{bookid}/incRating
func (h *HTTPHandler) IncrementRating(w http.ResponseWriter, r *http.Request) {
	h.mutateRating(w, r, "increment rating", h.service.IncrementRating)
}

// DecrementRating handles PATCH /books/bookid/{bookid}/decRating
func (h *HTTPHandler) DecrementRating(w http.ResponseWriter, r *http.Request) {
	h.mutateRating(w, r, "decrement rating", h.service.DecrementRating)
}

func (h *HTTPHandler) mutateRating(w http.ResponseWriter, r *http.Request, op string, mutate func(ctx context.Context, bookID int64, level int) (Book, error)) {
	bookID, ok := parseBookID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Invalid or missing book ID", nil)
		return
	}

	level, ok := parseRatingLevel(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_RATING", "Invalid or missing rating level", nil)
		return
	}

	h.respondWithMutatedBook(w, r, op, func() (Book, error) {
		return mutate(r.Context(), bookID, level)
	})
}

func (h *HTTPHandler) respondWithMutatedBook(w http.ResponseWriter, r *http.Request, op string, mutate func() (Book, error)) {
	b, err := mutate()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.serverError(w, r, op, err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"book": b}, nil)
}

// DeleteByISBN handles DELETE /books/{isbn13}
func (h *HTTPHandler) DeleteByISBN(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("isbn13")
	if !isbnRe.MatchString(raw) {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_ISBN", "Invalid ISBN format", nil)
		return
	}
	isbn, _ := strconv.ParseInt(raw, 10, 64)

	if err := h.service.DeleteByISBN(r.Context(), isbn); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		h.serverError(w, r, "delete book by isbn", err)
		return
	}

	httpx.JSONSuccess(w, map[string]any{"message": "Book with ISBN " + raw + " has been deleted"}, nil)
}

// DeleteByAuthor handles DELETE /books/author/{author}
func (h *HTTPHandler) DeleteByAuthor(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")
	if strings.TrimSpace(author) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_AUTHOR", "Invalid author name", nil)
		return
	}

	books, err := h.service.DeleteByAuthor(r.Context(), author)
	if err != nil {
		if errors.Is(err, ErrAuthorNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Author not found", nil)
			return
		}
		h.serverError(w, r, "delete books by author", err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"books": books}, nil)
}
