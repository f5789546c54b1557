package book

import "errors"

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrAuthorNotFound is returned when no book is associated with an author.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrDuplicateISBN is returned when a create collides with an existing ISBN.
	ErrDuplicateISBN = errors.New("isbn already exists")
)

// Icons holds the image URLs for a book.
type Icons struct {
	Large string `json:"large"`
	Small string `json:"small"`
}

// Book is the formatted catalog entry returned by every read path:
// authors joined into one comma-separated string and rating statistics
// derived from the stored counters.
type Book struct {
	BookID        int64   `json:"-"`
	ISBN13        int64   `json:"isbn13"`
	Authors       string  `json:"authors"`
	Publication   int     `json:"publication"`
	OriginalTitle string  `json:"original_title"`
	Title         string  `json:"title"`
	Ratings       Ratings `json:"ratings"`
	Icons         Icons   `json:"icons"`
}

// NewBook carries the validated fields for creating a catalog entry.
// Authors must already be trimmed and de-duplicated in first-seen order.
type NewBook struct {
	ISBN13        int64
	Title         string
	OriginalTitle string
	Publication   int
	Authors       []string
	ImageURL      string
	SmallImageURL string
}
