package book

import (
	"context"
	"strings"
)

// Service provides catalog business logic on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SplitAuthors splits a comma-separated author list, trimming whitespace
// and dropping exact duplicates while preserving first-seen order.
func SplitAuthors(csv string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(csv, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Create inserts a book with its authors and a zeroed rating row as one
// unit. The authors CSV is split and de-duplicated here so the stored
// rows match what the caller gets back.
func (s *Service) Create(ctx context.Context, nb NewBook, authorsCSV string) (Book, error) {
	nb.Authors = SplitAuthors(authorsCSV)
	return s.repo.Create(ctx, nb)
}

// List returns one page of the catalog plus the total book count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Book, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// GetByISBN returns a formatted book by its ISBN-13.
func (s *Service) GetByISBN(ctx context.Context, isbn int64) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// ListByAuthor returns every book the author wrote or co-wrote.
func (s *Service) ListByAuthor(ctx context.Context, author string) ([]Book, error) {
	return s.repo.ListByAuthor(ctx, author)
}

// ListByAge returns books sorted by original publication year.
func (s *Service) ListByAge(ctx context.Context, oldestFirst bool, limit, offset int) ([]Book, error) {
	return s.repo.ListByAge(ctx, oldestFirst, limit, offset)
}

// ListByRatingRange returns books whose computed average falls in the
// inclusive range.
func (s *Service) ListByRatingRange(ctx context.Context, minRating, maxRating float64) ([]Book, error) {
	return s.repo.ListByRatingRange(ctx, minRating, maxRating)
}

// SearchByTitle returns a best-effort similarity-ranked list for a fuzzy
// title.
func (s *Service) SearchByTitle(ctx context.Context, title string) ([]Book, error) {
	return s.repo.SearchByTitle(ctx, title)
}

// GetRatings returns only the rating statistics for a book.
func (s *Service) GetRatings(ctx context.Context, bookID int64) (Ratings, error) {
	return s.repo.GetRatings(ctx, bookID)
}

// GetIcons returns the image URLs for a book.
func (s *Service) GetIcons(ctx context.Context, bookID int64) (Icons, error) {
	return s.repo.GetIcons(ctx, bookID)
}

// SetRatingCount writes an absolute counter value for one rating level.
func (s *Service) SetRatingCount(ctx context.Context, bookID int64, level, count int) (Book, error) {
	return s.repo.SetRatingCount(ctx, bookID, level, count)
}

// IncrementRating adds one rating at the given level.
func (s *Service) IncrementRating(ctx context.Context, bookID int64, level int) (Book, error) {
	return s.repo.AddToRatingCount(ctx, bookID, level, 1)
}

// DecrementRating removes one rating at the given level. The store clamps
// the counter at zero.
func (s *Service) DecrementRating(ctx context.Context, bookID int64, level int) (Book, error) {
	return s.repo.AddToRatingCount(ctx, bookID, level, -1)
}

// DeleteByISBN removes a book and its author and rating rows.
func (s *Service) DeleteByISBN(ctx context.Context, isbn int64) error {
	return s.repo.DeleteByISBN(ctx, isbn)
}

// DeleteByAuthor removes every book the author wrote or co-wrote and
// returns the formatted list of what was deleted.
func (s *Service) DeleteByAuthor(ctx context.Context, author string) ([]Book, error) {
	return s.repo.DeleteByAuthor(ctx, author)
}
