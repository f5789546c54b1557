package book

import (
	"context"
)

// Repository defines the contract for book data storage.
//
// Create, DeleteByISBN and DeleteByAuthor are multi-table units: the book
// row, its author rows and its rating row are written or removed as one
// all-or-nothing transaction. SetRatingCount and AddToRatingCount touch
// exactly one counter of one book and report ErrNotFound when zero rows
// match.
type Repository interface {
	Create(ctx context.Context, nb NewBook) (Book, error)
	List(ctx context.Context, limit, offset int) ([]Book, int, error)
	GetByISBN(ctx context.Context, isbn int64) (Book, error)
	ListByAuthor(ctx context.Context, author string) ([]Book, error)
	ListByAge(ctx context.Context, oldestFirst bool, limit, offset int) ([]Book, error)
	ListByRatingRange(ctx context.Context, minRating, maxRating float64) ([]Book, error)
	SearchByTitle(ctx context.Context, title string) ([]Book, error)
	GetRatings(ctx context.Context, bookID int64) (Ratings, error)
	GetIcons(ctx context.Context, bookID int64) (Icons, error)
	SetRatingCount(ctx context.Context, bookID int64, level, count int) (Book, error)
	AddToRatingCount(ctx context.Context, bookID int64, level, delta int) (Book, error)
	DeleteByISBN(ctx context.Context, isbn int64) error
	DeleteByAuthor(ctx context.Context, author string) ([]Book, error)
}
