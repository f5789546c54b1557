package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores books, authors and rating counters across three
// tables. Multi-table writes run inside a single transaction; counter
// deltas are single atomic statements.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// bookRow is the raw shape scanned out of the store. toBook is the only
// place it turns into a formatted Book.
type bookRow struct {
	BookID        int64
	ISBN13        int64
	Publication   int
	OriginalTitle string
	Title         string
	ImageURL      string
	SmallImageURL string
	Authors       string
	Counts        RatingCounts
}

func (row bookRow) toBook() Book {
	return Book{
		BookID:        row.BookID,
		ISBN13:        row.ISBN13,
		Authors:       row.Authors,
		Publication:   row.Publication,
		OriginalTitle: row.OriginalTitle,
		Title:         row.Title,
		Ratings:       row.Counts.Stats(),
		Icons:         Icons{Large: row.ImageURL, Small: row.SmallImageURL},
	}
}

// formattedBookSQL joins the three tables into one row per book: authors
// aggregated in insertion order, counters zeroed when the rating row is
// missing. where and tail are trusted SQL fragments; all values travel as
// bind parameters.
func formattedBookSQL(where, tail string) string {
	return fmt.Sprintf(`
		SELECT b.book_id, b.isbn13, b.original_publication_year, b.original_title, b.title,
		       b.image_url, b.small_image_url,
		       STRING_AGG(a.author, ', ' ORDER BY a.position) AS authors,
		       COALESCE(r.ratings_1, 0), COALESCE(r.ratings_2, 0), COALESCE(r.ratings_3, 0),
		       COALESCE(r.ratings_4, 0), COALESCE(r.ratings_5, 0)
		FROM books b
		JOIN authors a ON a.book_id = b.book_id
		LEFT JOIN ratings r ON r.book_id = b.book_id
		%s
		GROUP BY b.book_id, r.ratings_1, r.ratings_2, r.ratings_3, r.ratings_4, r.ratings_5
		%s`, where, tail)
}

func scanBookRow(row pgx.Row) (bookRow, error) {
	var b bookRow
	err := row.Scan(
		&b.BookID, &b.ISBN13, &b.Publication, &b.OriginalTitle, &b.Title,
		&b.ImageURL, &b.SmallImageURL, &b.Authors,
		&b.Counts.Rating1, &b.Counts.Rating2, &b.Counts.Rating3,
		&b.Counts.Rating4, &b.Counts.Rating5,
	)
	return b, err
}

func (r *PostgresRepo) queryBooks(ctx context.Context, sql string, args ...any) ([]Book, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBookRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b.toBook())
	}
	return out, rows.Err()
}

// ratingColumn maps a star level to its counter column. The level is the
// only dynamic piece of the mutation SQL and never comes from user input
// unchecked.
func ratingColumn(level int) (string, error) {
	if level < 1 || level > 5 {
		return "", fmt.Errorf("invalid rating level %d", level)
	}
	return fmt.Sprintf("ratings_%d", level), nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// Create inserts the book row, one author row per name and a zeroed
// rating row as one transaction. Any failure rolls the whole unit back.
func (r *PostgresRepo) Create(ctx context.Context, nb NewBook) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Book{}, err
	}
	defer tx.Rollback(timeoutCtx)

	const insertBook = `
		INSERT INTO books (isbn13, original_publication_year, original_title, title, image_url, small_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING book_id`
	var bookID int64
	err = tx.QueryRow(timeoutCtx, insertBook,
		nb.ISBN13, nb.Publication, nb.OriginalTitle, nb.Title, nb.ImageURL, nb.SmallImageURL,
	).Scan(&bookID)
	if err != nil {
		if isUniqueViolation(err, "books_isbn13_key") {
			return Book{}, ErrDuplicateISBN
		}
		return Book{}, err
	}

	const insertAuthor = `INSERT INTO authors (book_id, author, position) VALUES ($1, $2, $3)`
	for i, author := range nb.Authors {
		if _, err := tx.Exec(timeoutCtx, insertAuthor, bookID, author, i); err != nil {
			return Book{}, err
		}
	}

	if _, err := tx.Exec(timeoutCtx, `INSERT INTO ratings (book_id) VALUES ($1)`, bookID); err != nil {
		return Book{}, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Book{}, err
	}

	return Book{
		BookID:        bookID,
		ISBN13:        nb.ISBN13,
		Authors:       strings.Join(nb.Authors, ", "),
		Publication:   nb.Publication,
		OriginalTitle: nb.OriginalTitle,
		Title:         nb.Title,
		Ratings:       RatingCounts{}.Stats(),
		Icons:         Icons{Large: nb.ImageURL, Small: nb.SmallImageURL},
	}, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit, offset int) ([]Book, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := formattedBookSQL("", "ORDER BY b.book_id LIMIT $1 OFFSET $2")
	books, err := r.queryBooks(timeoutCtx, sql, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn int64) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := formattedBookSQL("WHERE b.isbn13 = $1", "")
	b, err := scanBookRow(r.db.QueryRow(timeoutCtx, sql, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b.toBook(), nil
}

func (r *PostgresRepo) getByID(ctx context.Context, bookID int64) (Book, error) {
	sql := formattedBookSQL("WHERE b.book_id = $1", "")
	b, err := scanBookRow(r.db.QueryRow(ctx, sql, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b.toBook(), nil
}

// ListByAuthor matches the author name exactly and returns every book
// they wrote or co-wrote, co-authors included in the output.
func (r *PostgresRepo) ListByAuthor(ctx context.Context, author string) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := formattedBookSQL(
		"WHERE b.book_id IN (SELECT book_id FROM authors WHERE author = $1)",
		"ORDER BY b.book_id")
	books, err := r.queryBooks(timeoutCtx, sql, author)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrAuthorNotFound
	}
	return books, nil
}

func (r *PostgresRepo) ListByAge(ctx context.Context, oldestFirst bool, limit, offset int) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	sql := formattedBookSQL("",
		fmt.Sprintf("ORDER BY b.original_publication_year %s LIMIT $1 OFFSET $2", order))
	return r.queryBooks(timeoutCtx, sql, limit, offset)
}

// ListByRatingRange filters on the same weighted average the aggregator
// computes, rounded to two decimals in SQL so the boundary behaviour
// matches what callers see in responses. Books with no ratings never
// match.
func (r *PostgresRepo) ListByRatingRange(ctx context.Context, minRating, maxRating float64) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := formattedBookSQL(`
		WHERE (r.ratings_1 + r.ratings_2 + r.ratings_3 + r.ratings_4 + r.ratings_5) > 0
		  AND ROUND(
		        (r.ratings_1 + 2*r.ratings_2 + 3*r.ratings_3 + 4*r.ratings_4 + 5*r.ratings_5)::numeric
		        / (r.ratings_1 + r.ratings_2 + r.ratings_3 + r.ratings_4 + r.ratings_5), 2)
		      BETWEEN $1 AND $2`,
		"ORDER BY b.book_id")
	return r.queryBooks(timeoutCtx, sql, minRating, maxRating)
}

// SearchByTitle ranks by trigram similarity (pg_trgm). The % operator
// uses the similarity threshold configured in Postgres.
func (r *PostgresRepo) SearchByTitle(ctx context.Context, title string) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := formattedBookSQL("WHERE b.title % $1",
		"ORDER BY similarity(b.title, $1) DESC LIMIT 10")
	return r.queryBooks(timeoutCtx, sql, title)
}

func (r *PostgresRepo) GetRatings(ctx context.Context, bookID int64) (Ratings, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `
		SELECT ratings_1, ratings_2, ratings_3, ratings_4, ratings_5
		FROM ratings
		WHERE book_id = $1`
	var c RatingCounts
	err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(
		&c.Rating1, &c.Rating2, &c.Rating3, &c.Rating4, &c.Rating5)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ratings{}, ErrNotFound
		}
		return Ratings{}, err
	}
	return c.Stats(), nil
}

func (r *PostgresRepo) GetIcons(ctx context.Context, bookID int64) (Icons, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var icons Icons
	err := r.db.QueryRow(timeoutCtx,
		`SELECT image_url, small_image_url FROM books WHERE book_id = $1`, bookID,
	).Scan(&icons.Large, &icons.Small)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Icons{}, ErrNotFound
		}
		return Icons{}, err
	}
	return icons, nil
}

// SetRatingCount writes an absolute value into one counter. Zero rows
// affected means the book has no rating row, reported as ErrNotFound.
func (r *PostgresRepo) SetRatingCount(ctx context.Context, bookID int64, level, count int) (Book, error) {
	col, err := ratingColumn(level)
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := fmt.Sprintf(`UPDATE ratings SET %s = $1 WHERE book_id = $2`, col)
	tag, err := r.db.Exec(timeoutCtx, sql, count, bookID)
	if err != nil {
		return Book{}, err
	}
	if tag.RowsAffected() == 0 {
		return Book{}, ErrNotFound
	}
	return r.getByID(timeoutCtx, bookID)
}

// AddToRatingCount applies a delta to one counter in a single statement,
// so concurrent increments on the same (book, level) pair never lose
// updates. GREATEST clamps the counter at zero on decrement.
func (r *PostgresRepo) AddToRatingCount(ctx context.Context, bookID int64, level, delta int) (Book, error) {
	col, err := ratingColumn(level)
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql := fmt.Sprintf(`UPDATE ratings SET %s = GREATEST(%s + $1, 0) WHERE book_id = $2`, col, col)
	tag, err := r.db.Exec(timeoutCtx, sql, delta, bookID)
	if err != nil {
		return Book{}, err
	}
	if tag.RowsAffected() == 0 {
		return Book{}, ErrNotFound
	}
	return r.getByID(timeoutCtx, bookID)
}

// DeleteByISBN removes the book, its author rows and its rating row as
// one transaction, keeping "rating row exists iff book exists" true.
func (r *PostgresRepo) DeleteByISBN(ctx context.Context, isbn int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	var bookID int64
	err = tx.QueryRow(timeoutCtx, `SELECT book_id FROM books WHERE isbn13 = $1`, isbn).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM ratings WHERE book_id = $1`,
		`DELETE FROM authors WHERE book_id = $1`,
		`DELETE FROM books WHERE book_id = $1`,
	} {
		if _, err := tx.Exec(timeoutCtx, stmt, bookID); err != nil {
			return err
		}
	}

	return tx.Commit(timeoutCtx)
}

// DeleteByAuthor fetches the author's formatted books first, then deletes
// the rating, author and book rows for those book ids as one transaction.
// The fetched list is returned so callers see exactly what was removed.
func (r *PostgresRepo) DeleteByAuthor(ctx context.Context, author string) ([]Book, error) {
	books, err := r.ListByAuthor(ctx, author)
	if err != nil {
		return nil, err
	}

	bookIDs := make([]int64, len(books))
	for i, b := range books {
		bookIDs[i] = b.BookID
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(timeoutCtx)

	for _, stmt := range []string{
		`DELETE FROM ratings WHERE book_id = ANY($1)`,
		`DELETE FROM authors WHERE book_id = ANY($1)`,
		`DELETE FROM books WHERE book_id = ANY($1)`,
	} {
		if _, err := tx.Exec(timeoutCtx, stmt, bookIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return nil, err
	}
	return books, nil
}
