package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
)

// pinger is what the readiness probe needs from the database pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter wires every route. The whole catalog lives behind the auth
// middleware; registration and login are open.
func newRouter(cfg config.Config, logger *zap.Logger, db pinger, bookHandler *book.HTTPHandler, authHandler *auth.HTTPHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("PATCH /changePassword", authHandler.ChangePassword)

	books := http.NewServeMux()
	books.HandleFunc("POST /books", bookHandler.Create)
	books.HandleFunc("GET /books", bookHandler.List)
	books.HandleFunc("GET /books/age", bookHandler.ListByAge)
	books.HandleFunc("GET /books/ratingRange", bookHandler.ListByRatingRange)
	books.HandleFunc("GET /books/isbn/{isbn}", bookHandler.GetByISBN)
	books.HandleFunc("GET /books/author/{author}", bookHandler.ListByAuthor)
	books.HandleFunc("GET /books/title/{title}", bookHandler.SearchByTitle)
	books.HandleFunc("GET /books/bookid/{bookid}/ratings", bookHandler.GetRatings)
	books.HandleFunc("GET /books/bookid/{bookid}/image", bookHandler.GetImage)
	books.HandleFunc("GET /books/bookid/{bookid}/small-image", bookHandler.GetSmallImage)
	books.HandleFunc("PATCH /books/bookid/{bookid}/numOfRatings/{numRatings}", bookHandler.SetRatingCount)
	books.HandleFunc("PATCH /books/bookid/{bookid}/incRating", bookHandler.IncrementRating)
	books.HandleFunc("PATCH /books/bookid/{bookid}/decRating", bookHandler.DecrementRating)
	books.HandleFunc("DELETE /books/{isbn13}", bookHandler.DeleteByISBN)
	books.HandleFunc("DELETE /books/author/{author}", bookHandler.DeleteByAuthor)
	mux.Handle("/books", httpx.AuthMiddleware(cfg.JWTSecret)(books))
	mux.Handle("/books/", httpx.AuthMiddleware(cfg.JWTSecret)(books))

	rateLimit := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	var handler http.Handler = mux
	handler = httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes)(handler)
	handler = rateLimit.Middleware(handler)
	handler = httpx.SecurityHeadersMiddleware(handler)
	handler = httpx.CORSMiddleware(cfg.CORSOrigins)(handler)
	handler = httpx.AccessLogMiddleware(logger)(handler)
	handler = httpx.RecoveryMiddleware(logger)(handler)
	handler = httpx.RequestIDMiddleware(handler)
	return handler
}
