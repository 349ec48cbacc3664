// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/featurevotes/handlers"
	"github.com/danielhkuo/featurevotes/metrics"
	"github.com/danielhkuo/featurevotes/middleware"
)

func NewRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	featureHandler := handlers.NewFeatureHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Features
	route(mux, "GET /features", featureHandler.ListFeatures)
	route(mux, "POST /features", featureHandler.CreateFeature)
	route(mux, "POST /features/{id}/upvote", featureHandler.UpvoteFeature)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("featurevotes API v1"))
	})

	return mux
}

// NewHandler returns the full server handler: routes plus CORS and panic recovery.
func NewHandler(db *sql.DB) http.Handler {
	return middleware.Recover(middleware.CORS(NewRouter(db)))
}

func route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, metrics.Instrument(pattern, middleware.WithLogging(h)))
}
