// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/featurevotes/metrics"
	"github.com/danielhkuo/featurevotes/middleware"
	"github.com/danielhkuo/featurevotes/models"
	"github.com/danielhkuo/featurevotes/store"
)

type FeatureHandler struct {
	store *store.Store
}

func NewFeatureHandler(db *sql.DB) *FeatureHandler {
	return &FeatureHandler{store: store.New(db)}
}

// ListFeatures handles GET /features
func (h *FeatureHandler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("failed to list features", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch features")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, features)
}

// CreateFeature handles POST /features
func (h *FeatureHandler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFeatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}

	feature, err := h.store.Create(r.Context(), title)
	if err != nil {
		slog.Error("failed to insert feature", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create feature")
		return
	}

	metrics.RecordFeatureCreated()
	slog.Info("feature created", "feature_id", feature.ID, "title", feature.Title)

	middleware.JSONResponse(w, http.StatusOK, feature)
}

// UpvoteFeature handles POST /features/{id}/upvote
func (h *FeatureHandler) UpvoteFeature(w http.ResponseWriter, r *http.Request) {
	// A malformed id can't match any row, so it's reported like any unknown id
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		metrics.RecordUpvote("not_found")
		middleware.ErrorResponse(w, http.StatusNotFound, "Feature not found")
		return
	}

	feature, err := h.store.Upvote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordUpvote("not_found")
		middleware.ErrorResponse(w, http.StatusNotFound, "Feature not found")
		return
	}
	if err != nil {
		metrics.RecordUpvote("error")
		slog.Error("failed to upvote feature", "error", err, "feature_id", id, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upvote feature")
		return
	}

	metrics.RecordUpvote("ok")
	slog.Info("feature upvoted", "feature_id", feature.ID, "votes", feature.Votes)

	middleware.JSONResponse(w, http.StatusOK, feature)
}
