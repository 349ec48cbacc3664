package models

import "time"

// Sort modes understood by the client list view
const (
	SortTop    = "top"
	SortNewest = "newest"
)

// Request types

type CreateFeatureRequest struct {
	Title string `json:"title"`
}

// Domain types

// Feature is a user-submitted suggestion. Votes only ever grow through upvotes.
type Feature struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
