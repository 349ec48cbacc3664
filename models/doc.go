// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreateFeatureRequest: title

# Domain Types

  - Feature: id, title, votes, created_at

Feature is returned as-is by every endpoint:

	{"id": 1, "title": "Dark mode", "votes": 0, "created_at": "2025-01-01T10:00:00Z"}

# Error Response

Every failure is answered with a single field:

	{"error": "Title is required"}

# Constants

Sort modes used by clients (the server always orders by votes):

	SortTop    = "top"
	SortNewest = "newest"
*/
package models
