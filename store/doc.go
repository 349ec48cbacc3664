// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the persistence layer for features.

	s := store.New(conn)
	f, err := s.Create(ctx, "Dark mode")
	f, err = s.Upvote(ctx, f.ID)
	if errors.Is(err, store.ErrNotFound) {
		// 404
	}

Features are never deleted and votes never decrease; Upvote is the only
mutation after insert.
*/
package store
