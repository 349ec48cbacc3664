// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package featuresync

import (
	"cmp"
	"slices"

	"github.com/danielhkuo/featurevotes/models"
)

// ValidSortMode reports whether mode is one of the supported orderings.
func ValidSortMode(mode string) bool {
	return mode == models.SortTop || mode == models.SortNewest
}

// Sort returns a new slice ordered by mode. The input is not modified.
// Unknown modes sort as top. Ties fall back to newest first, then highest id.
func Sort(features []models.Feature, mode string) []models.Feature {
	out := slices.Clone(features)
	if out == nil {
		out = []models.Feature{}
	}

	slices.SortFunc(out, func(a, b models.Feature) int {
		if mode != models.SortNewest {
			if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
				return c
			}
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
