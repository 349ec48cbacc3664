// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tui is the Bubble Tea front end: the feature list, the
// new-feature form and the settings screen.
package tui
