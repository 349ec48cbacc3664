// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a typed wrapper around the FeatureVotes HTTP API.

	c := client.New(client.ResolveBaseURL(""))
	features, err := c.ListFeatures(ctx)

Non-2xx responses come back as *APIError carrying the server's message.
errors.Is(err, client.ErrNotFound) and errors.Is(err, client.ErrValidation)
match 404 and 400. A canceled context is returned unwrapped.
*/
package client
