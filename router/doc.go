// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes using Go 1.22+ pattern matching.

# Creating the Router

	mux := router.NewRouter(db)

or, with CORS and panic recovery applied:

	handler := router.NewHandler(db)

# Routes

	GET  /health               Health check (returns "OK")
	GET  /metrics              Prometheus metrics
	GET  /features             List features
	POST /features             Create feature
	POST /features/{id}/upvote Upvote feature
	GET  /                     API banner

Feature routes are wrapped with request logging and Prometheus
instrumentation labelled by route pattern. Unsupported methods on a known
path get 405 from the mux; unknown paths get 404.
*/
package router
