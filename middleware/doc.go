// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /features", middleware.WithLogging(handler))

Logs request start (request_id, method, path, remote) and completion
(status, duration_ms). The request id comes from X-Request-ID or is generated
with a random UUID, and is echoed back in the response header. Handlers can
read it with RequestID(r.Context()).

# Panic Recovery

	server := http.Server{
		Handler: middleware.Recover(middleware.CORS(mux)),
	}

A panicking handler is logged with its stack and answered with
500 {"error":"Internal server error"}.

# CORS Middleware

Allows GET, POST, OPTIONS from any origin. Preflight requests are answered
with 204 without reaching the handler.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, feature)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Title is required")

	var req models.CreateFeatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP; used in request logs.
*/
package middleware
