// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(handler))

Each request logs "request started" and "request completed" through slog.
The completion line carries the status the handler wrote and duration_ms.

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}

The request Origin is echoed back (or * without one). Preflight requests are
answered directly. X-Admin-Key and X-Device-UUID are allowed request headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusCreated, resp)
	middleware.ErrorResponse(w, http.StatusConflict, "Poll is not accepting votes")

Errors are {"error": <status text>, "message": <detail>}.

ParseJSONBody decodes at most MaxBodyBytes of the request body; anything
longer fails to decode.

# Client IP

GetClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then the
host part of RemoteAddr. Ballots store only a salted hash of it.
*/
package middleware
