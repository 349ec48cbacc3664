// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the FeatureVotes API.

# Handler Types

FeatureHandler serves the three feature endpoints. It is created with the
database handle:

	featureHandler := handlers.NewFeatureHandler(db)

# Endpoints

	GET  /features             → ListFeatures  (votes desc, newest first on ties)
	POST /features             → CreateFeature (body {"title": "..."})
	POST /features/{id}/upvote → UpvoteFeature (adds exactly one vote)

# Status Codes

  - 200: success, body is a feature or a list of features
  - 400: invalid JSON or missing/blank title
  - 404: unknown feature id (non-numeric ids included)
  - 500: store failure

Errors are logged and returned as {"error": "..."}; they never stop the
server.
*/
package handlers
