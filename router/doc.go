// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the rankpick API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, describer)

Pass a nil describer to disable candidate descriptions.

# Endpoints

Health:

	GET /health

Polls:

	POST /polls            - Create poll (counts against the daily limit)
	GET  /polls/stats      - Today's creation count
	GET  /polls/{id}       - Poll, candidates, vote count
	PUT  /polls/{id}/phase - Change phase (admin)

Candidates:

	POST   /polls/{id}/candidates               - Nominate (nominating only)
	DELETE /polls/{id}/candidates/{candidateId} - Remove (admin, nominating only)

Voting and results:

	POST /polls/{id}/votes   - Submit or replace a ranked ballot (voting only)
	GET  /polls/{id}/results - Tally (closed, or admin); ?method= overrides

Device management:

	POST /devices/register - Register device
	GET  /devices/me       - Get device info
	GET  /devices/my-polls - List device's polls

Admin routes accept the token in the X-Admin-Key header or the adminToken
query parameter.
*/
package router
