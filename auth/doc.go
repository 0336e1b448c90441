// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin tokens, voter key hashing, and ID generation.

# Admin Tokens

Admin tokens use HMAC-SHA256 over the poll ID:

	token := auth.GenerateAdminToken(pollID, salt)
	err := auth.ValidateAdminToken(pollID, token, salt)

Tokens are URL-safe base64 without padding. They are deterministic, so the
server never stores them. Requests present the token in the X-Admin-Key
header or, for share links, the adminToken query parameter:

	if auth.IsAdmin(r, pollID, cfg.AdminKeySalt) { ... }

# Voter Keys

Each browser keeps a random voter key and sends it with every ballot. The
key identifies a voter across resubmissions; only its HMAC is stored:

	hash, err := auth.HashVoterKey(pollID, voterKey, salt)

# ID Generation

Random hex IDs for polls and candidates:

	id, err := auth.GenerateID(8)  // 16 hex characters

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
