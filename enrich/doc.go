// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package enrich fetches short descriptions for movie candidates.

The handlers depend on the Describer interface; main wires a *Client when
DESCRIPTION_API_KEY is set and leaves it nil otherwise. Client wraps the
Anthropic Messages API through anthropic-sdk-go; BaseURL points it at a
different API root, which is how the tests substitute an httptest server.

	d := enrich.NewClient(enrich.Config{
		BaseURL: cfg.DescriptionAPIURL,
		APIKey:  cfg.DescriptionAPIKey,
		Model:   cfg.DescriptionModel,
		Timeout: cfg.DescriptionTimeout,
	})
	desc, err := d.Describe(ctx, "Alien")

Describe returns ErrUnknownTitle when the answer reads as a refusal
("not familiar", "don't know", ...) and ErrEmptyDescription when there is
no text. Any error means the caller should record the attempt and move on;
enrichment never fails a request.
*/
package enrich
