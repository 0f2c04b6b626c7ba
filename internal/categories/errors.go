// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categories

import "errors"

// Sentinel errors returned by the ordering service. Handlers map these to
// HTTP status codes with errors.Is; anything else is an unexpected store
// failure and surfaces as a 500.
var (
	// ErrInvalidInput means the action payload is malformed: a required
	// field is missing or an id failed to parse.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means a referenced id does not resolve to an existing
	// category. During moves it also signals an inconsistent store (an
	// expected adjacent sibling is missing).
	ErrNotFound = errors.New("category not found")

	// ErrInvalidOperation means the action is semantically illegal in the
	// current state, e.g. moving the topmost sibling up.
	ErrInvalidOperation = errors.New("invalid operation")
)
