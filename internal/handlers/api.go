// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/categories"
	"inkpress/internal/middleware"
)

// CacheLogger records cache invalidations; satisfied by store.CacheLogStore.
type CacheLogger interface {
	Log(entityType string, entityID uuid.UUID, action string)
}

// API groups the JSON endpoints used by the admin category tree editor.
type API struct {
	service   *categories.Service
	pageCache *cache.PageCache
	cacheLog  CacheLogger
}

// NewAPI creates a new API handler group. pageCache and cacheLog may be
// nil in tests; category mutations then skip invalidation.
func NewAPI(service *categories.Service, pageCache *cache.PageCache, cacheLog CacheLogger) *API {
	return &API{
		service:   service,
		pageCache: pageCache,
		cacheLog:  cacheLog,
	}
}

// categoryEnvelope is the wire format posted by the tree editor:
// {"data": {"action": "...", "id": "...", ...}}. ID fields arrive as
// strings and are parsed here; parse failures are invalid input.
type categoryEnvelope struct {
	Data categoryAction `json:"data"`
}

type categoryAction struct {
	Action string  `json:"action"`
	ID     *string `json:"id,omitempty"`
	Value  *string `json:"value,omitempty"`
	After  *string `json:"after,omitempty"`
	Nested *string `json:"nested,omitempty"`
}

// Categories handles POST /api/categories: one tree mutation per request.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	var env categoryEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSONError(w, "malformed request body", http.StatusBadRequest)
		return
	}

	req := categories.Request{
		Action: env.Data.Action,
		Value:  env.Data.Value,
	}

	var parseErr bool
	req.ID = parseOptionalUUID(env.Data.ID, &parseErr)
	req.After = parseOptionalUUID(env.Data.After, &parseErr)
	req.Nested = parseOptionalUUID(env.Data.Nested, &parseErr)
	if parseErr {
		writeJSONError(w, "malformed id", http.StatusBadRequest)
		return
	}

	result, err := a.service.Apply(req)
	if err != nil {
		switch {
		case errors.Is(err, categories.ErrInvalidInput),
			errors.Is(err, categories.ErrInvalidOperation):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, categories.ErrNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			slog.Error("category action failed", "action", req.Action, "error", err)
			writeJSONError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	a.invalidate(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// CSRFToken handles GET /api/csrf-token. The tree editor fetches a fresh
// token before each mutation.
func (a *API) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.CSRFTokenFromCtx(r.Context())
	if token == "" {
		writeJSONError(w, "no token available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"csrfToken": token})
}

// invalidate clears cached public pages after a successful tree mutation
// and records the event. Category changes affect navigation on every
// page, so the whole cache goes.
func (a *API) invalidate(ctx context.Context, req categories.Request) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
	if a.cacheLog != nil {
		id := uuid.Nil
		if req.ID != nil {
			id = *req.ID
		}
		a.cacheLog.Log("category", id, req.Action)
	}
}

// parseOptionalUUID parses the string if present, flagging failures.
func parseOptionalUUID(s *string, failed *bool) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		*failed = true
		return nil
	}
	return &id
}

// writeJSONError writes a JSON error envelope with the given status.
func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
