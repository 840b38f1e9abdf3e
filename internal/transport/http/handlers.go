// Copyright 2026 The RuleGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rulegate/rulegate/internal/audit"
	"github.com/rulegate/rulegate/internal/authz"
	"github.com/rulegate/rulegate/internal/identity"
	"github.com/rulegate/rulegate/internal/observability/metrics"
	"github.com/rulegate/rulegate/internal/principal"
	"github.com/rulegate/rulegate/internal/session"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	resolver    *identity.Resolver
	engine      *authz.Engine
	activeRole  *session.ActiveRole
	auditLogger audit.Logger
	meter       *metrics.Meter
}

// NewHandler creates a new HTTP handler. auditLogger and meter may be
// nil.
func NewHandler(
	resolver *identity.Resolver,
	engine *authz.Engine,
	activeRole *session.ActiveRole,
	auditLogger audit.Logger,
	meter *metrics.Meter,
) *Handler {
	return &Handler{
		resolver:    resolver,
		engine:      engine,
		activeRole:  activeRole,
		auditLogger: auditLogger,
		meter:       meter,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(BearerTokenMiddleware)
	r.Use(OriginMiddleware)

	// Health check
	r.Get("/healthz", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/check", h.Check)
		r.Get("/auth/identity", h.Identity)
		r.Get("/auth/permissions", h.Permissions)

		r.Post("/auth/can", h.Can)

		r.Get("/auth/active-role", h.GetActiveRole)
		r.Put("/auth/active-role", h.PutActiveRole)
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rulegate",
	})
}

// Login handles a login request. In local mode it establishes a session;
// in delegated mode it answers with the provider redirect.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in identity.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.resolver.Login(r.Context(), in)
	if h.meter != nil {
		h.meter.RecordLogin(r.Context(), "resolver", res.Success)
	}
	if !res.Success {
		respondJSON(w, http.StatusBadRequest, res)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// Logout destroys the session (local) or answers with the provider
// logout redirect (delegated).
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.resolver.Logout(r.Context())
	if !res.Success {
		respondJSON(w, http.StatusBadGateway, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Check reports whether the caller is authenticated.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.resolver.Check(r.Context()))
}

// Identity returns the current principal.
func (h *Handler) Identity(w http.ResponseWriter, r *http.Request) {
	p := h.resolver.Identity(r.Context())
	if p == nil {
		respondJSON(w, http.StatusUnauthorized, identity.Envelope{
			Logout:     true,
			RedirectTo: identity.LoginPath,
			Error:      "not authenticated",
		})
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Permissions returns the caller's roles.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	roles := h.resolver.Permissions(r.Context())
	if roles == nil {
		respondJSON(w, http.StatusUnauthorized, identity.Envelope{
			Logout:     true,
			RedirectTo: identity.LoginPath,
			Error:      "not authenticated",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// Can evaluates one access request and returns the decision. The
// endpoint never errors: malformed input yields a denial.
func (h *Handler) Can(w http.ResponseWriter, r *http.Request) {
	var in authz.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusOK, authz.Decision{Can: false, Reason: "invalid request body"})
		return
	}
	in.Origin = GetOrigin(r.Context())

	decision := h.engine.Can(r.Context(), in)
	if h.meter != nil {
		h.meter.RecordDecision(r.Context(), in.Resource, in.Action, decision.Can)
	}
	respondJSON(w, http.StatusOK, decision)
}

// GetActiveRole returns the caller's active role preference.
func (h *Handler) GetActiveRole(w http.ResponseWriter, r *http.Request) {
	role, ok := h.activeRole.Get(r.Context())
	if !ok {
		respondError(w, http.StatusNotFound, "no active role set")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"active_role": string(role)})
}

type putActiveRoleRequest struct {
	Role string `json:"role"`
}

// PutActiveRole switches the caller's active role. The target must be a
// role the authenticated principal actually holds.
func (h *Handler) PutActiveRole(w http.ResponseWriter, r *http.Request) {
	var req putActiveRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := principal.Role(req.Role)
	if !role.Valid() {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	p := h.resolver.Identity(r.Context())
	if p == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !p.HasRole(role) {
		respondError(w, http.StatusForbidden, "role not held by current user")
		return
	}

	if err := h.activeRole.Set(r.Context(), role); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist active role")
		return
	}

	if h.auditLogger != nil {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:     audit.TypeRoleSwitched,
			ActorID:  p.ID,
			Metadata: map[string]any{audit.AttrRoles: []string{string(role)}},
		})
	}

	respondJSON(w, http.StatusOK, map[string]string{"active_role": string(role)})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
