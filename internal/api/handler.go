package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfcabral/rulegate/internal/compiler"
	"github.com/mfcabral/rulegate/internal/engine"
	"github.com/mfcabral/rulegate/internal/fact"
	"github.com/mfcabral/rulegate/internal/feed"
	"github.com/mfcabral/rulegate/internal/mailer"
	"github.com/mfcabral/rulegate/internal/metrics"
	"github.com/mfcabral/rulegate/internal/ollama"
	"github.com/mfcabral/rulegate/internal/rule"
	"github.com/mfcabral/rulegate/internal/store"
)

// healthProber is the slice of the ollama client the health endpoint needs.
type healthProber interface {
	Healthy(ctx context.Context) bool
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	store    store.Store
	engine   *engine.Engine
	compiler *compiler.Compiler
	feed     *feed.Feed
	mailer   *mailer.Mailer
	prober   healthProber
}

// New creates the router with all routes registered.
func New(st store.Store, eng *engine.Engine, comp *compiler.Compiler, fd *feed.Feed, ml *mailer.Mailer, prober healthProber) http.Handler {
	h := &Handler{store: st, engine: eng, compiler: comp, feed: fd, mailer: ml, prober: prober}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/rules", h.createRule)
	r.Get("/rules", h.listRules)
	r.Delete("/rules/{id}", h.deleteRule)
	r.Post("/rules/evaluate", h.evaluate)
	r.Post("/rules/generate/json", h.generateRule)
	r.Get("/notifications", h.listNotifications)

	r.Post("/email/config", h.configureEmail)
	r.Get("/email/status", h.emailStatus)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// POST /rules — create a rule. An existing id is rejected, never replaced.
func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	var ru rule.Rule
	if err := json.NewDecoder(r.Body).Decode(&ru); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := ru.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Create(r.Context(), &ru); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateID):
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("rule %q already exists", ru.ID))
		default:
			writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.RulesCreated.Inc()
	writeMessage(w, http.StatusCreated, fmt.Sprintf("rule %q created", ru.ID))
}

// GET /rules — all rules in creation order.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.List(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rules == nil {
		rules = []*rule.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// DELETE /rules/{id} — a second delete of the same id reports 404.
func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("rule %q not found", id))
		default:
			writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("rule %q deleted", id))
}

type evaluateRequest struct {
	Facts fact.Snapshot `json:"facts"`
}

// POST /rules/evaluate — run one pass now. The optional body overlays facts
// for this pass only. 409 while a pass is already running.
func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	res, err := h.engine.Evaluate(r.Context(), req.Facts)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBusy):
			writeMessage(w, http.StatusConflict, err.Error())
		default:
			writeMessage(w, http.StatusInternalServerError, "evaluation could not run: "+err.Error())
		}
		return
	}
	writeMessage(w, http.StatusOK, res.Summary())
}

// POST /rules/generate/json — compile a natural-language instruction into a
// rule and store it. The instruction arrives as a form field.
func (h *Handler) generateRule(w http.ResponseWriter, r *http.Request) {
	instruction := r.FormValue("instruction")
	if instruction == "" {
		writeMessage(w, http.StatusBadRequest, "form field \"instruction\" is required")
		return
	}

	ru, err := h.compiler.Compile(r.Context(), instruction)
	if err != nil {
		var ce *compiler.CompilationError
		switch {
		case errors.As(err, &ce):
			writeMessage(w, http.StatusUnprocessableEntity, ce.Error())
		case errors.Is(err, ollama.ErrUnavailable):
			writeMessage(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := h.store.Create(r.Context(), ru); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateID):
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("compiled rule id %q already exists", ru.ID))
		default:
			writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.RulesCreated.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("rule %q compiled and created", ru.ID),
		"rule":    ru,
	})
}

// GET /notifications — messages in creation order, newest last.
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries := h.feed.List(limit)
	msgs := make([]string, len(entries))
	for i, n := range entries {
		msgs[i] = n.Message
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": msgs})
}

// POST /email/config — configure the SMTP sink.
func (h *Handler) configureEmail(w http.ResponseWriter, r *http.Request) {
	var cfg mailer.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.mailer.Configure(cfg); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"configured": true})
}

// GET /email/status
func (h *Handler) emailStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"configured": h.mailer.Configured()})
}

// GET /healthz — always 200; collaborator reachability is advisory.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ollamaUp := false
	if h.prober != nil {
		ollamaUp = h.prober.Healthy(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ollama": ollamaUp,
	})
}
