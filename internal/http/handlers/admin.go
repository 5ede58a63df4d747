package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

const defaultAdminLimit = 100

type AdminHandler struct {
	repo core.Repository
}

func NewAdminHandler(repo core.Repository) *AdminHandler {
	return &AdminHandler{repo: repo}
}

// Register monta la superficie admin. El router aplica RequireAdminKey.
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/v1/admin/accounts", h.accounts)
	r.Get("/v1/admin/events", h.events)
}

// GET /v1/admin/accounts?limit=N
func (h *AdminHandler) accounts(w http.ResponseWriter, r *http.Request) {
	accs, err := h.repo.ListAccounts(r.Context(), queryLimit(r))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accs})
}

// GET /v1/admin/events?limit=N
func (h *AdminHandler) events(w http.ResponseWriter, r *http.Request) {
	evs, err := h.repo.ListSecurityEvents(r.Context(), queryLimit(r))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evs})
}

func queryLimit(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultAdminLimit
}
