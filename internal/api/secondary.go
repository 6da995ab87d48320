package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// searchHandler implements GET /api/v1/crates?q=&per_page=. No search
// index is part of the core; it always reports zero results, which is
// sufficient for the client's resolver probing.
func (app *App) searchHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"crates": []any{},
		"meta":   map[string]any{"total": 0},
	})
}

// ownersGetHandler implements GET /api/v1/crates/{name}/owners.
func (app *App) ownersGetHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"users": []any{}})
}

// ownersMutateHandler implements PUT and DELETE
// /api/v1/crates/{name}/owners. Ownership is not modeled by the core, so
// both verbs succeed unconditionally.
func (app *App) ownersMutateHandler(verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		writeJSON(w, map[string]any{
			"ok":  true,
			"msg": fmt.Sprintf("owners %s to %s", verb, name),
		})
	}
}

// meHandler implements GET /me: a stub whose exact shape the client does
// not care about; any HTML body suffices.
func (app *App) meHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!doctype html><html><body><p>estuary</p></body></html>"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
