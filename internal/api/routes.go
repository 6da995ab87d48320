package api

import (
	"net/http"

	"github.com/onelson/estuary/internal/dcontext"
)

// routes registers every endpoint of the registry's HTTP surface onto
// app.router.
func (app *App) routes() {
	withContext := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := dcontext.WithRequest(r.Context(), r)
			h(w, r.WithContext(ctx))
		}
	}

	v1 := app.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/crates/new", withContext(app.publishHandler)).Methods(http.MethodPut)
	v1.HandleFunc("/crates/{name}/{vers}/yank", withContext(app.yankHandler(true))).Methods(http.MethodDelete)
	v1.HandleFunc("/crates/{name}/{vers}/unyank", withContext(app.yankHandler(false))).Methods(http.MethodPut)
	v1.HandleFunc("/crates/{name}/{vers}/download", withContext(app.downloadHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/crates", withContext(app.searchHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/crates/{name}/owners", withContext(app.ownersGetHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/crates/{name}/owners", withContext(app.ownersMutateHandler("added"))).Methods(http.MethodPut)
	v1.HandleFunc("/crates/{name}/owners", withContext(app.ownersMutateHandler("removed"))).Methods(http.MethodDelete)

	app.router.HandleFunc("/me", withContext(app.meHandler)).Methods(http.MethodGet)

	app.router.HandleFunc("/git/index/info/refs", withContext(app.Transport.InfoRefs)).Methods(http.MethodGet)
	app.router.HandleFunc("/git/index/git-upload-pack", withContext(app.Transport.UploadPack)).Methods(http.MethodPost)
}
