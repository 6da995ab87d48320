// Package api wires the registry's HTTP surface onto the publish
// orchestrator, the index, and the smart transport server, in the shape
// of the registry's registry/handlers.App: one router, one set of
// request-scoped handlers, shared state on the App.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/onelson/estuary/internal/configuration"
	"github.com/onelson/estuary/internal/index"
	"github.com/onelson/estuary/internal/publish"
	"github.com/onelson/estuary/internal/transport"
)

// App is the registry's top-level HTTP application. It is safe for
// concurrent use: its own state is read-only after construction, and all
// mutable state lives behind index.Repository's lock.
type App struct {
	Config       *configuration.Configuration
	Index        *index.Repository
	Orchestrator *publish.Orchestrator
	Transport    *transport.Server

	router *mux.Router
}

// NewApp constructs an App ready to serve requests.
func NewApp(cfg *configuration.Configuration, idx *index.Repository) *App {
	app := &App{
		Config: cfg,
		Index:  idx,
		Orchestrator: &publish.Orchestrator{
			CrateDir: cfg.CrateDir,
			Index:    idx,
		},
		Transport: &transport.Server{Index: idx},
	}

	app.router = mux.NewRouter()
	app.routes()

	return app
}

// ServeHTTP implements http.Handler.
func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}
