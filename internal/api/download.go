package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/gorilla/mux"

	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/errcode"
	"github.com/onelson/estuary/internal/manifest"
)

// downloadHandler implements GET /api/v1/crates/{name}/{vers}/download:
// it streams the artifact bytes straight off disk. name and vers are
// validated before they ever touch the filesystem since both come from
// the URL path.
func (app *App) downloadHandler(w http.ResponseWriter, r *http.Request) {
	logger := dcontext.GetLogger(r.Context())
	vars := mux.Vars(r)
	name, vers := vars["name"], vars["vers"]

	if !manifest.ValidName(name) {
		_ = errcode.ServeJSON(w, errcode.ErrorCodeNotFound.WithMessage(
			fmt.Sprintf("crate `%s` does not exist", name)))
		return
	}
	if _, err := semver.NewVersion(vers); err != nil {
		_ = errcode.ServeJSON(w, errcode.ErrorCodeNotFound.WithMessage(
			fmt.Sprintf("crate `%s#%s` does not exist", name, vers)))
		return
	}

	path := filepath.Join(app.Orchestrator.CrateDir, name, vers, fmt.Sprintf("%s-%s.crate", name, vers))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			_ = errcode.ServeJSON(w, errcode.ErrorCodeNotFound.WithMessage(
				fmt.Sprintf("crate `%s#%s` does not exist", name, vers)))
			return
		}
		logger.WithError(err).Error("download: opening artifact")
		_ = errcode.ServeJSON(w, errcode.ErrorCodeIOFailure.WithMessage(""))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.WithError(err).Error("download: statting artifact")
		_ = errcode.ServeJSON(w, errcode.ErrorCodeIOFailure.WithMessage(""))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}
