package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/errcode"
	"github.com/onelson/estuary/internal/index"
)

// yankHandler implements both DELETE .../yank and PUT .../unyank; which
// one depends on yanked.
func (app *App) yankHandler(yanked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := dcontext.GetLogger(ctx)
		vars := mux.Vars(r)
		name, vers := vars["name"], vars["vers"]

		if !requireAuthorizationHeader(w, r) {
			return
		}

		err := app.Index.SetYanked(name, vers, yanked)
		if err != nil {
			if errors.Is(err, index.ErrRecordNotFound) {
				_ = errcode.ServeJSON(w, errcode.ErrorCodeNotFound.WithMessage(
					fmt.Sprintf("crate `%s#%s` does not exist", name, vers)))
				return
			}
			logger.WithError(err).Error("yank/unyank failed")
			_ = errcode.ServeJSON(w, errcode.ErrorCodeVCSFailure.WithMessage(""))
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}
