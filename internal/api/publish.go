package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/errcode"
	"github.com/onelson/estuary/internal/index"
	"github.com/onelson/estuary/internal/manifest"
	"github.com/onelson/estuary/internal/metrics"
	"github.com/onelson/estuary/internal/publish"
)

// publishHandler implements PUT /api/v1/crates/new.
func (app *App) publishHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := dcontext.GetLogger(ctx)

	if !requireAuthorizationHeader(w, r) {
		metrics.ObservePublish(errcode.ErrorCodeUnauthorized.Descriptor().Value)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.WithError(err).Error("publish: reading request body")
		metrics.ObservePublish(errcode.ErrorCodeIOFailure.Descriptor().Value)
		_ = errcode.ServeJSON(w, errcode.ErrorCodeIOFailure.WithMessage(""))
		return
	}

	m, err := app.Orchestrator.Publish(ctx, body)
	if err != nil {
		code, message := classifyPublishError(err)
		metrics.ObservePublish(code.Descriptor().Value)
		logger.WithError(err).Warn("publish rejected")
		_ = errcode.ServeJSON(w, code.WithMessage(message))
		return
	}

	metrics.ObservePublish("success")
	logger.Infof("published %s %s", m.Name, m.Vers)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}

// classifyPublishError maps an error from the publish pipeline to the
// client-visible error code and detail message.
func classifyPublishError(err error) (errcode.Code, string) {
	var verr *manifest.ValidationError
	switch {
	case errors.As(err, &verr):
		return errcode.ErrorCodeManifestInvalid, verr.Error()
	case errors.Is(err, publish.ErrEnvelopeTruncated):
		return errcode.ErrorCodeEnvelopeTruncated, ""
	case errors.Is(err, publish.ErrEnvelopeTrailingGarbage):
		return errcode.ErrorCodeEnvelopeTrailingGarbage, ""
	case errors.Is(err, index.ErrVersionExists):
		return errcode.ErrorCodeVersionExists, ""
	case errors.Is(err, publish.ErrArtifactExists):
		return errcode.ErrorCodeArtifactExists, ""
	default:
		return errcode.ErrorCodeIOFailure, ""
	}
}
