package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/index"
	"github.com/onelson/estuary/internal/manifest"
)

// ErrArtifactExists is returned when the target artifact file already
// exists on disk but the index does not record it — a stale artifact
// left for operator resolution.
var ErrArtifactExists = fmt.Errorf("publish: artifact already exists")

// Orchestrator processes PUT /api/v1/crates/new end-to-end: decode the
// envelope and validate the manifest before taking the index repository's
// lock, then check for the version, write the artifact, append the index
// entry, and commit — all under that lock.
type Orchestrator struct {
	CrateDir string
	Index    *index.Repository
}

// Publish runs the full publish pipeline over body, the raw bytes of the
// client's PUT request, and returns the manifest that was published.
func (o *Orchestrator) Publish(ctx context.Context, body []byte) (*manifest.Manifest, error) {
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Parse(env.ManifestJSON)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rec := manifest.Translate(m, env.Artifact)
	artifactPath := o.artifactPath(m.Name, m.Vers)

	logger := dcontext.GetLogger(ctx)

	err = o.Index.WithLockedIndex(func(tx *index.Tx) error {
		existing, err := tx.Load(m.Name)
		if err != nil {
			return err
		}
		if index.Find(existing, m.Vers) >= 0 {
			return index.ErrVersionExists
		}

		if err := writeArtifact(artifactPath, env.Artifact); err != nil {
			return err
		}

		if err := tx.Append(rec); err != nil {
			logger.WithError(err).Errorf("publish: artifact for %s %s written but index append failed; artifact is now orphaned", m.Name, m.Vers)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (o *Orchestrator) artifactPath(name, vers string) string {
	return filepath.Join(o.CrateDir, name, vers, fmt.Sprintf("%s-%s.crate", name, vers))
}

// writeArtifact writes contents to path, creating parent directories, and
// fails with ErrArtifactExists if the target already exists.
func writeArtifact(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("publish: creating artifact directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrArtifactExists
		}
		return fmt.Errorf("publish: creating artifact: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(contents); err != nil {
		return fmt.Errorf("publish: writing artifact: %w", err)
	}
	return nil
}
