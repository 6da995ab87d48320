package manifest

import (
	"github.com/opencontainers/go-digest"

	"github.com/onelson/estuary/internal/index"
)

// Translate converts m into the index.Record that is appended to the
// package's index file, computing cksum as the lowercase hex SHA-256 of
// artifact. m must already have passed Validate.
//
// The rename flattening is mandatory: when a dependency declares an
// explicit_name_in_toml, the record's "name" becomes the rename and
// "package" carries the manifest's original crate name — the client
// relies on this swap during resolution.
func Translate(m *Manifest, artifact []byte) index.Record {
	cksum := digest.FromBytes(artifact).Encoded()

	deps := make([]index.Dependency, 0, len(m.Deps))
	for _, d := range m.Deps {
		rec := index.Dependency{
			Name:            d.Name,
			Req:             d.VersionReq,
			Features:        d.Features,
			Optional:        d.Optional,
			DefaultFeatures: d.DefaultFeatures,
			Target:          d.Target,
			Kind:            d.Kind,
			Registry:        d.Registry,
		}
		if d.ExplicitNameInToml != nil {
			original := d.Name
			rec.Name = *d.ExplicitNameInToml
			rec.Package = &original
		}
		deps = append(deps, rec)
	}

	return index.Record{
		Name:     m.Name,
		Vers:     m.Vers,
		Deps:     deps,
		Cksum:    cksum,
		Features: m.Features,
		Yanked:   false,
		Links:    m.Links,
	}
}
