// Package transport serves the read-only subset of the smart git HTTP
// protocol the client needs to clone and fetch the package index: the
// info/refs capability advertisement and a trivial upload-pack that
// always answers NAK and streams the whole repository as a packfile.
// Commit and tree objects come from go-git; the wire framing comes from
// the pktline package.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/packfile"

	"github.com/onelson/estuary/internal/dcontext"
	"github.com/onelson/estuary/internal/index"
	"github.com/onelson/estuary/internal/metrics"
	"github.com/onelson/estuary/internal/transport/pktline"
)

// capabilities advertised to the client. No write capability is ever
// advertised — the server rejects receive-pack entirely (it is not
// routed).
const capabilities = "multi_ack side-band-64k ofs-delta symref=HEAD:refs/heads/" + index.DefaultBranch

// Server serves the smart transport endpoints over a single index
// repository.
type Server struct {
	Index *index.Repository
}

// InfoRefs handles GET .../info/refs?service=git-upload-pack.
func (s *Server) InfoRefs(w http.ResponseWriter, r *http.Request) {
	logger := dcontext.GetLogger(r.Context())

	if service := r.URL.Query().Get("service"); service != "git-upload-pack" {
		http.Error(w, "only git-upload-pack is supported", http.StatusForbidden)
		return
	}

	err := s.Index.WithLock(func(repo *git.Repository) error {
		head, err := repo.Head()
		if err != nil {
			return fmt.Errorf("transport: resolving HEAD: %w", err)
		}

		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		w.WriteHeader(http.StatusOK)

		if err := pktline.WriteLine(w, "# service=git-upload-pack\n"); err != nil {
			return err
		}
		if err := pktline.WriteFlush(w); err != nil {
			return err
		}
		if err := pktline.WriteLine(w, fmt.Sprintf("%s HEAD\x00%s\n", head.Hash().String(), capabilities)); err != nil {
			return err
		}
		if err := pktline.WriteLine(w, fmt.Sprintf("%s refs/heads/%s\n", head.Hash().String(), index.DefaultBranch)); err != nil {
			return err
		}
		return pktline.WriteFlush(w)
	})
	if err != nil {
		logger.WithError(err).Error("transport: info/refs failed")
	}
}

// uploadPackRequest is the parsed subset of the client's upload-pack
// request body this server acts on: the set of wanted commit hashes. have
// lines are read but otherwise ignored — negotiation is trivial, the
// server always answers NAK and sends the full pack.
type uploadPackRequest struct {
	wants []plumbing.Hash
}

func parseUploadPackRequest(body []byte) (*uploadPackRequest, error) {
	scanner := pktline.NewScanner(bytes.NewReader(body))
	req := &uploadPackRequest{}
	seen := make(map[plumbing.Hash]bool)

	for {
		payload, flush, err := scanner.Next()
		if err == io.EOF {
			return req, nil
		}
		if err != nil {
			return nil, fmt.Errorf("transport: malformed upload-pack request: %w", err)
		}
		if flush {
			continue
		}

		line := strings.TrimRight(string(payload), "\n")
		switch {
		case strings.HasPrefix(line, "want "):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("transport: malformed want line %q", line)
			}
			h := plumbing.NewHash(fields[1])
			if !seen[h] {
				seen[h] = true
				req.wants = append(req.wants, h)
			}
		case strings.HasPrefix(line, "shallow "):
			// Shallow clones are not supported; the server always answers
			// with full history regardless of shallow hints.
		case line == "done":
			return req, nil
		case strings.HasPrefix(line, "have "):
			// Trivial negotiation: haves are acknowledged implicitly by
			// sending the full pack, never consulted for a delta.
		}
	}
}

// UploadPack handles POST .../git-upload-pack.
func (s *Server) UploadPack(w http.ResponseWriter, r *http.Request) {
	logger := dcontext.GetLogger(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "error reading request body", http.StatusBadRequest)
		return
	}

	req, err := parseUploadPackRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
	w.WriteHeader(http.StatusOK)
	metrics.ObserveUploadPack()

	err = s.Index.WithLock(func(repo *git.Repository) error {
		for _, want := range req.wants {
			if _, err := repo.Storer.EncodedObject(plumbing.AnyObject, want); err != nil {
				return fmt.Errorf("transport: want %s not reachable: %w", want.String(), err)
			}
		}

		if err := pktline.WriteLine(w, "NAK\n"); err != nil {
			return err
		}

		packBand := pktline.NewSidebandWriter(w, pktline.BandPack)
		if err := writePackfile(repo, packBand); err != nil {
			return err
		}

		return pktline.WriteFlush(w)
	})
	if err != nil {
		logger.WithError(err).Error("transport: upload-pack failed")
		errBand := pktline.NewSidebandWriter(w, pktline.BandError)
		_, _ = errBand.Write([]byte(err.Error()))
		_ = pktline.WriteFlush(w)
	}
}

// writePackfile streams every object the repository's object store holds
// into w as a single packfile. The index repository never prunes and
// never branches, so every stored object is reachable from HEAD — there
// is no unreachable garbage to exclude, and no need to walk history from
// the client's wants to decide what to send.
func writePackfile(repo *git.Repository, w io.Writer) error {
	iter, err := repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return fmt.Errorf("transport: listing objects: %w", err)
	}
	defer iter.Close()

	var hashes []plumbing.Hash
	err = iter.ForEach(func(o plumbing.EncodedObject) error {
		hashes = append(hashes, o.Hash())
		return nil
	})
	if err != nil {
		return fmt.Errorf("transport: listing objects: %w", err)
	}

	enc := packfile.NewEncoder(w, repo.Storer, false)
	if _, err := enc.Encode(hashes, 10); err != nil {
		return fmt.Errorf("transport: encoding packfile: %w", err)
	}
	return nil
}
