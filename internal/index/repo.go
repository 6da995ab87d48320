package index

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultBranch is the branch the index's HEAD always points to.
const DefaultBranch = "master"

// ErrNotFound is returned by ReadFile when the requested path does not
// exist in the working tree.
var ErrNotFound = errors.New("index: not found")

var commitAuthor = object.Signature{
	Name:  "estuary",
	Email: "estuary@localhost",
}

// Repository wraps the on-disk, git-backed index repository behind a
// single process-wide exclusive lock: every mutation, and every read
// that must observe a consistent working tree, runs inside WithLock.
type Repository struct {
	mu   sync.Mutex
	dir  string
	repo *git.Repository
}

// Open opens the index repository at dir, initializing it with a single
// initial commit containing the given config.json contents if it does not
// yet exist. If the repository already exists, configContents is ignored
// and any partially-staged write from a crash between write and commit
// is discarded by resetting the worktree to HEAD.
func Open(dir string, configContents []byte) (*Repository, error) {
	repo, err := git.PlainOpen(dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("index: creating %s: %w", dir, err)
		}
		repo, err = git.PlainInitWithOptions(dir, &git.PlainInitOptions{
			InitOptions: config.InitOptions{
				DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("index: initializing repository: %w", err)
		}
		if err := commitFile(repo, "config.json", configContents, "Initial commit"); err != nil {
			return nil, fmt.Errorf("index: writing initial config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("index: opening repository at %s: %w", dir, err)
	}

	r := &Repository{dir: dir, repo: repo}
	if err := r.recoverWorktree(); err != nil {
		return nil, err
	}
	return r, nil
}

// recoverWorktree resets the working tree to HEAD, discarding any write
// that was staged but never committed.
func (r *Repository) recoverWorktree() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("index: worktree: %w", err)
	}
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("index: resolving HEAD: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: head.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("index: recovering worktree: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the repository's exclusive lock, passing
// it the underlying go-git repository. Callers needing more than
// CommitFile/ReadFile — notably the transport server, which must read a
// consistent object store for the duration of packfile construction — use
// this directly.
func (r *Repository) WithLock(fn func(repo *git.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.repo)
}

// CommitFile writes contents to relPath in the working tree, stages it,
// and commits it to the default branch under the lock. The commit is
// reachable from the default ref before CommitFile returns.
func (r *Repository) CommitFile(relPath string, contents []byte, message string) error {
	return r.WithLock(func(repo *git.Repository) error {
		return commitFile(repo, relPath, contents, message)
	})
}

func commitFile(repo *git.Repository, relPath string, contents []byte, message string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("index: worktree: %w", err)
	}

	if dir := filepath.Dir(relPath); dir != "." {
		if err := wt.Filesystem.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("index: mkdir %s: %w", dir, err)
		}
	}

	f, err := wt.Filesystem.Create(relPath)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", relPath, err)
	}
	if _, err := f.Write(contents); err != nil {
		f.Close()
		return fmt.Errorf("index: write %s: %w", relPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("index: close %s: %w", relPath, err)
	}

	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("index: stage %s: %w", relPath, err)
	}

	sig := commitAuthor
	sig.When = time.Now()
	if _, err := wt.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig}); err != nil {
		return fmt.Errorf("index: commit %s: %w", relPath, err)
	}
	return nil
}

// ReadFile returns the contents of relPath in the working tree, or
// ErrNotFound if it does not exist.
func (r *Repository) ReadFile(relPath string) ([]byte, error) {
	var out []byte
	err := r.WithLock(func(repo *git.Repository) error {
		b, err := readFile(repo, relPath)
		out = b
		return err
	})
	return out, err
}

func readFile(repo *git.Repository, relPath string) ([]byte, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("index: worktree: %w", err)
	}
	f, err := wt.Filesystem.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("index: read %s: %w", relPath, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", relPath, err)
	}
	return b, nil
}
