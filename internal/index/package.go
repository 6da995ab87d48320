package index

import (
	"bytes"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrVersionExists is returned when (name, vers) is already present in
// the package's index file.
var ErrVersionExists = fmt.Errorf("index: version already exists")

// ErrRecordNotFound is returned when a yank/unyank target is not present
// in the index.
var ErrRecordNotFound = fmt.Errorf("index: record not found")

// Load returns the parsed records for package name under the repository
// lock, or an empty slice if the package has never been published.
func (r *Repository) Load(name string) ([]Record, error) {
	var out []Record
	err := r.WithLock(func(repo *git.Repository) error {
		recs, err := loadFromRepo(repo, name)
		out = recs
		return err
	})
	return out, err
}

// Append adds rec as a new line in the package file for rec.Name and
// commits it with the client's conventional "Updating {name}" message,
// all under a single lock acquisition. It fails with ErrVersionExists if
// (rec.Name, rec.Vers) is already present.
func (r *Repository) Append(rec Record) error {
	return r.WithLock(func(repo *git.Repository) error {
		return appendToRepo(repo, rec)
	})
}

// SetYanked toggles the yanked flag on the (name, vers) record and
// commits the result with the client's "Yanking {name} {vers}" or
// "Unyanking {name} {vers}" message. If the file is byte-identical
// after the toggle, the commit is skipped.
func (r *Repository) SetYanked(name, vers string, yanked bool) error {
	return r.WithLock(func(repo *git.Repository) error {
		return setYankedInRepo(repo, name, vers, yanked)
	})
}

// WithLockedIndex runs fn with access to the repository-scoped Load and
// Append primitives under a single lock acquisition, for callers (the
// publish orchestrator) that must interleave a non-git side effect —
// writing the artifact to the crate directory — between the read and the
// append within the same locked section.
func (r *Repository) WithLockedIndex(fn func(tx *Tx) error) error {
	return r.WithLock(func(repo *git.Repository) error {
		return fn(&Tx{repo: repo})
	})
}

// Tx is the repository access handed to WithLockedIndex's callback: the
// same Load/Append operations, already inside the lock.
type Tx struct {
	repo *git.Repository
}

// Load returns the parsed records for package name.
func (tx *Tx) Load(name string) ([]Record, error) {
	return loadFromRepo(tx.repo, name)
}

// Append adds rec to its package's index file.
func (tx *Tx) Append(rec Record) error {
	return appendToRepo(tx.repo, rec)
}

func loadFromRepo(repo *git.Repository, name string) ([]Record, error) {
	p, err := Path(name)
	if err != nil {
		return nil, err
	}
	contents, err := readFile(repo, p)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return ParseFile(contents)
}

func appendToRepo(repo *git.Repository, rec Record) error {
	p, err := Path(rec.Name)
	if err != nil {
		return err
	}

	existing, err := loadFromRepo(repo, rec.Name)
	if err != nil {
		return err
	}
	if Find(existing, rec.Vers) >= 0 {
		return ErrVersionExists
	}

	records := append(existing, rec)
	contents, err := EncodeFile(records)
	if err != nil {
		return err
	}

	return commitFile(repo, p, contents, fmt.Sprintf("Updating %s", rec.Name))
}

func setYankedInRepo(repo *git.Repository, name, vers string, yanked bool) error {
	p, err := Path(name)
	if err != nil {
		return err
	}

	records, err := loadFromRepo(repo, name)
	if err != nil {
		return err
	}
	idx := Find(records, vers)
	if idx < 0 {
		return ErrRecordNotFound
	}

	before, err := EncodeFile(records)
	if err != nil {
		return err
	}

	records[idx].Yanked = yanked
	after, err := EncodeFile(records)
	if err != nil {
		return err
	}

	if bytes.Equal(before, after) {
		return nil
	}

	verb := "Unyanking"
	if yanked {
		verb = "Yanking"
	}
	return commitFile(repo, p, after, fmt.Sprintf("%s %s %s", verb, name, vers))
}
