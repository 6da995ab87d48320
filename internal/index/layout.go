// Package index owns the on-disk, git-backed package index: the
// per-package metadata log files, their canonical layout, and the
// version-control repository that makes mutations durable and ordered.
package index

import (
	"fmt"
	"path"
	"strings"
)

// Path computes the canonical in-repo path for a package named name,
// following the client's bucketing scheme:
//
//	len 1   -> "1/n"
//	len 2   -> "2/n"
//	len 3   -> "3/n[0]/n"
//	len >=4 -> "n[0:2]/n[2:4]/n"
//
// Matching is case-insensitive: the path always uses the lowercased name,
// while the Index Record's own "name" field retains the caller's casing.
func Path(name string) (string, error) {
	n := strings.ToLower(name)
	switch l := len(n); {
	case l == 0:
		return "", fmt.Errorf("index: empty package name")
	case l == 1:
		return path.Join("1", n), nil
	case l == 2:
		return path.Join("2", n), nil
	case l == 3:
		return path.Join("3", n[:1], n), nil
	default:
		return path.Join(n[0:2], n[2:4], n), nil
	}
}
