// Package reports discovers scan report artifacts on disk. The scanner
// writes one directory per scanned account, named by the twelve digit
// account id, with an index.html entry point.
package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/screenerhq/scan-server/internal/errors"
)

// Report is a generated report for a single account.
type Report struct {
	AccountID string    `json:"account_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Store locates report artifacts under a fixed root directory.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// List returns every discoverable report, newest first. A missing root
// directory yields an empty list, not an error.
func (s *Store) List() ([]Report, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading report directory %q", s.root)
	}

	var reports []Report
	for _, entry := range entries {
		if !entry.IsDir() || !isDigits(entry.Name()) {
			continue
		}
		info, err := os.Stat(filepath.Join(s.root, entry.Name(), "index.html"))
		if err != nil {
			continue
		}
		reports = append(reports, Report{
			AccountID: entry.Name(),
			Path:      fmt.Sprintf("/reports/%s/index.html", entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// Resolve maps an account id and a report-relative file path to a path on
// disk, refusing traversal outside the account's report directory.
func (s *Store) Resolve(accountID, file string) (string, error) {
	if !isDigits(accountID) {
		return "", errors.Wrapf(errors.ErrNotFound, "invalid account id %q", accountID)
	}

	accountDir := filepath.Join(s.root, accountID)
	full := filepath.Join(accountDir, filepath.FromSlash(file))
	rel, err := filepath.Rel(accountDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrNotFound, "report path %q escapes report root", file)
	}

	if _, err := os.Stat(full); err != nil {
		return "", errors.Wrapf(errors.ErrNotFound, "report file %q", file)
	}
	return full, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
