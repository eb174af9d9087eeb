package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mmcdole/letterplex/internal/domain"
	"github.com/mmcdole/letterplex/internal/letterboxd"
)

// MasterStore persists the accumulated snapshot of every exported watched movie.
// It is read once and rewritten in full once per run; there is no locking.
type MasterStore struct {
	path string
}

// NewMasterStore creates a store backed by the file at path
func NewMasterStore(path string) *MasterStore {
	return &MasterStore{path: path}
}

// Path returns the backing file path
func (s *MasterStore) Path() string {
	return s.path
}

// Load returns every record in the master file.
// A missing file is the initial state and yields an empty, non-nil slice.
func (s *MasterStore) Load() ([]domain.MovieRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.MovieRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open master file: %w", err)
	}
	defer f.Close()

	records, err := letterboxd.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse master file %s: %w", s.path, err)
	}
	if records == nil {
		records = []domain.MovieRecord{}
	}
	return records, nil
}

// Save overwrites the master file with records
func (s *MasterStore) Save(records []domain.MovieRecord) error {
	return letterboxd.WriteFile(s.path, records)
}
