package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/letterplex/internal/domain"
)

// Bucket names
var (
	bucketRuns = []byte("runs")
)

// DefaultJournalRetention is the number of runs kept when none is configured
const DefaultJournalRetention = 100

// Journal records the outcome of each export run in BoltDB.
// Keys are UTC start times, so cursor order is chronological.
type Journal struct {
	db        *bolt.DB
	retention int
}

// OpenJournal opens (or creates) the journal database at path.
// retention <= 0 uses DefaultJournalRetention.
func OpenJournal(path string, retention int) (*Journal, error) {
	if retention <= 0 {
		retention = DefaultJournalRetention
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, retention: retention}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// runKeyLayout is fixed width so byte order matches time order
const runKeyLayout = "2006-01-02T15:04:05.000000000Z"

func runKey(startedAt time.Time) []byte {
	return []byte(startedAt.UTC().Format(runKeyLayout))
}

// Record stores a run summary and prunes runs beyond the retention limit
func (j *Journal) Record(run domain.RunSummary) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if err := b.Put(runKey(run.StartedAt), data); err != nil {
			return err
		}

		c := b.Cursor()
		count := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}

		// Oldest keys come first; drop them until within retention
		excess := count - j.retention
		for k, _ := c.First(); k != nil && excess > 0; k, _ = c.First() {
			if err := b.Delete(k); err != nil {
				return err
			}
			excess--
		}
		return nil
	})
}

// Last returns the most recent run, if any
func (j *Journal) Last() (domain.RunSummary, bool, error) {
	runs, err := j.Recent(1)
	if err != nil || len(runs) == 0 {
		return domain.RunSummary{}, false, err
	}
	return runs[0], true, nil
}

// Recent returns up to n runs, newest first
func (j *Journal) Recent(n int) ([]domain.RunSummary, error) {
	var runs []domain.RunSummary
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil && len(runs) < n; k, v = c.Prev() {
			var run domain.RunSummary
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("corrupt journal entry %s: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}
