package service

import "github.com/mmcdole/letterplex/internal/domain"

// Diff returns the watched records of current that are new or re-rated
// relative to master, in the order of current.
//
// The diff is one-directional: titles present in master but missing from
// current are never reported. Since the next master is rebuilt from current,
// such titles silently drop out of it.
func Diff(current, master []domain.MovieRecord) []domain.MovieRecord {
	known := make(map[domain.RecordKey]domain.MovieRecord, len(master))
	for _, m := range master {
		if m.Watched() {
			known[m.Key()] = m
		}
	}

	var changes []domain.MovieRecord
	for _, rec := range current {
		if !rec.Watched() {
			continue
		}
		prev, ok := known[rec.Key()]
		if !ok || prev.Rating != rec.Rating {
			changes = append(changes, rec)
		}
	}
	return changes
}
