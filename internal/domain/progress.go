package domain

// Progress reports how far history collection has come.
type Progress struct {
	Processed int // Titles processed successfully so far
	Total     int // Titles listed by the server
}

// Percent returns the completion percentage (0-100)
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// ProgressObserver receives progress updates during history collection.
type ProgressObserver interface {
	OnProgress(progress Progress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(Progress) {}
