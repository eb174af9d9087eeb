package service

import (
	"context"
)

const defaultChunkSize = 100

// fetchAll pages through a listing until the reported total is reached.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, int, error),
	chunkSize int,
	onProgress func(loaded, total int),
) ([]T, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var all []T
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := fetch(ctx, offset, chunkSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if onProgress != nil {
			onProgress(len(all), total)
		}

		if len(all) >= total || len(items) == 0 {
			break
		}
		offset += chunkSize
	}

	return all, nil
}

// progressThresholds returns the processed counts at which progress is reported:
// every 20% of total, truncated.
func progressThresholds(total int) map[int]struct{} {
	marks := make(map[int]struct{}, 5)
	for p := 20; p <= 100; p += 20 {
		marks[total*p/100] = struct{}{}
	}
	return marks
}
