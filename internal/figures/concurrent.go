package figures

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ExtractFromPagesConcurrent is ExtractFromPages sharded by page across at
// most workers goroutines. Pages share no state, so the concatenated result
// matches the sequential order exactly. It returns ctx.Err() if the context
// is cancelled before all pages are done.
func (e *Extractor) ExtractFromPagesConcurrent(ctx context.Context, pages []Page, source string, workers int,
) ([]ExtractedNumber, error) {
	if workers < 1 {
		workers = 1
	}

	perPage := make([][]ExtractedNumber, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perPage[i] = e.ExtractPage(pages[i], source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range perPage {
		total += len(r)
	}
	results := make([]ExtractedNumber, 0, total)
	for _, r := range perPage {
		results = append(results, r...)
	}
	return results, nil
}
