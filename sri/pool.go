package sri

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// RunAll runs p for every url with at most parallelism
// fetches in flight. Results keep the order of urls; a
// failed url leaves a zero Result and contributes to the
// joined error.
func RunAll(
	ctx context.Context,
	p *Pipeline,
	urls []string,
	parallelism int,
) ([]Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	slog.Debug(
		"computing integrity values",
		"count", len(urls),
		"parallelism", parallelism,
	)

	results := make([]Result, len(urls))

	var wg sync.WaitGroup

	// Indexed like urls so the joined error keeps input order.
	errs := make([]error, len(urls))

	sem := make(chan struct{}, parallelism)

	for idx, url := range urls {
		if ctx.Err() != nil {
			errs[idx] = ctx.Err()

			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, url string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := p.Run(ctx, url)
			if err != nil {
				errs[idx] = err

				return
			}

			results[idx] = res
		}(idx, url)
	}

	wg.Wait()

	return results, errors.Join(errs...)
}
