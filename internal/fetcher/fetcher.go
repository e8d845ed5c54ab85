package fetcher

import "context"

// Fetcher retrieves the raw HTML of a product page.
type Fetcher interface {
	// Fetch performs a single GET of the given URL and returns the
	// response body. No retries: the caller decides whether to resubmit.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
