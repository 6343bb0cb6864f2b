package result

import "context"

// Repository reads scraper-produced result documents. Writes belong to the
// scraping system, not this service.
type Repository interface {
	// GetByKey returns the document and true, or false when no document
	// exists for the key.
	GetByKey(ctx context.Context, key string) (*Document, bool, error)
}
