package match

import "context"

// PageRequest selects one page of matches for one tenant, starting at Since
// (inclusive, ISO-8601 local date-time as the provider expects it).
type PageRequest struct {
	TenantID string
	Since    string
	Page     int
	Size     int
}

// Source is the live, paginated upstream of raw match documents.
type Source interface {
	FetchPage(ctx context.Context, req PageRequest) ([]RawMatch, error)
}
