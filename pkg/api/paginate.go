package api

import (
	"context"
)

// Page is one page of a paginated listing.
type Page struct {
	Results    []map[string]any
	HasMore    bool
	NextCursor string
}

// PageOf extracts the pagination fields of a list response.
func PageOf(data map[string]any) Page {
	p := Page{
		Results: Objects(data["results"]),
	}
	p.HasMore, _ = data["has_more"].(bool)
	p.NextCursor, _ = data["next_cursor"].(string)
	return p
}

// Objects returns the JSON objects in a decoded array, skipping any other
// values.
func Objects(v any) []map[string]any {
	items, _ := v.([]any)
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

// PageFetcher fetches the page starting at cursor. The first call receives an
// empty cursor.
type PageFetcher func(ctx context.Context, cursor string) (map[string]any, error)

// Paginate follows next_cursor until has_more is false and returns all
// results in order.
func Paginate(ctx context.Context, fetch PageFetcher) ([]map[string]any, error) {
	all := []map[string]any{}
	cursor := ""
	for {
		data, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}

		page := PageOf(data)
		all = append(all, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}
