package api

import (
	"context"
	"time"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// SearchService searches pages and databases shared with the integration.
type SearchService struct {
	*caller
}

// SearchInput describes a search.
type SearchInput struct {
	Query string

	// Filter restricts results to "page" or "database" objects.
	Filter string

	// Sort orders by last edited time, "ascending" or "descending".
	Sort string

	StartCursor string
	PageSize    int
}

func (in SearchInput) body() map[string]any {
	body := map[string]any{}
	if in.Query != "" {
		body["query"] = in.Query
	}
	if in.Filter != "" {
		body["filter"] = map[string]any{"value": in.Filter, "property": "object"}
	}
	if in.Sort != "" {
		body["sort"] = map[string]any{"direction": in.Sort, "timestamp": "last_edited_time"}
	}
	if in.StartCursor != "" {
		body["start_cursor"] = in.StartCursor
	}
	if in.PageSize > 0 {
		body["page_size"] = in.PageSize
	}
	return body
}

// Search retrieves one page of results.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*client.Response, error) {
	return s.post(ctx, "/search", in.body(), nil)
}

// SearchAll retrieves every result.
func (s *SearchService) SearchAll(ctx context.Context, in SearchInput) ([]map[string]any, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (map[string]any, error) {
		in.StartCursor = cursor
		in.PageSize = maxPageSize
		resp, err := s.Search(ctx, in)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// EditedAfter returns the objects last edited strictly after t. Objects
// without a parseable last_edited_time are dropped.
func EditedAfter(objects []map[string]any, t time.Time) []map[string]any {
	out := make([]map[string]any, 0, len(objects))
	for _, obj := range objects {
		raw, _ := obj["last_edited_time"].(string)
		edited, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		if edited.After(t) {
			out = append(out, obj)
		}
	}
	return out
}
