package api

import (
	"context"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// DatabasesService manages databases.
type DatabasesService struct {
	*caller
}

// QueryInput is the body of a database query.
type QueryInput struct {
	Filter           map[string]any `json:"filter,omitempty"`
	Sorts            []any          `json:"sorts,omitempty"`
	StartCursor      string         `json:"start_cursor,omitempty"`
	PageSize         int            `json:"page_size,omitempty"`
	FilterProperties []string       `json:"filter_properties,omitempty"`
}

// CreateDatabaseInput is the body of a database creation request.
type CreateDatabaseInput struct {
	Parent     map[string]any `json:"parent"`
	Title      []any          `json:"title"`
	Properties map[string]any `json:"properties"`
	Icon       map[string]any `json:"icon,omitempty"`
	Cover      map[string]any `json:"cover,omitempty"`
	IsInline   bool           `json:"is_inline"`
}

// UpdateDatabaseInput is the body of a database update request. Nil fields
// are left unchanged.
type UpdateDatabaseInput struct {
	Title       []any          `json:"title,omitempty"`
	Description []any          `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Icon        map[string]any `json:"icon,omitempty"`
	Cover       map[string]any `json:"cover,omitempty"`
	Archived    *bool          `json:"archived,omitempty"`
}

// Get retrieves a database.
func (s *DatabasesService) Get(ctx context.Context, databaseID string, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/databases/"+databaseID, nil, opts)
}

// Query retrieves one page of database rows.
func (s *DatabasesService) Query(ctx context.Context, databaseID string, in QueryInput) (*client.Response, error) {
	return s.post(ctx, "/databases/"+databaseID+"/query", in, nil)
}

// QueryAll retrieves every row matching the filter.
func (s *DatabasesService) QueryAll(ctx context.Context, databaseID string, in QueryInput) ([]map[string]any, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (map[string]any, error) {
		in.StartCursor = cursor
		in.PageSize = maxPageSize
		resp, err := s.Query(ctx, databaseID, in)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// Create creates a database.
func (s *DatabasesService) Create(ctx context.Context, in CreateDatabaseInput) (*client.Response, error) {
	if in.Properties == nil {
		in.Properties = map[string]any{}
	}
	return s.post(ctx, "/databases", in, nil)
}

// Update updates a database's title, description or schema.
func (s *DatabasesService) Update(ctx context.Context, databaseID string, in UpdateDatabaseInput) (*client.Response, error) {
	return s.patch(ctx, "/databases/"+databaseID, in, nil)
}
