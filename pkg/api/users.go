package api

import (
	"context"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// UsersService reads workspace members.
type UsersService struct {
	*caller
}

// List retrieves one page of users.
func (s *UsersService) List(ctx context.Context, lo ListOptions, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/users", lo.params(), opts)
}

// ListAll retrieves every user.
func (s *UsersService) ListAll(ctx context.Context, opts ...client.RequestOption) ([]map[string]any, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (map[string]any, error) {
		resp, err := s.List(ctx, ListOptions{StartCursor: cursor, PageSize: maxPageSize}, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// Get retrieves a user.
func (s *UsersService) Get(ctx context.Context, userID string, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/users/"+userID, nil, opts)
}

// Me retrieves the bot user that owns the token.
func (s *UsersService) Me(ctx context.Context, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/users/me", nil, opts)
}
