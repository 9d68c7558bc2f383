package api

import (
	"context"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// CommentsService manages comments.
type CommentsService struct {
	*caller
}

// CreateCommentInput is the body of a comment creation request. Set either
// Parent for a new discussion or DiscussionID to reply.
type CreateCommentInput struct {
	Parent       map[string]any `json:"parent,omitempty"`
	RichText     []any          `json:"rich_text"`
	DiscussionID string         `json:"discussion_id,omitempty"`
}

// List retrieves one page of comments on a block or page.
func (s *CommentsService) List(ctx context.Context, blockID string, lo ListOptions, opts ...client.RequestOption) (*client.Response, error) {
	params := lo.params()
	if params == nil {
		params = map[string]string{}
	}
	params["block_id"] = blockID
	return s.get(ctx, "/comments", params, opts)
}

// ListAll retrieves every comment on a block or page.
func (s *CommentsService) ListAll(ctx context.Context, blockID string, opts ...client.RequestOption) ([]map[string]any, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (map[string]any, error) {
		resp, err := s.List(ctx, blockID, ListOptions{StartCursor: cursor, PageSize: maxPageSize}, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// Create creates a comment.
func (s *CommentsService) Create(ctx context.Context, in CreateCommentInput) (*client.Response, error) {
	return s.post(ctx, "/comments", in, nil)
}

// CreateText comments plain text on a page, replying to discussionID when
// set.
func (s *CommentsService) CreateText(ctx context.Context, pageID, text, discussionID string) (*client.Response, error) {
	in := CreateCommentInput{
		RichText:     RichText(text),
		DiscussionID: discussionID,
	}
	if discussionID == "" {
		in.Parent = PageParent(pageID)
	}
	return s.Create(ctx, in)
}
