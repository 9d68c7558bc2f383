package api

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// BlocksService manages blocks and their children.
type BlocksService struct {
	*caller
	concurrency int
	logger      hclog.Logger
}

// ChildrenOptions controls ChildrenAll.
type ChildrenOptions struct {
	// Recursive attaches the children of every block that has them under a
	// "children" key.
	Recursive bool

	// MaxDepth limits recursion: 0 fetches only the direct children. A
	// negative value means no limit.
	MaxDepth int
}

// AppendInput is the body of an append children request.
type AppendInput struct {
	Children []any `json:"children"`
	After    string `json:"after,omitempty"`
}

// Get retrieves a block.
func (s *BlocksService) Get(ctx context.Context, blockID string, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/blocks/"+blockID, nil, opts)
}

// Update replaces a block's content. Data is the block body keyed by type,
// for example {"paragraph": {"rich_text": [...]}}.
func (s *BlocksService) Update(ctx context.Context, blockID string, data map[string]any, archived *bool) (*client.Response, error) {
	body := make(map[string]any, len(data)+1)
	for k, v := range data {
		body[k] = v
	}
	if archived != nil {
		body["archived"] = *archived
	}
	return s.patch(ctx, "/blocks/"+blockID, body, nil)
}

// Delete moves a block to the trash.
func (s *BlocksService) Delete(ctx context.Context, blockID string) (*client.Response, error) {
	return s.delete(ctx, "/blocks/"+blockID, nil)
}

// Children retrieves one page of a block's children.
func (s *BlocksService) Children(ctx context.Context, blockID string, lo ListOptions, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/blocks/"+blockID+"/children", lo.params(), opts)
}

// Append adds children to a block, after the given sibling when set.
func (s *BlocksService) Append(ctx context.Context, blockID string, in AppendInput) (*client.Response, error) {
	if len(in.Children) == 0 {
		return nil, client.NewError(client.KindValidation, "at least one child block is required")
	}
	return s.patch(ctx, "/blocks/"+blockID+"/children", in, nil)
}

// ChildrenAll retrieves every child of a block across all pages. With
// Recursive set, descendants are fetched concurrently and attached to their
// parents.
func (s *BlocksService) ChildrenAll(ctx context.Context, blockID string, co ChildrenOptions, opts ...client.RequestOption) ([]map[string]any, error) {
	return s.childrenAll(ctx, blockID, co, 0, opts)
}

func (s *BlocksService) childrenAll(ctx context.Context, blockID string, co ChildrenOptions, depth int, opts []client.RequestOption) ([]map[string]any, error) {
	children, err := Paginate(ctx, func(ctx context.Context, cursor string) (map[string]any, error) {
		resp, err := s.Children(ctx, blockID, ListOptions{StartCursor: cursor, PageSize: maxPageSize}, opts...)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
	if err != nil {
		return nil, err
	}

	if !co.Recursive || (co.MaxDepth >= 0 && depth >= co.MaxDepth) {
		return children, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, child := range children {
		if hasChildren, _ := child["has_children"].(bool); !hasChildren {
			continue
		}
		id, _ := child["id"].(string)
		if id == "" {
			continue
		}

		child := child
		g.Go(func() error {
			s.logger.Trace("fetching nested children", "block", id, "depth", depth+1)
			nested, err := s.childrenAll(gctx, id, co, depth+1, opts)
			if err != nil {
				return fmt.Errorf("error fetching children of block %s: %w", id, err)
			}
			child["children"] = anySlice(nested)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return children, nil
}

func anySlice(objects []map[string]any) []any {
	out := make([]any, len(objects))
	for i, obj := range objects {
		out[i] = obj
	}
	return out
}
