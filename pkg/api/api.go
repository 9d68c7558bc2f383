// Package api wraps the request pipeline with one service per API resource.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

const (
	// maxPageSize is the largest page the API returns.
	maxPageSize = 100

	defaultConcurrency = 4
)

// Doer sends a request through the pipeline. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, r *client.Request) (*client.Response, error)
}

// Service groups the resource services sharing one pipeline.
type Service struct {
	Pages     *PagesService
	Databases *DatabasesService
	Blocks    *BlocksService
	Users     *UsersService
	Search    *SearchService
	Comments  *CommentsService
}

// Option configures a Service.
type Option func(*options)

type options struct {
	concurrency int
	logger      hclog.Logger
}

// WithConcurrency bounds the number of concurrent child fetches during
// recursive block retrieval.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Service.
func New(d Doer, opts ...Option) *Service {
	o := &options{
		concurrency: defaultConcurrency,
		logger:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	c := &caller{doer: d}
	blocks := &BlocksService{caller: c, concurrency: o.concurrency, logger: o.logger.Named("blocks")}
	return &Service{
		Pages:     &PagesService{caller: c, blocks: blocks, logger: o.logger.Named("pages")},
		Databases: &DatabasesService{caller: c},
		Blocks:    blocks,
		Users:     &UsersService{caller: c},
		Search:    &SearchService{caller: c},
		Comments:  &CommentsService{caller: c},
	}
}

// ListOptions selects one page of a paginated listing.
type ListOptions struct {
	StartCursor string
	PageSize    int
}

func (o ListOptions) params() map[string]string {
	params := map[string]string{}
	if o.StartCursor != "" {
		params["start_cursor"] = o.StartCursor
	}
	if o.PageSize > 0 {
		params["page_size"] = strconv.Itoa(o.PageSize)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

type caller struct {
	doer Doer
}

func (c *caller) get(ctx context.Context, path string, params map[string]string, opts []client.RequestOption) (*client.Response, error) {
	return c.do(ctx, &client.Request{Method: http.MethodGet, Path: path, Params: params}, opts)
}

func (c *caller) post(ctx context.Context, path string, body any, opts []client.RequestOption) (*client.Response, error) {
	return c.do(ctx, &client.Request{Method: http.MethodPost, Path: path, Body: body}, opts)
}

func (c *caller) patch(ctx context.Context, path string, body any, opts []client.RequestOption) (*client.Response, error) {
	return c.do(ctx, &client.Request{Method: http.MethodPatch, Path: path, Body: body}, opts)
}

func (c *caller) delete(ctx context.Context, path string, opts []client.RequestOption) (*client.Response, error) {
	return c.do(ctx, &client.Request{Method: http.MethodDelete, Path: path}, opts)
}

func (c *caller) do(ctx context.Context, r *client.Request, opts []client.RequestOption) (*client.Response, error) {
	for _, opt := range opts {
		opt(r)
	}
	return c.doer.Do(ctx, r)
}
