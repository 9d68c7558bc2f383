package api

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// PagesService manages pages.
type PagesService struct {
	*caller
	blocks *BlocksService
	logger hclog.Logger
}

// CreatePageInput is the body of a page creation request.
type CreatePageInput struct {
	Parent     map[string]any `json:"parent"`
	Properties map[string]any `json:"properties"`
	Children   []any          `json:"children,omitempty"`
	Icon       map[string]any `json:"icon,omitempty"`
	Cover      map[string]any `json:"cover,omitempty"`
}

// UpdatePageInput is the body of a page update request. Nil fields are left
// unchanged.
type UpdatePageInput struct {
	Properties map[string]any `json:"properties,omitempty"`
	Archived   *bool          `json:"archived,omitempty"`
	Icon       map[string]any `json:"icon,omitempty"`
	Cover      map[string]any `json:"cover,omitempty"`
	Parent     map[string]any `json:"parent,omitempty"`
}

// Get retrieves a page.
func (s *PagesService) Get(ctx context.Context, pageID string, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, "/pages/"+pageID, nil, opts)
}

// Create creates a page.
func (s *PagesService) Create(ctx context.Context, in CreatePageInput) (*client.Response, error) {
	if in.Properties == nil {
		in.Properties = map[string]any{}
	}
	return s.post(ctx, "/pages", in, nil)
}

// Update updates a page's properties, icon, cover or archived state.
func (s *PagesService) Update(ctx context.Context, pageID string, in UpdatePageInput) (*client.Response, error) {
	return s.patch(ctx, "/pages/"+pageID, in, nil)
}

// Archive moves a page to the trash.
func (s *PagesService) Archive(ctx context.Context, pageID string) (*client.Response, error) {
	archived := true
	return s.Update(ctx, pageID, UpdatePageInput{Archived: &archived})
}

// Restore restores an archived page.
func (s *PagesService) Restore(ctx context.Context, pageID string) (*client.Response, error) {
	archived := false
	return s.Update(ctx, pageID, UpdatePageInput{Archived: &archived})
}

// Move reparents a page. Parent is a page, database or workspace reference
// (see PageParent, DatabaseParent and WorkspaceParent).
func (s *PagesService) Move(ctx context.Context, pageID string, parent map[string]any) (*client.Response, error) {
	if len(parent) == 0 {
		return nil, client.NewError(client.KindValidation, "a destination parent is required")
	}
	return s.Update(ctx, pageID, UpdatePageInput{Parent: parent})
}

// Property retrieves one property item of a page.
func (s *PagesService) Property(ctx context.Context, pageID, propertyID string, lo ListOptions, opts ...client.RequestOption) (*client.Response, error) {
	return s.get(ctx, fmt.Sprintf("/pages/%s/properties/%s", pageID, propertyID), lo.params(), opts)
}

// Content retrieves the full block tree of a page.
func (s *PagesService) Content(ctx context.Context, pageID string, opts ...client.RequestOption) ([]map[string]any, error) {
	return s.blocks.ChildrenAll(ctx, pageID, ChildrenOptions{Recursive: true, MaxDepth: -1}, opts...)
}

// PageParent references a parent page.
func PageParent(id string) map[string]any {
	return map[string]any{"page_id": id}
}

// DatabaseParent references a parent database.
func DatabaseParent(id string) map[string]any {
	return map[string]any{"database_id": id}
}

// WorkspaceParent references the workspace top level.
func WorkspaceParent() map[string]any {
	return map[string]any{"workspace": true}
}

// Title returns the plain-text title of a page or database object, or
// "Untitled".
func Title(obj map[string]any) string {
	switch obj["object"] {
	case "page":
		props, _ := obj["properties"].(map[string]any)
		for _, v := range props {
			prop, _ := v.(map[string]any)
			if prop["type"] == "title" {
				return PlainText(prop["title"])
			}
		}
	case "database":
		return PlainText(obj["title"])
	}
	return "Untitled"
}

// PlainText concatenates the plain_text of a rich text array.
func PlainText(v any) string {
	var s string
	for _, run := range Objects(v) {
		text, _ := run["plain_text"].(string)
		s += text
	}
	return s
}
