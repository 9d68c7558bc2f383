package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

type fakeDoer struct {
	mu       sync.Mutex
	requests []*client.Request
	handler  func(r *client.Request) (map[string]any, error)
}

func (f *fakeDoer) Do(_ context.Context, r *client.Request) (*client.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	data, err := f.handler(r)
	if err != nil {
		return nil, err
	}
	return &client.Response{Data: data}, nil
}

func (f *fakeDoer) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	paths := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		paths = append(paths, r.Method+" "+r.Path)
	}
	return paths
}

// bodyOf round-trips a request body through JSON so tests see the wire form.
func bodyOf(t *testing.T, r *client.Request) map[string]any {
	t.Helper()
	raw, err := json.Marshal(r.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func list(objects ...map[string]any) []any {
	out := make([]any, 0, len(objects))
	for _, o := range objects {
		out = append(out, o)
	}
	return out
}

func TestPaginate(t *testing.T) {
	pages := map[string]map[string]any{
		"":   {"results": list(map[string]any{"id": "1"}, map[string]any{"id": "2"}), "has_more": true, "next_cursor": "c2"},
		"c2": {"results": list(map[string]any{"id": "3"}), "has_more": true, "next_cursor": "c3"},
		"c3": {"results": list(map[string]any{"id": "4"}), "has_more": false, "next_cursor": nil},
	}

	var cursors []string
	all, err := Paginate(context.Background(), func(_ context.Context, cursor string) (map[string]any, error) {
		cursors = append(cursors, cursor)
		return pages[cursor], nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "c2", "c3"}, cursors)
	require.Len(t, all, 4)
	assert.Equal(t, "4", all[3]["id"])
}

func TestPaginate_StopsWithoutCursor(t *testing.T) {
	calls := 0
	all, err := Paginate(context.Background(), func(context.Context, string) (map[string]any, error) {
		calls++
		return map[string]any{"results": list(), "has_more": true}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestPaginate_Error(t *testing.T) {
	want := errors.New("boom")
	_, err := Paginate(context.Background(), func(context.Context, string) (map[string]any, error) {
		return nil, want
	})
	assert.ErrorIs(t, err, want)
}

func TestPages(t *testing.T) {
	f := &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
		return map[string]any{"object": "page"}, nil
	}}
	svc := New(f)
	ctx := context.Background()

	_, err := svc.Pages.Get(ctx, "p1")
	require.NoError(t, err)

	_, err = svc.Pages.Create(ctx, CreatePageInput{
		Parent:     PageParent("parent"),
		Properties: map[string]any{"title": TitleProperty("Hello")},
	})
	require.NoError(t, err)

	_, err = svc.Pages.Archive(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.Pages.Restore(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.Pages.Move(ctx, "p1", WorkspaceParent())
	require.NoError(t, err)
	_, err = svc.Pages.Property(ctx, "p1", "title", ListOptions{PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /pages/p1",
		"POST /pages",
		"PATCH /pages/p1",
		"PATCH /pages/p1",
		"PATCH /pages/p1",
		"GET /pages/p1/properties/title",
	}, f.paths())

	create := bodyOf(t, f.requests[1])
	assert.Equal(t, map[string]any{"page_id": "parent"}, create["parent"])
	assert.NotContains(t, create, "children")

	assert.Equal(t, map[string]any{"archived": true}, bodyOf(t, f.requests[2]))
	assert.Equal(t, map[string]any{"archived": false}, bodyOf(t, f.requests[3]))
	assert.Equal(t, map[string]any{"parent": map[string]any{"workspace": true}}, bodyOf(t, f.requests[4]))
	assert.Equal(t, map[string]string{"page_size": "5"}, f.requests[5].Params)
}

func TestPages_MoveRequiresParent(t *testing.T) {
	svc := New(&fakeDoer{})
	_, err := svc.Pages.Move(context.Background(), "p1", nil)

	apiErr, ok := client.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, client.KindValidation, apiErr.Kind)
}

func TestPages_CacheOverride(t *testing.T) {
	f := &fakeDoer{handler: func(*client.Request) (map[string]any, error) { return map[string]any{}, nil }}
	svc := New(f)

	_, err := svc.Pages.Get(context.Background(), "p1", client.WithCache(false))
	require.NoError(t, err)

	require.NotNil(t, f.requests[0].UseCache)
	assert.False(t, *f.requests[0].UseCache)
}

func TestDatabases_QueryAll(t *testing.T) {
	f := &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
		in := r.Body.(QueryInput)
		if in.StartCursor == "" {
			return map[string]any{"results": list(map[string]any{"id": "a"}), "has_more": true, "next_cursor": "n"}, nil
		}
		return map[string]any{"results": list(map[string]any{"id": "b"}), "has_more": false}, nil
	}}
	svc := New(f)

	rows, err := svc.Databases.QueryAll(context.Background(), "db", QueryInput{
		Filter: map[string]any{"property": "Done", "checkbox": map[string]any{"equals": true}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := bodyOf(t, f.requests[0])
	assert.Equal(t, float64(100), first["page_size"])
	assert.Contains(t, first, "filter")
	assert.NotContains(t, first, "start_cursor")
	assert.Equal(t, "n", bodyOf(t, f.requests[1])["start_cursor"])
}

func TestDatabases_Create(t *testing.T) {
	f := &fakeDoer{handler: func(*client.Request) (map[string]any, error) { return map[string]any{}, nil }}
	svc := New(f)

	_, err := svc.Databases.Create(context.Background(), CreateDatabaseInput{
		Parent: PageParent("p"),
		Title:  RichText("Tasks"),
	})
	require.NoError(t, err)

	body := bodyOf(t, f.requests[0])
	assert.Equal(t, false, body["is_inline"])
	assert.Equal(t, map[string]any{}, body["properties"])
}

func TestBlocks_ChildrenAllRecursive(t *testing.T) {
	tree := map[string][]map[string]any{
		"root": {
			{"id": "a", "type": "paragraph", "has_children": true},
			{"id": "b", "type": "paragraph", "has_children": false},
			{"id": "c", "type": "toggle", "has_children": true},
		},
		"a":  {{"id": "a1", "type": "paragraph", "has_children": true}},
		"a1": {{"id": "a1x", "type": "paragraph", "has_children": false}},
		"c":  {{"id": "c1", "type": "paragraph", "has_children": false}},
	}

	f := &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.Path, "/blocks/"), "/children")
		children := tree[id]
		out := make([]any, 0, len(children))
		for _, c := range children {
			cp := map[string]any{}
			for k, v := range c {
				cp[k] = v
			}
			out = append(out, cp)
		}
		return map[string]any{"results": out, "has_more": false}, nil
	}}
	svc := New(f, WithConcurrency(2))

	t.Run("unlimited", func(t *testing.T) {
		blocks, err := svc.Blocks.ChildrenAll(context.Background(), "root", ChildrenOptions{Recursive: true, MaxDepth: -1})
		require.NoError(t, err)
		require.Len(t, blocks, 3)

		a := Objects(blocks[0]["children"])
		require.Len(t, a, 1)
		a1 := Objects(a[0]["children"])
		require.Len(t, a1, 1)
		assert.Equal(t, "a1x", a1[0]["id"])

		assert.NotContains(t, blocks[1], "children")
		assert.Len(t, Objects(blocks[2]["children"]), 1)
	})

	t.Run("max depth", func(t *testing.T) {
		blocks, err := svc.Blocks.ChildrenAll(context.Background(), "root", ChildrenOptions{Recursive: true, MaxDepth: 1})
		require.NoError(t, err)

		a := Objects(blocks[0]["children"])
		require.Len(t, a, 1)
		assert.NotContains(t, a[0], "children")
	})

	t.Run("not recursive", func(t *testing.T) {
		blocks, err := svc.Blocks.ChildrenAll(context.Background(), "root", ChildrenOptions{})
		require.NoError(t, err)
		assert.NotContains(t, blocks[0], "children")
	})
}

func TestBlocks_ChildrenAllError(t *testing.T) {
	f := &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
		if r.Path == "/blocks/root/children" {
			return map[string]any{"results": list(map[string]any{"id": "x", "has_children": true})}, nil
		}
		return nil, client.Classify(http.StatusNotFound, map[string]any{"message": "gone"})
	}}
	svc := New(f)

	_, err := svc.Blocks.ChildrenAll(context.Background(), "root", ChildrenOptions{Recursive: true, MaxDepth: -1})
	require.Error(t, err)
	assert.Equal(t, 3, client.ExitCodeOf(err))
}

func TestBlocks_AppendAndUpdate(t *testing.T) {
	f := &fakeDoer{handler: func(*client.Request) (map[string]any, error) { return map[string]any{}, nil }}
	svc := New(f)
	ctx := context.Background()

	block, err := TextBlock("Heading 2", "Title")
	require.NoError(t, err)

	_, err = svc.Blocks.Append(ctx, "p", AppendInput{Children: []any{block}, After: "b1"})
	require.NoError(t, err)

	archived := true
	_, err = svc.Blocks.Update(ctx, "b1", map[string]any{"paragraph": map[string]any{}}, &archived)
	require.NoError(t, err)

	_, err = svc.Blocks.Delete(ctx, "b1")
	require.NoError(t, err)

	assert.Equal(t, []string{"PATCH /blocks/p/children", "PATCH /blocks/b1", "DELETE /blocks/b1"}, f.paths())

	appendBody := bodyOf(t, f.requests[0])
	assert.Equal(t, "b1", appendBody["after"])
	children := Objects(appendBody["children"])
	require.Len(t, children, 1)
	assert.Equal(t, "heading_2", children[0]["type"])

	assert.Equal(t, true, bodyOf(t, f.requests[1])["archived"])

	_, err = svc.Blocks.Append(ctx, "p", AppendInput{})
	assert.Error(t, err)
}

func TestUsersAndComments(t *testing.T) {
	f := &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
		if r.Params["start_cursor"] == "" && r.Method == http.MethodGet && r.Path != "/users/me" {
			return map[string]any{"results": list(map[string]any{"id": "1"}), "has_more": true, "next_cursor": "x"}, nil
		}
		return map[string]any{"results": list(map[string]any{"id": "2"}), "has_more": false}, nil
	}}
	svc := New(f)
	ctx := context.Background()

	users, err := svc.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.Users.Me(ctx)
	require.NoError(t, err)

	comments, err := svc.Comments.ListAll(ctx, "blk")
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	_, err = svc.Comments.CreateText(ctx, "page", "hello", "")
	require.NoError(t, err)
	_, err = svc.Comments.CreateText(ctx, "page", "reply", "disc")
	require.NoError(t, err)

	n := len(f.requests)
	newThread := bodyOf(t, f.requests[n-2])
	assert.Equal(t, map[string]any{"page_id": "page"}, newThread["parent"])

	reply := bodyOf(t, f.requests[n-1])
	assert.Equal(t, "disc", reply["discussion_id"])
	assert.NotContains(t, reply, "parent")

	for _, r := range f.requests {
		if r.Path == "/comments" && r.Method == http.MethodGet {
			assert.Equal(t, "blk", r.Params["block_id"])
		}
	}
}

func TestSearch(t *testing.T) {
	f := &fakeDoer{handler: func(*client.Request) (map[string]any, error) {
		return map[string]any{"results": list(), "has_more": false}, nil
	}}
	svc := New(f)

	_, err := svc.Search.Search(context.Background(), SearchInput{Query: "notes", Filter: "page", Sort: "descending", PageSize: 10})
	require.NoError(t, err)

	body := bodyOf(t, f.requests[0])
	assert.Equal(t, "notes", body["query"])
	assert.Equal(t, map[string]any{"value": "page", "property": "object"}, body["filter"])
	assert.Equal(t, map[string]any{"direction": "descending", "timestamp": "last_edited_time"}, body["sort"])
	assert.Equal(t, float64(10), body["page_size"])

	_, err = svc.Search.Search(context.Background(), SearchInput{})
	require.NoError(t, err)
	assert.Empty(t, bodyOf(t, f.requests[1]))
}

func TestEditedAfter(t *testing.T) {
	objects := []map[string]any{
		{"id": "old", "last_edited_time": "2024-01-01T00:00:00.000Z"},
		{"id": "new", "last_edited_time": "2024-06-01T12:00:00.000Z"},
		{"id": "none"},
	}
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got := EditedAfter(objects, cutoff)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0]["id"])
}

func TestTitle(t *testing.T) {
	page := map[string]any{
		"object": "page",
		"properties": map[string]any{
			"Status": map[string]any{"type": "select"},
			"Name": map[string]any{"type": "title", "title": list(
				map[string]any{"plain_text": "Road"},
				map[string]any{"plain_text": "map"},
			)},
		},
	}
	db := map[string]any{"object": "database", "title": list(map[string]any{"plain_text": "Tasks"})}

	assert.Equal(t, "Roadmap", Title(page))
	assert.Equal(t, "Tasks", Title(db))
	assert.Equal(t, "Untitled", Title(map[string]any{"object": "user"}))
}

func TestPages_Replace(t *testing.T) {
	blocks := list(
		map[string]any{
			"id": "b1", "type": "paragraph", "has_children": false,
			"paragraph": map[string]any{"rich_text": list(
				map[string]any{"type": "text", "text": map[string]any{"content": "foo and foo", "link": nil}, "plain_text": "foo and foo", "annotations": map[string]any{"bold": true}},
				map[string]any{"type": "mention", "mention": map[string]any{"type": "user"}, "plain_text": "@x"},
			)},
		},
		map[string]any{
			"id": "b2", "type": "paragraph", "has_children": false,
			"paragraph": map[string]any{"rich_text": list(
				map[string]any{"type": "text", "text": map[string]any{"content": "nothing here"}},
			)},
		},
		map[string]any{"id": "b3", "type": "divider", "has_children": false, "divider": map[string]any{}},
		map[string]any{
			"id": "b4", "type": "quote", "has_children": false,
			"quote": map[string]any{"rich_text": list(
				map[string]any{"type": "text", "text": map[string]any{"content": "foo"}},
			)},
		},
	)

	newDoer := func(failOn string) *fakeDoer {
		return &fakeDoer{handler: func(r *client.Request) (map[string]any, error) {
			if r.Method == http.MethodGet {
				return map[string]any{"results": blocks, "has_more": false}, nil
			}
			if r.Path == "/blocks/"+failOn {
				return nil, client.Classify(http.StatusConflict, map[string]any{"message": "conflict"})
			}
			return map[string]any{}, nil
		}}
	}
	re := regexp.MustCompile(`foo`)

	t.Run("rewrites matching blocks", func(t *testing.T) {
		f := newDoer("")
		res, err := New(f).Pages.Replace(context.Background(), "page", re, "bar", false)
		require.NoError(t, err)
		assert.Equal(t, ReplaceResult{Matched: 2, Updated: 2}, res)

		var patched []string
		for _, r := range f.requests {
			if r.Method == http.MethodPatch {
				patched = append(patched, r.Path)
			}
		}
		sort.Strings(patched)
		assert.Equal(t, []string{"/blocks/b1", "/blocks/b4"}, patched)

		body := bodyOf(t, f.requests[1])
		runs := Objects(body["paragraph"].(map[string]any)["rich_text"])
		require.Len(t, runs, 2)
		assert.Equal(t, "bar and bar", runs[0]["text"].(map[string]any)["content"])
		assert.Equal(t, map[string]any{"bold": true}, runs[0]["annotations"])
		assert.NotContains(t, runs[0], "plain_text")
		assert.Equal(t, "mention", runs[1]["type"])
	})

	t.Run("dry run", func(t *testing.T) {
		f := newDoer("")
		res, err := New(f).Pages.Replace(context.Background(), "page", re, "bar", true)
		require.NoError(t, err)
		assert.Equal(t, ReplaceResult{Matched: 2, DryRun: true}, res)
		assert.Len(t, f.requests, 1)
	})

	t.Run("aggregates failures", func(t *testing.T) {
		f := newDoer("b1")
		res, err := New(f).Pages.Replace(context.Background(), "page", re, "bar", false)
		require.Error(t, err)
		assert.Equal(t, 1, res.Updated)
		assert.Contains(t, err.Error(), "b1")
	})
}
