package search

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/cmdtest"
)

func titled(id, kind, title, edited string) map[string]any {
	run := []any{map[string]any{"type": "text", "plain_text": title, "text": map[string]any{"content": title}}}
	obj := cmdtest.Object(kind, id, "last_edited_time", edited)
	if kind == "database" {
		obj["title"] = run
	} else {
		obj["properties"] = map[string]any{
			"Name": map[string]any{"id": "title", "type": "title", "title": run},
		}
	}
	return obj
}

func fixtures() []map[string]any {
	return []map[string]any{
		titled("p1", "page", "Meeting notes", "2024-04-01T10:00:00.000Z"),
		titled("d1", "database", "Tasks", "2024-06-15T08:30:00.000Z"),
	}
}

func TestCommand(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(false, "", fixtures()...)
	})

	code := (&Command{Command: h.Command}).Run([]string{"meeting notes", "-filter", "page", "-sort", "descending", "-page-size", "20"})
	require.Equal(t, 0, code, h.Err.String())

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "POST /search", reqs[0].Method+" "+reqs[0].Path)
	assert.Equal(t, map[string]any{
		"query":     "meeting notes",
		"filter":    map[string]any{"value": "page", "property": "object"},
		"sort":      map[string]any{"direction": "descending", "timestamp": "last_edited_time"},
		"page_size": float64(20),
	}, reqs[0].Body)

	assert.Len(t, h.Data(t)["results"], 2)
}

func TestCommand_NoQuery(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(false, "")
	})

	require.Equal(t, 0, (&Command{Command: h.Command}).Run(nil), h.Err.String())
	assert.Empty(t, h.Requests()[0].Body)
}

func TestCommand_Quiet(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(false, "", fixtures()...)
	})

	require.Equal(t, 0, (&Command{Command: h.Command}).Run([]string{"-q"}), h.Err.String())
	assert.Equal(t, "p1\tMeeting notes\nd1\tTasks\n", h.Out.String())
}

func TestCommand_EditedAfter(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(true, "next", fixtures()...)
	})

	code := (&Command{Command: h.Command}).Run([]string{"-edited-after", "May 1, 2024"})
	require.Equal(t, 0, code, h.Err.String())

	data := h.Data(t)
	results := data["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].(map[string]any)["id"])
	assert.Equal(t, true, data["has_more"])
	assert.Equal(t, "next", data["next_cursor"])
}

func TestCommand_All(t *testing.T) {
	h := cmdtest.New(t, func(r cmdtest.Request) (int, any) {
		if r.Body["start_cursor"] == "c2" {
			return http.StatusOK, cmdtest.List(false, "", fixtures()[1])
		}
		return http.StatusOK, cmdtest.List(true, "c2", fixtures()[0])
	})

	code := (&Command{Command: h.Command}).Run([]string{"-all", "-edited-after", "2024-01-01", "-q"})
	require.Equal(t, 0, code, h.Err.String())
	assert.Len(t, h.Requests(), 2)
	assert.Equal(t, "p1\tMeeting notes\nd1\tTasks\n", h.Out.String())
}

func TestCommand_InvalidInput(t *testing.T) {
	tests := map[string][]string{
		"two queries": {"a", "b"},
		"bad filter":  {"-filter", "block"},
		"bad sort":    {"-sort", "newest"},
		"bad date":    {"-edited-after", "not a date"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
				return http.StatusOK, cmdtest.List(false, "")
			})

			assert.Equal(t, 4, (&Command{Command: h.Command}).Run(args))
			assert.Equal(t, "validation_error", h.ErrorJSON(t)["code"])
			assert.Empty(t, h.Requests())
		})
	}
}
