package blocks

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/cmdtest"
)

const (
	rootID    = "77777777-7777-7777-7777-777777777777"
	parentID  = "77777777-7777-7777-7777-77777777aaaa"
	nestedID  = "77777777-7777-7777-7777-77777777bbbb"
	leafID    = "77777777-7777-7777-7777-77777777cccc"
	siblingID = "77777777-7777-7777-7777-77777777dddd"
)

// treeHandler serves root > parent > nested > leaf, with a sibling of parent
// that has no children.
func treeHandler(r cmdtest.Request) (int, any) {
	switch r.Path {
	case "/blocks/" + rootID + "/children":
		return http.StatusOK, cmdtest.List(false, "",
			cmdtest.TextBlock(parentID, "toggle", "Parent", true),
			cmdtest.TextBlock(siblingID, "paragraph", "Sibling", false),
		)
	case "/blocks/" + parentID + "/children":
		return http.StatusOK, cmdtest.List(false, "", cmdtest.TextBlock(nestedID, "bulleted_list_item", "Nested", true))
	case "/blocks/" + nestedID + "/children":
		return http.StatusOK, cmdtest.List(false, "", cmdtest.TextBlock(leafID, "paragraph", "Leaf", false))
	}
	return http.StatusNotFound, map[string]any{"object": "error", "code": "object_not_found", "message": "no route"}
}

func results(t *testing.T, h *cmdtest.Harness) []any {
	t.Helper()
	items, ok := h.Data(t)["results"].([]any)
	require.True(t, ok)
	return items
}

func children(block any) []any {
	items, _ := block.(map[string]any)["children"].([]any)
	return items
}

func TestGetCommand(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.TextBlock(rootID, "paragraph", "Hi", false)
	})

	code := (&GetCommand{Command: h.Command}).Run([]string{rootID})
	require.Equal(t, 0, code, h.Err.String())
	assert.Equal(t, []string{"GET /blocks/" + rootID}, h.Paths())
	assert.Equal(t, "paragraph", h.Data(t)["type"])
}

func TestChildrenCommand(t *testing.T) {
	h := cmdtest.New(t, treeHandler)

	code := (&ChildrenCommand{Command: h.Command}).Run([]string{rootID, "-page-size", "25"})
	require.Equal(t, 0, code, h.Err.String())

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "25", reqs[0].Query.Get("page_size"))

	data := h.Data(t)
	assert.Equal(t, false, data["has_more"])
	assert.Len(t, data["results"], 2)
}

func TestChildrenCommand_Recursive(t *testing.T) {
	h := cmdtest.New(t, treeHandler)

	code := (&ChildrenCommand{Command: h.Command}).Run([]string{rootID, "-recursive"})
	require.Equal(t, 0, code, h.Err.String())

	assert.ElementsMatch(t, []string{
		"GET /blocks/" + rootID + "/children",
		"GET /blocks/" + parentID + "/children",
		"GET /blocks/" + nestedID + "/children",
	}, h.Paths())

	top := results(t, h)
	require.Len(t, top, 2)
	nested := children(top[0])
	require.Len(t, nested, 1)
	leaves := children(nested[0])
	require.Len(t, leaves, 1)
	assert.Equal(t, leafID, leaves[0].(map[string]any)["id"])
	assert.Nil(t, children(top[1]))
}

func TestChildrenCommand_MaxDepth(t *testing.T) {
	tests := []struct {
		depth    string
		requests int
	}{
		{"0", 1},
		{"1", 2},
		{"2", 3},
	}

	for _, tc := range tests {
		t.Run(tc.depth, func(t *testing.T) {
			h := cmdtest.New(t, treeHandler)

			code := (&ChildrenCommand{Command: h.Command}).Run([]string{rootID, "-recursive", "-max-depth", tc.depth})
			require.Equal(t, 0, code, h.Err.String())
			assert.Len(t, h.Requests(), tc.requests)
		})
	}
}

func TestChildrenCommand_Markdown(t *testing.T) {
	h := cmdtest.New(t, treeHandler)

	code := (&ChildrenCommand{Command: h.Command}).Run([]string{rootID, "-recursive", "-format", "markdown"})
	require.Equal(t, 0, code, h.Err.String())
	assert.Contains(t, h.Out.String(), "Parent")
	assert.Contains(t, h.Out.String(), "- Nested")
	assert.Contains(t, h.Out.String(), "Leaf")
	assert.Contains(t, h.Out.String(), "Sibling")
}

func TestAppendCommand(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(false, "")
	})

	code := (&AppendCommand{Command: h.Command}).Run([]string{rootID, "-content", "Buy milk\nWalk dog", "-type", "to-do", "-after", siblingID})
	require.Equal(t, 0, code, h.Err.String())

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "PATCH /blocks/"+rootID+"/children", reqs[0].Method+" "+reqs[0].Path)
	assert.Equal(t, siblingID, reqs[0].Body["after"])

	blocks := reqs[0].Body["children"].([]any)
	require.Len(t, blocks, 2)
	assert.Equal(t, "to_do", blocks[0].(map[string]any)["type"])
}

func TestAppendCommand_JSON(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.List(false, "")
	})

	code := (&AppendCommand{Command: h.Command}).Run([]string{rootID, "-content", `[{"type": "divider", "divider": {}}]`})
	require.Equal(t, 0, code, h.Err.String())

	body := h.Requests()[0].Body
	assert.Equal(t, []any{map[string]any{"type": "divider", "divider": map[string]any{}}}, body["children"])
	assert.NotContains(t, body, "after")
}

func TestAppendCommand_InvalidInput(t *testing.T) {
	tests := map[string][]string{
		"missing content": {rootID},
		"blank content":   {rootID, "-content", "\n \n"},
		"non text type":   {rootID, "-content", "x", "-type", "image"},
		"bad after":       {rootID, "-content", "x", "-after", "nope"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
				return http.StatusOK, cmdtest.List(false, "")
			})

			assert.Equal(t, 4, (&AppendCommand{Command: h.Command}).Run(args))
			assert.Empty(t, h.Requests())
		})
	}
}

func TestUpdateCommand_Text(t *testing.T) {
	h := cmdtest.New(t, func(r cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.TextBlock(leafID, "heading_2", "Old", false)
	})

	code := (&UpdateCommand{Command: h.Command}).Run([]string{leafID, "-text", "New"})
	require.Equal(t, 0, code, h.Err.String())

	reqs := h.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "GET /blocks/"+leafID, reqs[0].Method+" "+reqs[0].Path)
	assert.Equal(t, "PATCH /blocks/"+leafID, reqs[1].Method+" "+reqs[1].Path)

	runs := reqs[1].Body["heading_2"].(map[string]any)["rich_text"].([]any)
	assert.Equal(t, "New", runs[0].(map[string]any)["text"].(map[string]any)["content"])
	assert.NotContains(t, reqs[1].Body, "archived")
}

func TestUpdateCommand_ContentAndArchived(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.Object("block", leafID)
	})

	code := (&UpdateCommand{Command: h.Command}).Run([]string{leafID, "-content", `{"to_do": {"checked": true}}`, "-archived", "false"})
	require.Equal(t, 0, code, h.Err.String())

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{
		"to_do":    map[string]any{"checked": true},
		"archived": false,
	}, reqs[0].Body)
}

func TestUpdateCommand_InvalidInput(t *testing.T) {
	tests := map[string][]string{
		"nothing to update": {leafID},
		"content and text":  {leafID, "-content", "{}", "-text", "x"},
		"bad archived":      {leafID, "-archived", "yes"},
		"bad content":       {leafID, "-content", "["},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
				return http.StatusOK, cmdtest.Object("block", leafID)
			})

			assert.Equal(t, 4, (&UpdateCommand{Command: h.Command}).Run(args))
			assert.Empty(t, h.Requests())
		})
	}
}

func TestDeleteCommand(t *testing.T) {
	h := cmdtest.New(t, func(cmdtest.Request) (int, any) {
		return http.StatusOK, cmdtest.Object("block", leafID, "archived", true)
	})

	code := (&DeleteCommand{Command: h.Command}).Run([]string{leafID})
	require.Equal(t, 0, code, h.Err.String())
	assert.Equal(t, []string{"DELETE /blocks/" + leafID}, h.Paths())
	assert.Equal(t, true, h.Data(t)["archived"])
}
