package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRichText_Annotations(t *testing.T) {
	tests := []struct {
		name        string
		annotations map[string]any
		want        string
	}{
		{"plain", map[string]any{}, "x"},
		{"bold", map[string]any{"bold": true}, "**x**"},
		{"italic", map[string]any{"italic": true}, "*x*"},
		{"bold italic", map[string]any{"bold": true, "italic": true}, "***x***"},
		{"code bold", map[string]any{"code": true, "bold": true}, "**`x`**"},
		{"strikethrough", map[string]any{"strikethrough": true}, "~~x~~"},
		{"underline", map[string]any{"underline": true}, "<u>x</u>"},
		{
			"all",
			map[string]any{"code": true, "bold": true, "italic": true, "strikethrough": true, "underline": true},
			"<u>~~***`x`***~~</u>",
		},
		{"color dropped", map[string]any{"color": "red"}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := DecodeRichText([]any{styled("x", tt.annotations)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, RenderRichText(runs))
		})
	}
}

func TestRenderRichText_EmptyTextSkipsAnnotations(t *testing.T) {
	runs, err := DecodeRichText([]any{styled("", map[string]any{"bold": true})})
	require.NoError(t, err)
	assert.Equal(t, "", RenderRichText(runs))
}

func TestRenderRichText_Links(t *testing.T) {
	linked := text("docs")
	linked["text"] = map[string]any{"content": "docs", "link": map[string]any{"url": "https://d"}}
	linked["href"] = "https://d"

	href := styled("site", map[string]any{"bold": true})
	href["href"] = "https://s"

	runs, err := DecodeRichText([]any{linked, text(" and "), href})
	require.NoError(t, err)
	assert.Equal(t, "[docs](https://d) and [**site**](https://s)", RenderRichText(runs))
}

func TestRenderRichText_SingleLinkWrapper(t *testing.T) {
	boldLink := styled("x", map[string]any{"bold": true})
	boldLink["text"] = map[string]any{"content": "x", "link": map[string]any{"url": "https://x.io"}}
	boldLink["href"] = "https://x.io"

	bracketed := text("[draft] notes")
	bracketed["href"] = "https://y.io"

	pageMention := map[string]any{
		"type":        "mention",
		"mention":     map[string]any{"type": "page", "page": map[string]any{"id": "p1"}},
		"annotations": map[string]any{},
		"plain_text":  "Roadmap",
		"href":        "https://www.notion.so/p1",
	}

	tests := []struct {
		name string
		run  map[string]any
		want string
	}{
		{"bold text link", boldLink, "**[x](https://x.io)**"},
		{"href on bracketed text", bracketed, "[[draft] notes](https://y.io)"},
		{"page mention", pageMention, "[p1](p1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := DecodeRichText([]any{tt.run})
			require.NoError(t, err)
			assert.Equal(t, tt.want, RenderRichText(runs))
		})
	}
}

func TestRenderRichText_Mentions(t *testing.T) {
	tests := []struct {
		name    string
		mention map[string]any
		want    string
	}{
		{
			"user",
			map[string]any{"type": "user", "user": map[string]any{"id": "u1", "name": "Ada"}},
			"@Ada",
		},
		{
			"user without name",
			map[string]any{"type": "user", "user": map[string]any{"id": "u1"}},
			"@Unknown",
		},
		{
			"page",
			map[string]any{"type": "page", "page": map[string]any{"id": "p1"}},
			"[p1](p1)",
		},
		{
			"database",
			map[string]any{"type": "database", "database": map[string]any{"id": "d1"}},
			"[d1](d1)",
		},
		{
			"date",
			map[string]any{"type": "date", "date": map[string]any{"start": "2024-01-01", "end": nil}},
			"2024-01-01",
		},
		{
			"date range",
			map[string]any{"type": "date", "date": map[string]any{"start": "2024-01-01", "end": "2024-01-05"}},
			"2024-01-01 → 2024-01-05",
		},
		{
			"link preview",
			map[string]any{"type": "link_preview", "link_preview": map[string]any{"url": "https://l"}},
			"[Link](https://l)",
		},
		{
			"template mention",
			map[string]any{"type": "template_mention", "template_mention": map[string]any{"type": "today"}},
			"[mention]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := DecodeRichText([]any{map[string]any{
				"type":        "mention",
				"mention":     tt.mention,
				"annotations": map[string]any{},
			}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, RenderRichText(runs))
		})
	}
}

func TestRenderRichText_BoldMention(t *testing.T) {
	runs, err := DecodeRichText([]any{map[string]any{
		"type":        "mention",
		"mention":     map[string]any{"type": "user", "user": map[string]any{"name": "Ada"}},
		"annotations": map[string]any{"bold": true},
	}})
	require.NoError(t, err)
	assert.Equal(t, "**@Ada**", RenderRichText(runs))
}

func TestRenderRichText_EquationIgnoresAnnotations(t *testing.T) {
	runs, err := DecodeRichText([]any{map[string]any{
		"type":        "equation",
		"equation":    map[string]any{"expression": "a^2"},
		"annotations": map[string]any{"bold": true},
	}})
	require.NoError(t, err)
	assert.Equal(t, "$a^2$", RenderRichText(runs))
}

func TestRenderRichText_UnknownTypeUsesPlainText(t *testing.T) {
	runs, err := DecodeRichText([]any{map[string]any{"type": "future", "plain_text": "fallback"}})
	require.NoError(t, err)
	assert.Equal(t, "fallback", RenderRichText(runs))
}
