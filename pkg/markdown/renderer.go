// Package markdown renders block trees as Markdown. Constructs without a
// Markdown equivalent (toggles, underline, column layouts) fall back to
// inline HTML.
package markdown

import (
	"strconv"
	"strings"
)

const numberedListItem = "numbered_list_item"

type handlerFunc func(r *Renderer, b Block, depth int) string

// handlers is the dispatch table from block type to renderer. It is filled
// in init because the handlers recurse through RenderBlock.
var handlers map[string]handlerFunc

// ownsChildren lists the block types whose handler renders the children
// itself.
var ownsChildren = map[string]bool{
	"table":       true,
	"column_list": true,
	"toggle":      true,
}

func init() {
	handlers = map[string]handlerFunc{
		"paragraph":          (*Renderer).paragraph,
		"heading_1":          heading("# "),
		"heading_2":          heading("## "),
		"heading_3":          heading("### "),
		"bulleted_list_item": (*Renderer).bulletedListItem,
		numberedListItem:     (*Renderer).numberedListItem,
		"to_do":              (*Renderer).toDo,
		"code":               (*Renderer).code,
		"quote":              (*Renderer).quote,
		"callout":            (*Renderer).callout,
		"divider":            (*Renderer).divider,
		"toggle":             (*Renderer).toggle,
		"table":              (*Renderer).table,
		"table_row":          empty,
		"column_list":        (*Renderer).columnList,
		"column":             empty,
		"image":              (*Renderer).image,
		"video":              (*Renderer).video,
		"file":               (*Renderer).file,
		"pdf":                (*Renderer).pdf,
		"bookmark":           (*Renderer).bookmark,
		"link_preview":       (*Renderer).linkPreview,
		"embed":              (*Renderer).embed,
		"child_page":         (*Renderer).childPage,
		"child_database":     (*Renderer).childDatabase,
		"synced_block":       empty,
		"template":           (*Renderer).template,
		"link_to_page":       (*Renderer).linkToPage,
		"equation":           (*Renderer).equation,
		"breadcrumb":         empty,
		"table_of_contents":  (*Renderer).tableOfContents,
	}
}

// Renderer converts blocks to Markdown. It tracks numbered list positions
// across calls, so use a new Renderer for every document.
type Renderer struct {
	counters map[int]int
	lastType string
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{counters: map[int]int{}}
}

// Render decodes raw API blocks and renders them with a new Renderer.
func Render(raw []map[string]any) (string, error) {
	blocks, err := DecodeBlocks(raw)
	if err != nil {
		return "", err
	}
	return New().RenderBlocks(blocks), nil
}

// RenderBlocks renders top-level blocks, joining non-empty renderings with a
// newline.
func (r *Renderer) RenderBlocks(blocks []Block) string {
	return r.join(blocks, 0)
}

// RenderBlock renders one block and its children at the given nesting depth.
func (r *Renderer) RenderBlock(b Block, depth int) string {
	if b.Type != numberedListItem && r.lastType == numberedListItem {
		r.counters = map[int]int{}
	}
	r.lastType = b.Type

	handler, ok := handlers[b.Type]
	if !ok {
		handler = (*Renderer).unsupported
	}
	result := handler(r, b, depth)

	if len(b.Children) > 0 && !ownsChildren[b.Type] {
		if children := r.join(b.Children, depth+1); children != "" {
			result += children
			if !strings.HasSuffix(result, "\n") {
				result += "\n"
			}
		}
	}

	return result
}

func (r *Renderer) join(blocks []Block, depth int) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if rendered := r.RenderBlock(b, depth); rendered != "" {
			lines = append(lines, rendered)
		}
	}
	return strings.Join(lines, "\n")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func empty(*Renderer, Block, int) string { return "" }

func heading(prefix string) handlerFunc {
	return func(_ *Renderer, b Block, _ int) string {
		return prefix + RenderRichText(b.Content.RichText) + "\n"
	}
}

func (r *Renderer) paragraph(b Block, depth int) string {
	return indent(depth) + RenderRichText(b.Content.RichText) + "\n"
}

func (r *Renderer) bulletedListItem(b Block, depth int) string {
	return indent(depth) + "- " + RenderRichText(b.Content.RichText) + "\n"
}

func (r *Renderer) numberedListItem(b Block, depth int) string {
	r.counters[depth]++
	for d := range r.counters {
		if d > depth {
			delete(r.counters, d)
		}
	}
	return indent(depth) + strconv.Itoa(r.counters[depth]) + ". " + RenderRichText(b.Content.RichText) + "\n"
}

func (r *Renderer) toDo(b Block, depth int) string {
	box := "[ ]"
	if b.Content.Checked {
		box = "[x]"
	}
	return indent(depth) + "- " + box + " " + RenderRichText(b.Content.RichText) + "\n"
}

func (r *Renderer) code(b Block, depth int) string {
	text := RenderRichText(b.Content.RichText)
	fence := "```" + b.Content.Language
	if depth == 0 {
		return fence + "\n" + text + "\n```\n"
	}

	pad := indent(depth)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return pad + fence + "\n" + strings.Join(lines, "\n") + "\n" + pad + "```\n"
}

func (r *Renderer) quote(b Block, depth int) string {
	pad := indent(depth)
	lines := strings.Split(RenderRichText(b.Content.RichText), "\n")
	for i, line := range lines {
		lines[i] = pad + "> " + line
	}
	return strings.Join(lines, "\n") + "\n"
}

func (r *Renderer) callout(b Block, depth int) string {
	text := RenderRichText(b.Content.RichText)

	icon := ""
	if i := b.Content.Icon; i != nil {
		switch {
		case i.Type == "emoji":
			icon = i.Emoji
		case i.Type == "external" && i.External != nil:
			icon = i.External.URL
		}
	}

	if icon != "" {
		return indent(depth) + "> " + icon + " " + text + "\n"
	}
	return indent(depth) + "> " + text + "\n"
}

func (r *Renderer) divider(_ Block, depth int) string {
	return indent(depth) + "---\n"
}

// toggle renders as a details element with the children inside it.
func (r *Renderer) toggle(b Block, depth int) string {
	pad := indent(depth)

	var sb strings.Builder
	sb.WriteString(pad + "<details>\n" + pad + "<summary>" + RenderRichText(b.Content.RichText) + "</summary>\n\n")
	for _, child := range b.Children {
		sb.WriteString(r.RenderBlock(child, depth+1))
	}
	sb.WriteString("\n" + pad + "</details>\n")
	return sb.String()
}

// table renders the table_row children as a pipe table. The first row is the
// header and sets the column count; shorter rows are padded.
func (r *Renderer) table(b Block, depth int) string {
	if len(b.Children) == 0 {
		return ""
	}

	pad := indent(depth)
	cols := len(b.Children[0].Content.Cells)
	separator := make([]string, cols)
	for i := range separator {
		separator[i] = "---"
	}

	lines := make([]string, 0, len(b.Children)+1)
	for i, row := range b.Children {
		cells := make([]string, 0, cols)
		for _, cell := range row.Content.Cells {
			cells = append(cells, RenderRichText(cell))
		}
		for len(cells) < cols {
			cells = append(cells, "")
		}
		lines = append(lines, pad+"| "+strings.Join(cells, " | ")+" |")

		if i == 0 {
			lines = append(lines, pad+"|"+strings.Join(separator, "|")+"|")
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// columnList renders each column's blocks in sequence at the list's depth.
func (r *Renderer) columnList(b Block, depth int) string {
	var sb strings.Builder
	for i, column := range b.Children {
		if len(column.Children) == 0 {
			continue
		}
		sb.WriteString("<!-- Column " + strconv.Itoa(i+1) + " -->\n")
		for _, child := range column.Children {
			sb.WriteString(r.RenderBlock(child, depth))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) image(b Block, depth int) string {
	caption := RenderRichText(b.Content.Caption)
	return indent(depth) + "![" + caption + "](" + b.Content.SourceURL() + ")\n"
}

func (r *Renderer) video(b Block, depth int) string {
	return indent(depth) + "[Video](" + b.Content.SourceURL() + ")\n"
}

func (r *Renderer) file(b Block, depth int) string {
	display := RenderRichText(b.Content.Caption)
	if display == "" {
		// An explicit empty name is kept; only a missing one falls back.
		display = "File"
		if b.Content.Name != nil {
			display = *b.Content.Name
		}
	}
	return indent(depth) + "[File: " + display + "](" + b.Content.SourceURL() + ")\n"
}

func (r *Renderer) pdf(b Block, depth int) string {
	return indent(depth) + captionedLink("PDF", RenderRichText(b.Content.Caption), b.Content.SourceURL())
}

func (r *Renderer) bookmark(b Block, depth int) string {
	caption := RenderRichText(b.Content.Caption)
	if caption == "" {
		caption = "Bookmark"
	}
	return indent(depth) + "[" + caption + "](" + b.Content.URL + ")\n"
}

func (r *Renderer) linkPreview(b Block, depth int) string {
	return indent(depth) + "[Link](" + b.Content.URL + ")\n"
}

func (r *Renderer) embed(b Block, depth int) string {
	return indent(depth) + captionedLink("Embed", RenderRichText(b.Content.Caption), b.Content.URL)
}

// captionedLink renders "[Label: caption](url)", or "[Label](url)" without a
// caption.
func captionedLink(label, caption, url string) string {
	if caption != "" {
		return "[" + label + ": " + caption + "](" + url + ")\n"
	}
	return "[" + label + "](" + url + ")\n"
}

func (r *Renderer) childPage(b Block, depth int) string {
	return indent(depth) + "[Page: " + titleOrUntitled(b.Content.Title) + "](" + b.ID + ")\n"
}

func (r *Renderer) childDatabase(b Block, depth int) string {
	return indent(depth) + "[Database: " + titleOrUntitled(b.Content.Title) + "](" + b.ID + ")\n"
}

func titleOrUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

func (r *Renderer) template(b Block, depth int) string {
	return indent(depth) + "[Template: " + RenderRichText(b.Content.RichText) + "]\n"
}

func (r *Renderer) linkToPage(b Block, _ int) string {
	switch b.Content.Type {
	case "page_id":
		return "[Page](" + b.Content.PageID + ")\n"
	case "database_id":
		return "[Database](" + b.Content.DatabaseID + ")\n"
	default:
		return "[Link]\n"
	}
}

func (r *Renderer) equation(b Block, depth int) string {
	pad := indent(depth)
	return pad + "$$\n" + pad + b.Content.Expression + "\n" + pad + "$$\n"
}

func (r *Renderer) tableOfContents(Block, int) string {
	return "[Table of Contents]\n"
}

func (r *Renderer) unsupported(b Block, depth int) string {
	t := b.Type
	if t == "" {
		t = "unknown"
	}
	return indent(depth) + "[unsupported: " + t + "]\n"
}
