package markdown

import (
	"strings"
)

// RenderRichText concatenates the rendered runs.
func RenderRichText(runs []RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(renderRun(run))
	}
	return sb.String()
}

func renderRun(run RichText) string {
	var content string
	// A run carries at most one link. text.link wins over href, and mentions
	// that render their own link ignore href.
	linked := false

	switch run.Type {
	case "text", "":
		if run.Text != nil {
			content = run.Text.Content
			if run.Text.Link != nil {
				content = "[" + content + "](" + run.Text.Link.URL + ")"
				linked = true
			}
		}
	case "mention":
		content, linked = renderMention(run.Mention)
	case "equation":
		if run.Equation == nil {
			return "$$"
		}
		return "$" + run.Equation.Expression + "$"
	default:
		content = run.PlainText
	}

	content = applyAnnotations(content, run.Annotations)

	if run.Href != "" && !linked {
		content = "[" + content + "](" + run.Href + ")"
	}
	return content
}

func renderMention(m *Mention) (string, bool) {
	if m == nil {
		return "[mention]", false
	}

	switch m.Type {
	case "user":
		name := "Unknown"
		if m.User != nil && m.User.Name != "" {
			name = m.User.Name
		}
		return "@" + name, false
	case "page":
		return referenceLink(m.Page), true
	case "database":
		return referenceLink(m.Database), true
	case "date":
		if m.Date == nil {
			return "", false
		}
		if m.Date.End != "" {
			return m.Date.Start + " → " + m.Date.End, false
		}
		return m.Date.Start, false
	case "link_preview":
		url := ""
		if m.LinkPreview != nil {
			url = m.LinkPreview.URL
		}
		return "[Link](" + url + ")", true
	default:
		return "[mention]", false
	}
}

func referenceLink(ref *Reference) string {
	id := ""
	if ref != nil {
		id = ref.ID
	}
	return "[" + id + "](" + id + ")"
}

// applyAnnotations wraps text innermost to outermost: code, bold, italic,
// strikethrough, underline.
func applyAnnotations(text string, a Annotations) string {
	if text == "" {
		return text
	}
	if a.Code {
		text = "`" + text + "`"
	}
	if a.Bold {
		text = "**" + text + "**"
	}
	if a.Italic {
		text = "*" + text + "*"
	}
	if a.Strikethrough {
		text = "~~" + text + "~~"
	}
	if a.Underline {
		text = "<u>" + text + "</u>"
	}
	return text
}
