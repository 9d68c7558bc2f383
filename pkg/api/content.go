package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

// textBlockTypes are the block types whose body is a rich_text array.
var textBlockTypes = map[string]bool{
	"paragraph":          true,
	"heading_1":          true,
	"heading_2":          true,
	"heading_3":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"to_do":              true,
	"toggle":             true,
	"quote":              true,
	"callout":            true,
	"code":               true,
	"template":           true,
}

// RichText returns a single plain text run.
func RichText(content string) []any {
	return []any{
		map[string]any{
			"type": "text",
			"text": map[string]any{"content": content},
		},
	}
}

// TitleProperty returns a title property value.
func TitleProperty(title string) map[string]any {
	return map[string]any{"title": RichText(title)}
}

// NormalizeBlockType maps user spellings such as "Heading 1", "heading-1" or
// "BulletedListItem" to the API block type.
func NormalizeBlockType(s string) string {
	t := strcase.ToSnake(strings.TrimSpace(s))
	switch t {
	case "h_1", "h_2", "h_3":
		return "heading_" + t[2:]
	case "todo":
		return "to_do"
	case "bullet":
		return "bulleted_list_item"
	case "number", "numbered":
		return "numbered_list_item"
	default:
		return t
	}
}

// TextBlock builds a block of a text type holding content.
func TextBlock(blockType, content string) (map[string]any, error) {
	t := NormalizeBlockType(blockType)
	if !textBlockTypes[t] {
		return nil, client.NewError(client.KindValidation, "block type %q does not hold text", blockType)
	}
	return map[string]any{
		"object": "block",
		"type":   t,
		t:        map[string]any{"rich_text": RichText(content)},
	}, nil
}

// ParseBlocks accepts block children as a JSON array of block objects, or as
// plain text where each non-blank line becomes a block of blockType.
func ParseBlocks(flag, value, blockType string) ([]any, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "[") {
		var blocks []any
		if err := DecodeJSON(flag, value, &blocks); err != nil {
			return nil, err
		}
		return blocks, nil
	}

	var blocks []any
	for _, line := range strings.Split(value, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		block, err := TextBlock(blockType, line)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// ParseIcon accepts an icon as a JSON object, an image URL, or a single
// emoji.
func ParseIcon(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "{"):
		var icon map[string]any
		if err := json.Unmarshal([]byte(s), &icon); err != nil {
			return nil, client.NewError(client.KindValidation, "invalid icon JSON: %v", err)
		}
		return icon, nil
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return ExternalFile(s), nil
	case gomoji.ContainsEmoji(s) && strings.TrimSpace(gomoji.RemoveEmojis(s)) == "":
		return map[string]any{"type": "emoji", "emoji": s}, nil
	default:
		return nil, client.NewError(client.KindValidation, "icon must be an emoji, a URL or a JSON object, got %q", s)
	}
}

// ParseCover accepts a cover as a JSON object or an image URL.
func ParseCover(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "{"):
		var cover map[string]any
		if err := json.Unmarshal([]byte(s), &cover); err != nil {
			return nil, client.NewError(client.KindValidation, "invalid cover JSON: %v", err)
		}
		return cover, nil
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return ExternalFile(s), nil
	default:
		return nil, client.NewError(client.KindValidation, "cover must be a URL or a JSON object, got %q", s)
	}
}

// ExternalFile references an externally hosted file.
func ExternalFile(url string) map[string]any {
	return map[string]any{"type": "external", "external": map[string]any{"url": url}}
}

// DecodeJSON parses a JSON flag value into out, reporting failures as
// validation errors.
func DecodeJSON(flag, value string, out any) error {
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return client.NewError(client.KindValidation, "invalid JSON for %s: %v", flag, err)
	}
	return nil
}

// isTextBlock reports whether a block object carries a rich_text body.
func isTextBlock(block map[string]any) (string, bool) {
	t, _ := block["type"].(string)
	return t, textBlockTypes[t]
}

func describeBlock(block map[string]any) string {
	id, _ := block["id"].(string)
	t, _ := block["type"].(string)
	return fmt.Sprintf("%s block %s", t, id)
}
