package markdown

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Block is a content block with its children attached. Content holds the
// payload found under the block's type key.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Content     Content
	Children    []Block
}

// Content is the union of the per-type block payloads. Each block type only
// populates the fields it uses.
type Content struct {
	RichText []RichText `mapstructure:"rich_text"`
	Caption  []RichText `mapstructure:"caption"`

	// Checked is set for to_do blocks.
	Checked bool `mapstructure:"checked"`

	// Language is set for code blocks.
	Language string `mapstructure:"language"`

	// Icon is set for callout blocks.
	Icon *Icon `mapstructure:"icon"`

	// Type is the source kind for media blocks ("external" or "file") and the
	// target kind for link_to_page ("page_id" or "database_id").
	Type     string   `mapstructure:"type"`
	External *FileRef `mapstructure:"external"`
	File     *FileRef `mapstructure:"file"`
	Name     *string  `mapstructure:"name"`

	URL        string       `mapstructure:"url"`
	Title      string       `mapstructure:"title"`
	Expression string       `mapstructure:"expression"`
	Cells      [][]RichText `mapstructure:"cells"`
	PageID     string       `mapstructure:"page_id"`
	DatabaseID string       `mapstructure:"database_id"`
}

// SourceURL returns the URL of a media payload for its source kind.
func (c Content) SourceURL() string {
	switch {
	case c.Type == "external" && c.External != nil:
		return c.External.URL
	case c.Type == "file" && c.File != nil:
		return c.File.URL
	default:
		return ""
	}
}

// FileRef points at an externally hosted or uploaded file.
type FileRef struct {
	URL string `mapstructure:"url"`
}

// Icon is a page or callout icon.
type Icon struct {
	Type     string   `mapstructure:"type"`
	Emoji    string   `mapstructure:"emoji"`
	External *FileRef `mapstructure:"external"`
}

// RichText is one inline run.
type RichText struct {
	Type        string      `mapstructure:"type"`
	PlainText   string      `mapstructure:"plain_text"`
	Href        string      `mapstructure:"href"`
	Text        *Text       `mapstructure:"text"`
	Mention     *Mention    `mapstructure:"mention"`
	Equation    *Equation   `mapstructure:"equation"`
	Annotations Annotations `mapstructure:"annotations"`
}

// Text is the payload of a text run.
type Text struct {
	Content string `mapstructure:"content"`
	Link    *Link  `mapstructure:"link"`
}

// Link is a hyperlink target.
type Link struct {
	URL string `mapstructure:"url"`
}

// Mention is the payload of a mention run.
type Mention struct {
	Type        string     `mapstructure:"type"`
	User        *User      `mapstructure:"user"`
	Page        *Reference `mapstructure:"page"`
	Database    *Reference `mapstructure:"database"`
	Date        *DateRange `mapstructure:"date"`
	LinkPreview *Link      `mapstructure:"link_preview"`
}

// User is a mentioned workspace member.
type User struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// Reference identifies a mentioned page or database.
type Reference struct {
	ID string `mapstructure:"id"`
}

// DateRange is a mentioned date. End is empty for single dates.
type DateRange struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// Equation is the payload of an equation run.
type Equation struct {
	Expression string `mapstructure:"expression"`
}

// Annotations are the styles applied to a run. Color has no Markdown
// equivalent and is ignored when rendering.
type Annotations struct {
	Bold          bool   `mapstructure:"bold"`
	Italic        bool   `mapstructure:"italic"`
	Strikethrough bool   `mapstructure:"strikethrough"`
	Underline     bool   `mapstructure:"underline"`
	Code          bool   `mapstructure:"code"`
	Color         string `mapstructure:"color"`
}

type rawBlock struct {
	ID          string           `mapstructure:"id"`
	Type        string           `mapstructure:"type"`
	HasChildren bool             `mapstructure:"has_children"`
	Children    []map[string]any `mapstructure:"children"`
	Rest        map[string]any   `mapstructure:",remain"`
}

// DecodeBlocks converts block objects as returned by the API, with children
// attached under "children", into typed blocks.
func DecodeBlocks(raw []map[string]any) ([]Block, error) {
	blocks := make([]Block, 0, len(raw))
	for i, r := range raw {
		b, err := DecodeBlock(r)
		if err != nil {
			return nil, fmt.Errorf("error decoding block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeBlock converts one block object and its children.
func DecodeBlock(raw map[string]any) (Block, error) {
	var rb rawBlock
	if err := decode(raw, &rb); err != nil {
		return Block{}, err
	}

	b := Block{
		ID:          rb.ID,
		Type:        rb.Type,
		HasChildren: rb.HasChildren,
	}

	if payload, ok := rb.Rest[rb.Type]; ok && payload != nil {
		if err := decode(payload, &b.Content); err != nil {
			return Block{}, fmt.Errorf("error decoding %s payload of block %q: %w", rb.Type, rb.ID, err)
		}
	}

	if len(rb.Children) > 0 {
		children, err := DecodeBlocks(rb.Children)
		if err != nil {
			return Block{}, fmt.Errorf("error decoding children of block %q: %w", rb.ID, err)
		}
		b.Children = children
	}

	return b, nil
}

// DecodeRichText converts a rich_text array as returned by the API.
func DecodeRichText(raw any) ([]RichText, error) {
	var runs []RichText
	if err := decode(raw, &runs); err != nil {
		return nil, fmt.Errorf("error decoding rich text: %w", err)
	}
	return runs, nil
}

func decode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
