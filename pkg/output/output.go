// Package output writes command results and errors as JSON, YAML or
// Markdown envelopes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hashicorp-forge/notion-cli/pkg/client"
	"github.com/hashicorp-forge/notion-cli/pkg/markdown"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCompact  Format = "compact"
	FormatPretty   Format = "pretty"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted formats.
var Formats = []Format{FormatJSON, FormatPretty, FormatCompact, FormatYAML, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", client.NewError(client.KindValidation, "unknown output format %q", s)
}

// Envelope wraps a successful result.
type Envelope struct {
	Success  bool     `json:"success" yaml:"success"`
	Data     any      `json:"data" yaml:"data"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata describes how a result was obtained.
type Metadata struct {
	Cached    *bool  `json:"cached,omitempty" yaml:"cached,omitempty"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// ListData is the data of a list envelope.
type ListData struct {
	Results    []map[string]any `json:"results" yaml:"results"`
	Count      int              `json:"count" yaml:"count"`
	HasMore    bool             `json:"has_more,omitempty" yaml:"has_more,omitempty"`
	NextCursor string           `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
}

// ErrorEnvelope describes a failed command.
type ErrorEnvelope struct {
	Error   bool           `json:"error" yaml:"error"`
	Code    string         `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Printer writes envelopes in one format.
type Printer struct {
	Format Format
	Out    io.Writer

	// Now stamps envelopes. Default: time.Now
	Now func() time.Time
}

// New creates a Printer.
func New(format Format, out io.Writer) *Printer {
	return &Printer{Format: format, Out: out, Now: time.Now}
}

func (p *Printer) timestamp() string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}

// Success writes a single result. In Markdown format, block listings are
// rendered as a document.
func (p *Printer) Success(data map[string]any, cached bool) error {
	if p.Format == FormatMarkdown {
		if blocks, ok := blockList(data["results"]); ok {
			return p.markdown(blocks)
		}
	}

	return p.encode(Envelope{
		Success: true,
		Data:    data,
		Metadata: Metadata{
			Cached:    &cached,
			Timestamp: p.timestamp(),
		},
	})
}

// Value writes an arbitrary result, such as a summary built by the CLI.
func (p *Printer) Value(data any) error {
	return p.encode(Envelope{
		Success:  true,
		Data:     data,
		Metadata: Metadata{Timestamp: p.timestamp()},
	})
}

// List writes an accumulated listing.
func (p *Printer) List(items []map[string]any, hasMore bool, nextCursor string) error {
	if items == nil {
		items = []map[string]any{}
	}

	if p.Format == FormatMarkdown {
		if blocks, ok := blockList(items); ok {
			return p.markdown(blocks)
		}
	}

	data := ListData{Results: items, Count: len(items)}
	if hasMore {
		data.HasMore = true
		data.NextCursor = nextCursor
	}
	return p.encode(Envelope{
		Success:  true,
		Data:     data,
		Metadata: Metadata{Timestamp: p.timestamp()},
	})
}

// Markdown writes block objects rendered as Markdown.
func (p *Printer) Markdown(blocks []map[string]any) error {
	return p.markdown(blocks)
}

// Error writes the error envelope for err.
func (p *Printer) Error(err error) error {
	return p.encode(ErrorOf(err))
}

// ErrorOf builds the error envelope for err. Errors outside the API error
// taxonomy are reported as unexpected_error.
func ErrorOf(err error) ErrorEnvelope {
	if apiErr, ok := client.AsAPIError(err); ok {
		return ErrorEnvelope{
			Error:   true,
			Code:    apiErr.Code(),
			Message: apiErr.Message,
			Details: apiErr.Details(),
		}
	}
	return ErrorEnvelope{
		Error:   true,
		Code:    "unexpected_error",
		Message: err.Error(),
	}
}

func (p *Printer) markdown(blocks []map[string]any) error {
	text, err := markdown.Render(blocks)
	if err != nil {
		return fmt.Errorf("error rendering markdown: %w", err)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err = io.WriteString(p.Out, text)
	return err
}

func (p *Printer) encode(v any) error {
	switch p.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatPretty, FormatMarkdown:
		return encodeJSON(p.Out, v, "  ")
	default:
		return encodeJSON(p.Out, v, "")
	}
}

func encodeJSON(w io.Writer, v any, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding json: %w", err)
	}
	return nil
}

// blockList returns v as block objects when every element is one.
func blockList(v any) ([]map[string]any, bool) {
	var objects []map[string]any
	switch items := v.(type) {
	case []map[string]any:
		objects = items
	case []any:
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			objects = append(objects, obj)
		}
	default:
		return nil, false
	}
	if len(objects) == 0 {
		return nil, false
	}

	for _, obj := range objects {
		if obj["object"] != "block" {
			return nil, false
		}
	}
	return objects, true
}
