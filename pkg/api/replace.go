package api

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"
)

// ReplaceResult summarizes a find and replace over a page.
type ReplaceResult struct {
	// Matched is the number of text blocks containing a match.
	Matched int `json:"matched" yaml:"matched"`

	// Updated is the number of blocks successfully rewritten.
	Updated int `json:"updated" yaml:"updated"`

	// DryRun is set when no blocks were written.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// Replace rewrites every text run of the page's text blocks matching re,
// expanding repl as in regexp.ReplaceAllString. Every matching block is
// attempted; failures are returned together.
func (s *PagesService) Replace(ctx context.Context, pageID string, re *regexp.Regexp, repl string, dryRun bool) (ReplaceResult, error) {
	result := ReplaceResult{DryRun: dryRun}

	blocks, err := s.Content(ctx, pageID)
	if err != nil {
		return result, fmt.Errorf("error fetching page content: %w", err)
	}

	var merr *multierror.Error
	walkBlocks(blocks, func(block map[string]any) {
		blockType, ok := isTextBlock(block)
		if !ok {
			return
		}
		body, _ := block[blockType].(map[string]any)
		runs, changed := replaceRuns(Objects(body["rich_text"]), re, repl)
		if !changed {
			return
		}
		result.Matched++
		if dryRun {
			return
		}

		id, _ := block["id"].(string)
		s.logger.Debug("rewriting block", "block", id, "type", blockType)
		update := map[string]any{blockType: map[string]any{"rich_text": runs}}
		if _, err := s.blocks.Update(ctx, id, update, nil); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", describeBlock(block), err))
			return
		}
		result.Updated++
	})

	return result, merr.ErrorOrNil()
}

// walkBlocks visits blocks depth first, parents before children.
func walkBlocks(blocks []map[string]any, fn func(map[string]any)) {
	for _, block := range blocks {
		fn(block)
		walkBlocks(Objects(block["children"]), fn)
	}
}

// replaceRuns returns writable copies of runs with re replaced in text
// content, and whether anything changed. Mentions and equations are kept
// as they are.
func replaceRuns(runs []map[string]any, re *regexp.Regexp, repl string) ([]any, bool) {
	out := make([]any, 0, len(runs))
	changed := false

	for _, run := range runs {
		runType, _ := run["type"].(string)
		w := map[string]any{"type": runType}
		if ann, ok := run["annotations"]; ok {
			w["annotations"] = ann
		}

		if runType != "text" {
			w[runType] = run[runType]
			out = append(out, w)
			continue
		}

		text, _ := run["text"].(map[string]any)
		content, _ := text["content"].(string)
		replaced := re.ReplaceAllString(content, repl)
		if replaced != content {
			changed = true
		}

		t := map[string]any{"content": replaced}
		if link, ok := text["link"]; ok && link != nil {
			t["link"] = link
		}
		w["text"] = t
		out = append(out, w)
	}

	return out, changed
}
