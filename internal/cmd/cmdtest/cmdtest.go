// Package cmdtest runs CLI commands against a fake API server.
package cmdtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/internal/config"
)

// Token is the integration token configured by New.
const Token = "secret_test"

// Request is a request received by the fake server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// Handler answers a request with a status code and a JSON body.
type Handler func(r Request) (int, any)

// Harness wires a base.Command to a fake server and captures output.
type Harness struct {
	Command  *base.Command
	Server   *httptest.Server
	Out      *bytes.Buffer
	Err      *bytes.Buffer
	UI       *cli.MockUi
	CacheDir string

	mu       sync.Mutex
	requests []Request
	env      map[string]string
}

// New starts a fake server answering with handler. The command reads no
// user configuration: the token, base URL and cache directory come from a
// fake environment, and the rate limit is raised so tests do not wait.
func New(t *testing.T, handler Handler) *Harness {
	t.Helper()

	h := &Harness{
		Out:      &bytes.Buffer{},
		Err:      &bytes.Buffer{},
		UI:       cli.NewMockUi(),
		CacheDir: filepath.Join(t.TempDir(), "cache"),
	}

	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}

		h.mu.Lock()
		h.requests = append(h.requests, req)
		h.mu.Unlock()

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(h.Server.Close)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.hcl")
	require.NoError(t, os.WriteFile(configFile, []byte(`
requests_per_second = 1000
max_burst           = 100
max_retries         = 1
`), 0o600))

	h.env = map[string]string{
		config.EnvToken:    Token,
		config.EnvBaseURL:  h.Server.URL,
		config.EnvCacheDir: h.CacheDir,
	}

	h.Command = &base.Command{
		Log: hclog.NewNullLogger(),
		UI:  h.UI,
		Out: h.Out,
		Err: h.Err,
		Env: config.LoadOptions{
			ConfigFile: configFile,
			DotEnv:     filepath.Join(dir, "missing.env"),
			LookupEnv:  h.lookupEnv,
		},
	}
	return h
}

func (h *Harness) lookupEnv(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.env[key]
	return v, ok
}

// Setenv sets a variable in the fake environment.
func (h *Harness) Setenv(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.env[key] = value
}

// Unsetenv removes a variable from the fake environment.
func (h *Harness) Unsetenv(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.env, key)
}

// Reset clears captured output between runs.
func (h *Harness) Reset() {
	h.Out.Reset()
	h.Err.Reset()
}

// Requests returns the requests received so far.
func (h *Harness) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Request(nil), h.requests...)
}

// Paths returns "METHOD /path" for every request received.
func (h *Harness) Paths() []string {
	var paths []string
	for _, r := range h.Requests() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	return paths
}

// JSON decodes stdout as a JSON object.
func (h *Harness) JSON(t *testing.T) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(h.Out.Bytes(), &v), "stdout: %s", h.Out.String())
	return v
}

// ErrorJSON decodes stderr as a JSON object.
func (h *Harness) ErrorJSON(t *testing.T) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(h.Err.Bytes(), &v), "stderr: %s", h.Err.String())
	return v
}

// Data returns the data member of the success envelope on stdout.
func (h *Harness) Data(t *testing.T) map[string]any {
	t.Helper()
	env := h.JSON(t)
	require.Equal(t, true, env["success"], "stdout: %s", h.Out.String())
	data, ok := env["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", env["data"])
	return data
}

// Object returns a minimal API object of the given kind.
func Object(kind, id string, fields ...any) map[string]any {
	obj := map[string]any{"object": kind, "id": id}
	for i := 0; i+1 < len(fields); i += 2 {
		obj[fields[i].(string)] = fields[i+1]
	}
	return obj
}

// List returns a list response holding objects.
func List(hasMore bool, nextCursor string, objects ...map[string]any) map[string]any {
	results := make([]any, 0, len(objects))
	for _, o := range objects {
		results = append(results, o)
	}
	resp := map[string]any{"object": "list", "results": results, "has_more": hasMore}
	if nextCursor != "" {
		resp["next_cursor"] = nextCursor
	} else {
		resp["next_cursor"] = nil
	}
	return resp
}

// TextBlock returns a block object holding a single plain text run.
func TextBlock(id, blockType, content string, hasChildren bool) map[string]any {
	run := map[string]any{
		"type": "text",
		"text": map[string]any{"content": content, "link": nil},
		"annotations": map[string]any{
			"bold": false, "italic": false, "strikethrough": false,
			"underline": false, "code": false, "color": "default",
		},
		"plain_text": content,
		"href":       nil,
	}
	return Object("block", id,
		"type", blockType,
		blockType, map[string]any{"rich_text": []any{run}},
		"has_children", hasChildren,
	)
}
