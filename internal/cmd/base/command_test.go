package base_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/cmdtest"
	"github.com/hashicorp-forge/notion-cli/internal/config"
	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

func ok(cmdtest.Request) (int, any) {
	return http.StatusOK, cmdtest.Object("user", "me")
}

func TestArgs(t *testing.T) {
	assert.NoError(t, base.Args(nil))
	assert.NoError(t, base.Args([]string{"a"}, "PAGE_ID"))

	err := base.Args([]string{"a", "b"}, "PAGE_ID")
	require.Error(t, err)
	assert.Equal(t, 4, client.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "expected 1 argument(s) [PAGE_ID], got 2")
}

func TestID(t *testing.T) {
	id, err := base.ID("page ID", "https://www.notion.so/Roadmap-0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", id)

	_, err = base.ID("page ID", "roadmap")
	require.Error(t, err)
	assert.Equal(t, 4, client.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "invalid page ID")
}

func TestSettings(t *testing.T) {
	h := cmdtest.New(t, ok)

	g := &base.GlobalFlags{Token: "secret_flag", Format: "yaml", NoCache: true, Debug: true}
	s, err := h.Command.Settings(g)
	require.NoError(t, err)

	assert.Equal(t, "secret_flag", s.Token)
	assert.Equal(t, "yaml", s.OutputFormat)
	assert.False(t, s.CacheEnabled())
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, h.Server.URL, s.BaseURL)
	assert.Equal(t, 1000.0, s.RequestsPerSecond)
}

func TestSettings_Invalid(t *testing.T) {
	h := cmdtest.New(t, ok)

	_, err := h.Command.Settings(&base.GlobalFlags{Format: "xml"})
	require.Error(t, err)
	assert.Equal(t, 4, client.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestFail(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		h := cmdtest.New(t, ok)

		code := h.Command.Fail(&base.GlobalFlags{}, client.NewError(client.KindRateLimit, "slow down"))
		assert.Equal(t, 5, code)

		env := h.ErrorJSON(t)
		assert.Equal(t, true, env["error"])
		assert.Equal(t, "rate_limited", env["code"])
		assert.Equal(t, "slow down", env["message"])
	})

	t.Run("requested format", func(t *testing.T) {
		h := cmdtest.New(t, ok)

		code := h.Command.Fail(&base.GlobalFlags{Format: "yaml"}, errors.New("boom"))
		assert.Equal(t, 1, code)
		assert.Contains(t, h.Err.String(), "code: unexpected_error\n")
		assert.Contains(t, h.Err.String(), "message: boom\n")
	})

	t.Run("invalid format falls back to json", func(t *testing.T) {
		h := cmdtest.New(t, ok)

		code := h.Command.Fail(&base.GlobalFlags{Format: "xml"}, client.NewError(client.KindConflict, "conflict"))
		assert.Equal(t, 9, code)
		assert.Equal(t, "conflict", h.ErrorJSON(t)["code"])
	})
}

func TestExecute(t *testing.T) {
	h := cmdtest.New(t, ok)

	var called bool
	code := h.Command.Execute(&base.GlobalFlags{}, func(ctx context.Context, s *base.Session) error {
		called = true
		require.NotNil(t, s.API)
		resp, err := s.API.Users.Me(ctx)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
	require.Equal(t, 0, code, h.Err.String())
	assert.True(t, called)
	assert.Equal(t, "me", h.Data(t)["id"])
}

func TestExecute_Error(t *testing.T) {
	h := cmdtest.New(t, ok)

	code := h.Command.Execute(&base.GlobalFlags{Format: "pretty"}, func(context.Context, *base.Session) error {
		return client.NewError(client.KindPermissionDenied, "no access")
	})
	assert.Equal(t, 6, code)
	assert.Empty(t, h.Out.String())
	assert.Equal(t, "permission_denied", h.ErrorJSON(t)["code"])
}

func TestExecute_MissingToken(t *testing.T) {
	h := cmdtest.New(t, ok)
	h.Unsetenv(config.EnvToken)

	var called bool
	code := h.Command.Execute(&base.GlobalFlags{}, func(context.Context, *base.Session) error {
		called = true
		return nil
	})
	assert.Equal(t, 2, code)
	assert.False(t, called)
	assert.Empty(t, h.Requests())
}
