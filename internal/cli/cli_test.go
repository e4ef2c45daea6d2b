package cli

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketkit/internal/models"
)

func TestParseRequiresCommand(t *testing.T) {
	_, err := Parse(nil, io.Discard)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = Parse([]string{"frobnicate"}, io.Discard)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestParseLogin(t *testing.T) {
	cmd, err := Parse([]string{"login", "-mode", "browser", "-port", "9090", "-config", "/tmp/p.yaml"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "login", cmd.Name)
	assert.Equal(t, "browser", cmd.LoginMode)
	assert.Equal(t, 9090, cmd.LoginPort)
	assert.Equal(t, "/tmp/p.yaml", cmd.ConfigPath)
	assert.Equal(t, 9090, cmd.CallbackPort(8081))
}

func TestParseLoginCallbackPort(t *testing.T) {
	cmd, err := Parse([]string{"login"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8081, cmd.CallbackPort(8081))

	cmd, err = Parse([]string{"login", "-port", "0"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, cmd.CallbackPort(8081))
}

func TestParseAdd(t *testing.T) {
	cmd, err := Parse([]string{"add", "-url", "https://example.com", "-title", "Ex", "-tags", "go, news,"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigPath, cmd.ConfigPath)
	assert.Equal(t, models.AddRequest{URL: "https://example.com", Title: "Ex", Tags: []string{"go", "news"}}, cmd.Add)
}

func TestParseGet(t *testing.T) {
	cmd, err := Parse([]string{"get", "-state", "unread", "-sort", "oldest", "-detail", "complete", "-count", "3", "-since", "1672531200"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, models.StateUnread, cmd.Retrieve.State)
	assert.Equal(t, models.SortOldest, cmd.Retrieve.Sort)
	assert.Equal(t, models.DetailComplete, cmd.Retrieve.DetailType)
	assert.Equal(t, 3, cmd.Retrieve.Count)
	require.NotNil(t, cmd.Retrieve.Since)
	assert.True(t, cmd.Retrieve.Since.Equal(time.Unix(1672531200, 0)))
}

func TestParseModify(t *testing.T) {
	cmd, err := Parse([]string{"archive", "-id", "1,2", "3"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "archive", cmd.Name)
	assert.Equal(t, []string{"1", "2", "3"}, cmd.ItemIDs)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"add", "-bogus"}, io.Discard)
	assert.Error(t, err)
}
