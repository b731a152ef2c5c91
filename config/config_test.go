package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "inspectd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
dom:
  initial_depth: 3
css:
  indent: "  "
tracing:
  level:
    webinspect.session: debug
server:
  transport: websocket
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DOM.InitialDepth)
	assert.Equal(t, "  ", cfg.CSS.Indent)
	assert.Equal(t, TransportWebsocket, cfg.Server.Transport)
	assert.Equal(t, "localhost:9222", cfg.Server.Listen, "expected unset keys to keep their default")
	assert.True(t, cfg.Whitespace.SkipText)
	cfg.ApplyTracing()
}

func TestInvalidConfigurations(t *testing.T) {
	for _, content := range []string{
		"server:\n  transport: carrier-pigeon\n",
		"dom:\n  initial_depth: 0\n",
		"css:\n  indent: \"x\"\n",
		"tracing:\n  level:\n    webinspect.dom: loud\n",
	} {
		_, err := Load(writeFile(t, content))
		assert.True(t, errors.Is(err, ErrInvalid), "expected %q to be rejected, have %v", content, err)
	}
	_, err := Load(writeFile(t, "dom: [unclosed"))
	assert.Error(t, err)
}
