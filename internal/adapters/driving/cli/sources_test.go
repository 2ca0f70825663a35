package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

func TestSourcesCmd_Use(t *testing.T) {
	assert.Equal(t, "sources", sourcesCmd.Use)
}

func TestSourcesCmd_NoRegistryConfigured(t *testing.T) {
	prev := sourceRegistry
	sourceRegistry = nil
	defer func() { sourceRegistry = prev }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sources"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSourcesCmd_ListsAdapters(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sources"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Registered sources (2)")
	assert.Contains(t, out, "rightmove")
	assert.Contains(t, out, "radius-scoped, price-filter")
	assert.Contains(t, out, "pugh")
	assert.Contains(t, out, "auction")
}

func TestSourcesCmd_EmptyRegistry(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	sourceRegistry = &stubRegistry{adapters: map[string]driven.SourceAdapter{}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sources"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No sources registered.")
}
