package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/memodb-io/sitestore/internal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	site := types.Site{HTML: "<h1>hi</h1>", JS: "console.log(1)"}

	require.NoError(t, writeSite(dir, site))
	_, err := os.Stat(filepath.Join(dir, "styles.css"))
	assert.True(t, os.IsNotExist(err))

	got, err := readSite(dir)
	require.NoError(t, err)
	assert.Equal(t, site, got)
}

func TestWriteSite_DropsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeSite(dir, types.Site{HTML: "<p>old</p>", CSS: "p{}", JS: "alert(1)"}))

	require.NoError(t, writeSite(dir, types.Site{HTML: "<p>new</p>"}))
	for _, name := range []string{"styles.css", "script.js"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}

	got, err := readSite(dir)
	require.NoError(t, err)
	assert.Equal(t, types.Site{HTML: "<p>new</p>"}, got)
}

func TestReadSite_Empty(t *testing.T) {
	_, err := readSite(t.TempDir())
	assert.Error(t, err)
}

func TestRootCmd_RequiresProject(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"push"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}
