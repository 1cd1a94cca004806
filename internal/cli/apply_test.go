package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPage(t *testing.T, dir, name, id string) string {
	t.Helper()
	page := fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>t</title></head>
<body style="background-color: #ffffff; color: #222222">
<p id=%q>readable text</p>
</body></html>`, id)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(page), 0644))
	return path
}

func TestApplyManyFilesKeepsStdoutOrdered(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	files := []string{
		writeTestPage(t, dir, "alpha.html", "doc-alpha"),
		writeTestPage(t, dir, "bravo.html", "doc-bravo"),
		writeTestPage(t, dir, "charlie.html", "doc-charlie"),
	}

	cmd := NewApplyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--force", "--strategy", "photon-inverter"}, files...))
	require.NoError(t, cmd.Execute())

	got := out.String()
	// Three whole documents, each kept contiguous and in input order even
	// though the theming itself runs concurrently.
	assert.Equal(t, 3, strings.Count(got, "<html"))
	assert.Equal(t, 3, strings.Count(got, "</html>"))

	alpha := strings.Index(got, "doc-alpha")
	bravo := strings.Index(got, "doc-bravo")
	charlie := strings.Index(got, "doc-charlie")
	require.NotEqual(t, -1, alpha)
	require.NotEqual(t, -1, bravo)
	require.NotEqual(t, -1, charlie)
	assert.Less(t, alpha, bravo)
	assert.Less(t, bravo, charlie)

	// Each document closes before the next one opens.
	assert.Less(t, strings.Index(got, "</html>"), bravo)
	assert.Less(t, strings.LastIndex(got[:charlie], "</html>"), charlie)
}

func TestApplyWriteInPlaceLeavesStdoutEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	file := writeTestPage(t, dir, "page.html", "doc-page")

	cmd := NewApplyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--force", "--write", "--strategy", "photon-inverter", file})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, out.String())
	rewritten, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(rewritten), "umbra-photon")
}

func TestApplyRejectsOutputWithManyFiles(t *testing.T) {
	cmd := NewApplyCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--output", "out.html", "a.html", "b.html"})
	assert.Error(t, cmd.Execute())
}
