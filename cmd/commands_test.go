package main

import (
	"bytes"
	"github.com/TokDenis/folio/services"
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintListing(t *testing.T) {
	posts := []types.Post{
		{Slug: "a", Title: "Alpha", PublishedAt: "2024-01-01"},
		{Slug: "b", Title: "Beta", PublishedAt: "2023-05-01"},
		{Slug: "c", Title: "Gamma", PublishedAt: "2023-02-01"},
	}
	l := services.BuildListing(posts, types.ViewsMap{"b": 1500}, false, sorting.SortSetting{Key: sorting.KeyDate, Direction: sorting.Asc}, "")

	var buf bytes.Buffer
	require.NoError(t, printListing(&buf, l))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "date↑")
	assert.True(t, strings.HasPrefix(lines[1], "2023"))
	assert.Contains(t, lines[1], "Gamma")
	assert.False(t, strings.HasPrefix(lines[2], "2023"))
	assert.Contains(t, lines[2], "1,500")
	assert.True(t, strings.HasPrefix(lines[3], "2024"))
}

func TestSitemapCommand(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "hello.md"), []byte("---\ntitle: Hello\npublishedAt: 2024-01-01\n---\nhi\n"), 0o644)
	require.NoError(t, err)

	t.Setenv("FOLIO_CONTENT_DIR", root)
	t.Setenv("FOLIO_BASE_URL", "https://dev.example.com")

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sitemap"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "<loc>https://dev.example.com/hello</loc>")
	assert.Contains(t, out.String(), "<lastmod>2024-01-01</lastmod>")
}
