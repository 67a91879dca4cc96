package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wxrmd/pkg/core"
)

func writeDoc(t *testing.T, root, rel string, fm core.Frontmatter, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, writeFileAtomic(path, NewMarkdownSerializer().Serialize(fm, body), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "2020/hello/index.md", core.Frontmatter{
		{Key: "title", Value: core.String("Hello")},
		{Key: "categories", Value: core.List("News")},
	}, "Body")
	writeDoc(t, root, "about.md", core.Frontmatter{{Key: "title", Value: core.String("About")}}, "Me")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "a.png"), []byte{0}, 0o644))

	docs, err := Scan(root, "")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "2020/hello/index.md", docs[0].Path)
	assert.Equal(t, "Hello", docs[0].Frontmatter["title"])
	assert.Equal(t, []string{"News"}, docs[0].Strings("categories"))
	assert.Equal(t, "Body", docs[0].Content)
	assert.Equal(t, "about.md", docs[1].Path)

	docs, err = Scan(root, "2020/**/*.md")
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestScanErrors(t *testing.T) {
	root := t.TempDir()

	_, err := Scan(root, "[")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.md"), []byte("---\ntitle: x\n"), 0o644))
	_, err = Scan(root, "")
	assert.ErrorContains(t, err, "broken.md")
}
