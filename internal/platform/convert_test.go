package platform

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wxrmd/pkg/adapters/fs"
	"github.com/aretw0/wxrmd/pkg/core"
)

const fixture = "../../pkg/wxr/testdata/export.xml"

type stubFetcher struct {
	mu   sync.Mutex
	urls []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, rawURL)
	return []byte("image"), nil
}

func testConfig(t *testing.T) core.Config {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Input = fixture
	cfg.Output = t.TempDir()
	cfg.MarkdownWriteDelay = 0
	cfg.ImageRequestDelay = 0
	return cfg
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestConvert(t *testing.T) {
	all, err := Convert(context.Background(), testConfig(t), quiet())
	require.NoError(t, err)
	require.Len(t, all, 1)

	p := all[0]
	assert.Equal(t, "10", p.ID)
	assert.Equal(t, "hello-wörld", p.Slug)
	assert.Equal(t, "cover photo.jpg", p.CoverImage)
	assert.Equal(t, []string{
		"https://example.com/wp-content/uploads/2020/05/cover%20photo.jpg",
		"https://example.com/wp-content/uploads/2020/05/inline.png",
	}, p.ImageURLs)

	assert.Contains(t, p.Content, "First paragraph.")
	assert.Contains(t, p.Content, "Second & last.")
	assert.Contains(t, p.Content, "assets/images/inline.png")
	assert.NotContains(t, p.Content, "wp-content")

	keys := make([]string, 0, len(p.Frontmatter))
	for _, e := range p.Frontmatter {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"title", "date", "author", "categories", "tags", "coverImage", "description", "slug"}, keys)

	categories, _ := p.Frontmatter.Get("categories")
	assert.Equal(t, []string{"news"}, categories.List)
	description, _ := p.Frontmatter.Get("description")
	assert.Equal(t, "Meta description", description.Str)
}

func TestConvertOtherTypes(t *testing.T) {
	cfg := testConfig(t)
	cfg.IncludeOtherTypes = true

	all, err := Convert(context.Background(), cfg, quiet())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "post", all[0].Type)
	assert.Equal(t, "page", all[1].Type)
	assert.Equal(t, "## About us", all[1].Content)
}

func TestConvertWithoutImages(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveAttachedImages = false
	cfg.SaveScrapedImages = false

	all, err := Convert(context.Background(), cfg, quiet())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].ImageURLs)
	assert.Empty(t, all[0].CoverImage)
	assert.Contains(t, all[0].Content, "/wp-content/uploads/2020/05/inline.png")
}

func TestConvertFailsFast(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input = filepath.Join(t.TempDir(), "missing.xml")
	cfg.FrontmatterFields = []string{"title", "bogus"}

	_, err := Convert(context.Background(), cfg, quiet())
	assert.ErrorIs(t, err, core.ErrUnknownField)

	cfg = testConfig(t)
	cfg.Output = ""
	_, err = Convert(context.Background(), cfg, quiet())
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestConvertFromReader(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input = "unused.xml"

	_, err := Convert(context.Background(), cfg, quiet(), WithReader(strings.NewReader("<rss><channel>")))
	assert.ErrorIs(t, err, core.ErrMalformedDocument)

	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	all, err := Convert(context.Background(), cfg, quiet(), WithReader(strings.NewReader(string(data))))
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConvertCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Convert(ctx, testConfig(t), quiet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &stubFetcher{}

	report, err := Run(context.Background(), cfg, quiet(), WithFetcher(fetcher))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Saved)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, fetcher.urls, 2)

	doc, err := os.ReadFile(filepath.Join(cfg.Output, "hello-wörld", "index.md"))
	require.NoError(t, err)
	text := string(doc)
	assert.True(t, strings.HasPrefix(text, "---\ntitle: \"Hello World\"\ndate: 2020-05-01T10:30:00Z\nauthor: \"admin\"\n"), text)
	assert.Contains(t, text, "categories:\n  - \"news\"\n")
	assert.Contains(t, text, "tags:\n  - \"go\"\n")
	assert.Contains(t, text, "coverImage: \"cover photo.jpg\"\n")
	assert.Contains(t, text, "slug: \"hello-wörld\"\n---\n\n")

	assert.FileExists(t, filepath.Join(cfg.Output, "images", "cover photo.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "images", "inline.png"))

	again, err := Run(context.Background(), cfg, quiet(), WithFetcher(fetcher))
	require.NoError(t, err)
	assert.Equal(t, 3, again.Skipped)
	assert.Len(t, fetcher.urls, 2)
}

func TestRunnerAccumulatesState(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, quiet(), WithFetcher(&stubFetcher{}))
	assert.Equal(t, "runner", runner.ComponentType())

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	state, ok := runner.State().(fs.WriterState)
	require.True(t, ok)
	assert.Equal(t, fs.Report{Saved: 3, Skipped: 3}, state.Totals)
	assert.Equal(t, cfg.Output, state.Output)
	assert.NotNil(t, state.LastRun)
	assert.False(t, state.Running)
}
