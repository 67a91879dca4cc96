package fs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wxrmd/pkg/core"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	if f.fail[rawURL] {
		return nil, &StatusError{URL: rawURL, StatusCode: 404}
	}
	return []byte("img:" + rawURL), nil
}

func writerConfig(out string) core.Config {
	cfg := core.DefaultConfig()
	cfg.Output = out
	cfg.MarkdownWriteDelay = 0
	cfg.ImageRequestDelay = time.Millisecond
	cfg.Concurrency = 2
	return cfg
}

func testPosts() []*core.Post {
	return []*core.Post{
		{
			ID: "1", Slug: "hello", Type: "post",
			Time:        time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
			Frontmatter: core.Frontmatter{{Key: "title", Value: core.String("Hello")}},
			Content:     "Body",
			ImageURLs:   []string{"https://example.com/cover%20photo.jpg", "https://example.com/missing.png"},
		},
		{
			ID: "2", Slug: "second", Type: "post",
			Time:      time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			ImageURLs: []string{"https://example.com/cover%20photo.jpg"},
		},
	}
}

func TestWriterWrite(t *testing.T) {
	out := t.TempDir()
	var logs bytes.Buffer
	fetcher := &stubFetcher{fail: map[string]bool{"https://example.com/missing.png": true}}
	w := NewWriter(writerConfig(out), WithFetcher(fetcher), WithWriterLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	report, err := w.Write(context.Background(), testPosts())
	require.NoError(t, err)

	// both posts share one image directory, so the cover is fetched once
	assert.Equal(t, Report{Saved: 3, Skipped: 1, Failed: 1}, report)

	doc, err := os.ReadFile(filepath.Join(out, "hello", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"Hello\"\n---\n\nBody\n", string(doc))
	assert.FileExists(t, filepath.Join(out, "second", "index.md"))

	img, err := os.ReadFile(filepath.Join(out, "images", "cover photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img:https://example.com/cover%20photo.jpg", string(img))
	assert.NoFileExists(t, filepath.Join(out, "images", "missing.png"))

	assert.Contains(t, logs.String(), "[OK] "+filepath.Join(out, "hello", "index.md"))
	assert.Contains(t, logs.String(), "[FAILED] "+filepath.Join(out, "images", "missing.png"))
	assert.Contains(t, logs.String(), "failed=1")
}

func TestWriterSkipsExisting(t *testing.T) {
	out := t.TempDir()
	fetcher := &stubFetcher{}
	w := NewWriter(writerConfig(out), WithFetcher(fetcher), WithWriterLogger(discardLogger()))

	existing := filepath.Join(out, "hello", "index.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	report, err := w.Write(context.Background(), testPosts())
	require.NoError(t, err)
	assert.Equal(t, Report{Saved: 3, Skipped: 2}, report)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))

	again, err := w.Write(context.Background(), testPosts())
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 5}, again)
	assert.Len(t, fetcher.calls, 2)
}

func TestWriterDateFolders(t *testing.T) {
	out := t.TempDir()
	cfg := writerConfig(out)
	cfg.YearFolders = true
	cfg.PostFolders = false
	w := NewWriter(cfg, WithFetcher(&stubFetcher{}), WithWriterLogger(discardLogger()))

	report, err := w.Write(context.Background(), testPosts())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed)

	assert.FileExists(t, filepath.Join(out, "2020", "hello.md"))
	assert.FileExists(t, filepath.Join(out, "2021", "second.md"))
	assert.FileExists(t, filepath.Join(out, "images", "2020", "cover photo.jpg"))
	assert.FileExists(t, filepath.Join(out, "images", "2021", "cover photo.jpg"))
}

func TestWriterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWriter(writerConfig(t.TempDir()), WithFetcher(&stubFetcher{}), WithWriterLogger(discardLogger()))
	_, err := w.Write(ctx, testPosts())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWriterState(t *testing.T) {
	out := t.TempDir()
	w := NewWriter(writerConfig(out), WithFetcher(&stubFetcher{}), WithWriterLogger(discardLogger()))
	assert.Equal(t, "writer", w.ComponentType())

	state, ok := w.State().(WriterState)
	require.True(t, ok)
	assert.Nil(t, state.LastRun)
	assert.False(t, state.Running)

	_, err := w.Write(context.Background(), testPosts())
	require.NoError(t, err)

	state = w.State().(WriterState)
	require.NotNil(t, state.LastRun)
	assert.Equal(t, out, state.Output)
	assert.Equal(t, 4, state.Totals.Saved)
	assert.True(t, strings.HasPrefix(state.LastRun.Format(time.RFC3339), "20"))
}

func TestWriterKeepsImagesUnderOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site")
	posts := []*core.Post{{
		ID: "1", Slug: "hello", Type: "post",
		ImageURLs: []string{
			"https://x.com/a/..%2F..%2F..%2Fevil.png",
			"https://x.com/a/..%2F..",
		},
	}}
	w := NewWriter(writerConfig(out), WithFetcher(&stubFetcher{}), WithWriterLogger(discardLogger()))

	report, err := w.Write(context.Background(), posts)
	require.NoError(t, err)
	assert.Equal(t, Report{Saved: 2, Failed: 1}, report)

	assert.FileExists(t, filepath.Join(out, "images", "evil.png"))
	assert.NoFileExists(t, filepath.Join(root, "evil.png"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "evil.png"))
}
