package fs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wxrmd/pkg/core"
)

func TestMarkdownSerializerSerialize(t *testing.T) {
	fm := core.Frontmatter{
		{Key: "title", Value: core.String(`Say "hi" \o/`)},
		{Key: "date", Value: core.Date(time.Date(2020, 5, 1, 10, 30, 0, 0, time.UTC))},
		{Key: "categories", Value: core.List("News", `a"b`)},
		{Key: "tags", Value: core.List()},
		{Key: "description", Value: core.String("")},
		{Key: "updated", Value: core.Date(time.Time{})},
		{Key: "slug", Value: core.String("hello")},
	}

	got := string(NewMarkdownSerializer().Serialize(fm, "Body text"))

	want := strings.Join([]string{
		"---",
		`title: "Say \"hi\" \\o/"`,
		"date: 2020-05-01T10:30:00Z",
		"categories:",
		`  - "News"`,
		`  - "a\"b"`,
		`slug: "hello"`,
		"---",
		"",
		"Body text",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMarkdownSerializerEmptyFrontmatter(t *testing.T) {
	got := string(NewMarkdownSerializer().Serialize(nil, ""))
	assert.Equal(t, "---\n---\n\n\n", got)
}

func TestMarkdownSerializerRoundTrip(t *testing.T) {
	s := NewMarkdownSerializer()
	fm := core.Frontmatter{
		{Key: "title", Value: core.String(`Quotes "and" \ slashes: ok`)},
		{Key: "categories", Value: core.List("News", "Go")},
	}

	doc, err := s.Parse(strings.NewReader(string(s.Serialize(fm, "# Heading\n\n---\n\nAfter rule"))))
	require.NoError(t, err)

	assert.Equal(t, `Quotes "and" \ slashes: ok`, doc.Frontmatter["title"])
	assert.Equal(t, []string{"News", "Go"}, doc.Strings("categories"))
	assert.Equal(t, "# Heading\n\n---\n\nAfter rule", doc.Content)
}

func TestMarkdownSerializerParse(t *testing.T) {
	s := NewMarkdownSerializer()

	t.Run("No Frontmatter", func(t *testing.T) {
		doc, err := s.Parse(strings.NewReader("just text\n"))
		require.NoError(t, err)
		assert.Empty(t, doc.Frontmatter)
		assert.Equal(t, "just text", doc.Content)
	})

	t.Run("Windows Line Endings", func(t *testing.T) {
		doc, err := s.Parse(strings.NewReader("---\r\ntitle: x\r\n---\r\n\r\nbody\r\n"))
		require.NoError(t, err)
		assert.Equal(t, "x", doc.Frontmatter["title"])
		assert.Equal(t, "body", doc.Content)
	})

	t.Run("Unclosed", func(t *testing.T) {
		_, err := s.Parse(strings.NewReader("---\ntitle: x\nbody"))
		assert.Error(t, err)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		_, err := s.Parse(strings.NewReader("---\ntitle: [x\n---\nbody"))
		assert.Error(t, err)
	})
}

func TestDocumentStrings(t *testing.T) {
	doc := Document{Frontmatter: map[string]any{
		"one":  "solo",
		"many": []any{"a", 2},
	}}
	assert.Equal(t, []string{"solo"}, doc.Strings("one"))
	assert.Equal(t, []string{"a", "2"}, doc.Strings("many"))
	assert.Nil(t, doc.Strings("missing"))
}

func TestMarkdownSerializerQuotesKeys(t *testing.T) {
	fm := core.Frontmatter{
		{Key: "a:b", Value: core.String("x")},
		{Key: "my tags", Value: core.List("go")},
		{Key: "reading_time", Value: core.String("3")},
	}
	s := NewMarkdownSerializer()

	out := s.Serialize(fm, "Body")
	assert.Contains(t, string(out), "\"a:b\": \"x\"\n")
	assert.Contains(t, string(out), "\"my tags\":\n  - \"go\"\n")
	assert.Contains(t, string(out), "reading_time: \"3\"\n")

	doc, err := s.Parse(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Frontmatter["a:b"])
	assert.Equal(t, []string{"go"}, doc.Strings("my tags"))
	assert.Equal(t, "3", doc.Frontmatter["reading_time"])
}
