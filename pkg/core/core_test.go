package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wxrmd/pkg/core"
)

func sampleItem() core.Item {
	return core.Item{Fields: map[string][]core.Field{
		"post_id":   {{Text: "12"}},
		"post_type": {{Text: "post"}},
		"encoded":   {{Text: "<p>body</p>"}, {Text: "short"}},
		"category": {
			{Text: "News", Attrs: map[string]string{"domain": "category", "nicename": "news"}},
			{Text: "Go", Attrs: map[string]string{"domain": "post_tag", "nicename": "go"}},
		},
		"postmeta": {
			{Children: map[string][]core.Field{
				"meta_key":   {{Text: "_thumbnail_id"}},
				"meta_value": {{Text: "40"}},
			}},
			{Children: map[string][]core.Field{
				"meta_key":   {{Text: "_yoast_wpseo_metadesc"}},
				"meta_value": {{Text: "Summary"}},
			}},
		},
	}}
}

func TestItemAccessors(t *testing.T) {
	item := sampleItem()

	assert.Equal(t, "12", item.ID())
	assert.Equal(t, "post", item.Type())
	assert.Equal(t, "<p>body</p>", item.Content())
	assert.Equal(t, "short", item.Excerpt())
	assert.Equal(t, "", item.Title())
	assert.True(t, item.HasMeta())

	v, ok := item.MetaValue("_yoast_wpseo_metadesc")
	assert.True(t, ok)
	assert.Equal(t, "Summary", v)

	_, ok = item.MetaValue("missing")
	assert.False(t, ok)

	cats := item.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, core.Category{Domain: "category", Nicename: "news", Name: "News"}, cats[0])
}

func TestItemWithoutExcerpt(t *testing.T) {
	item := core.Item{Fields: map[string][]core.Field{"encoded": {{Text: "x"}}}}
	assert.Equal(t, "", item.Excerpt())
	assert.False(t, item.HasMeta())
	assert.Empty(t, item.Meta())
}

func TestFrontmatterSetKeepsPosition(t *testing.T) {
	var fm core.Frontmatter
	fm = fm.Set("title", core.String("a"))
	fm = fm.Set("date", core.Date(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)))
	fm = fm.Set("title", core.String("b"))

	require.Len(t, fm, 2)
	assert.Equal(t, "title", fm[0].Key)
	assert.Equal(t, "b", fm[0].Value.Str)

	v, ok := fm.Get("date")
	require.True(t, ok)
	assert.Equal(t, core.KindDate, v.Kind)
}

func TestValueIsEmpty(t *testing.T) {
	assert.True(t, core.String("").IsEmpty())
	assert.True(t, core.List().IsEmpty())
	assert.True(t, core.Date(time.Time{}).IsEmpty())
	assert.False(t, core.List("a").IsEmpty())
}

func TestConfigLocation(t *testing.T) {
	loc, err := core.Config{DateTimezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = core.Config{DateTimezone: "Mars/Olympus"}.Location()
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, core.DefaultConfig().Validate())

	cfg := core.DefaultConfig()
	cfg.Input = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	cfg = core.DefaultConfig()
	cfg.Concurrency = -1
	assert.Error(t, cfg.Validate())
}
