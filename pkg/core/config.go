package core

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultType is the only content type in scope unless other types are included.
const DefaultType = "post"

// Config is the run configuration. It is built once by the caller and passed
// explicitly to every stage.
type Config struct {
	Input      string `mapstructure:"input"`
	Output     string `mapstructure:"output"`
	AssetsRoot string `mapstructure:"assets_root"`

	IncludeOtherTypes  bool `mapstructure:"include_other_types"`
	SaveAttachedImages bool `mapstructure:"save_attached_images"`
	SaveScrapedImages  bool `mapstructure:"save_scraped_images"`

	YearFolders  bool `mapstructure:"year_folders"`
	MonthFolders bool `mapstructure:"month_folders"`
	PostFolders  bool `mapstructure:"post_folders"`
	PrefixDate   bool `mapstructure:"prefix_date"`

	// FrontmatterFields lists "name" or "name:alias" specs, in output order.
	FrontmatterFields []string `mapstructure:"frontmatter_fields"`
	FilterCategories  []string `mapstructure:"filter_categories"`

	DateTimezone string `mapstructure:"custom_date_timezone"`
	// DateFormat is a strftime pattern, e.g. "%Y/%m/%d".
	DateFormat  string `mapstructure:"custom_date_formatting"`
	IncludeTime bool   `mapstructure:"include_time_with_date"`

	MarkdownWriteDelay time.Duration `mapstructure:"markdown_file_write_delay"`
	ImageRequestDelay  time.Duration `mapstructure:"image_file_request_delay"`
	StrictSSL          bool          `mapstructure:"strict_ssl"`
	Concurrency        int           `mapstructure:"concurrency"`
	Retries            int           `mapstructure:"retries"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Input:              "export.xml",
		Output:             "output",
		AssetsRoot:         "~/assets",
		SaveAttachedImages: true,
		SaveScrapedImages:  true,
		YearFolders:        false,
		MonthFolders:       false,
		PostFolders:        true,
		PrefixDate:         false,
		FrontmatterFields: []string{
			"title",
			"publishDate:date",
			"author",
			"categories",
			"tags",
			"coverImage",
			"description",
			"slug",
		},
		FilterCategories:   []string{"uncategorized"},
		DateTimezone:       "utc",
		MarkdownWriteDelay: 25 * time.Millisecond,
		ImageRequestDelay:  500 * time.Millisecond,
		StrictSSL:          true,
		Concurrency:        8,
		Retries:            2,
	}
}

// Location resolves DateTimezone. "utc" and "" map to time.UTC.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.DateTimezone)
	if tz == "" || strings.EqualFold(tz, "utc") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, tz, err)
	}
	return loc, nil
}

// Validate checks the values a run cannot start without.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Input, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Concurrency, validation.Min(0)),
		validation.Field(&c.Retries, validation.Min(0)),
		validation.Field(&c.DateTimezone, validation.By(func(value any) error {
			_, err := Config{DateTimezone: value.(string)}.Location()
			return err
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
