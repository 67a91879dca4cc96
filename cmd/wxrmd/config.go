package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/wxrmd/internal/platform"
	"github.com/aretw0/wxrmd/pkg/core"
)

// setDefaults registers every configuration key so environment variables
// can override keys that appear in neither the file nor the flags.
func setDefaults(v *viper.Viper, d core.Config) {
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("assets_root", d.AssetsRoot)
	v.SetDefault("include_other_types", d.IncludeOtherTypes)
	v.SetDefault("save_attached_images", d.SaveAttachedImages)
	v.SetDefault("save_scraped_images", d.SaveScrapedImages)
	v.SetDefault("year_folders", d.YearFolders)
	v.SetDefault("month_folders", d.MonthFolders)
	v.SetDefault("post_folders", d.PostFolders)
	v.SetDefault("prefix_date", d.PrefixDate)
	v.SetDefault("frontmatter_fields", d.FrontmatterFields)
	v.SetDefault("filter_categories", d.FilterCategories)
	v.SetDefault("custom_date_timezone", d.DateTimezone)
	v.SetDefault("custom_date_formatting", d.DateFormat)
	v.SetDefault("include_time_with_date", d.IncludeTime)
	v.SetDefault("markdown_file_write_delay", d.MarkdownWriteDelay)
	v.SetDefault("image_file_request_delay", d.ImageRequestDelay)
	v.SetDefault("strict_ssl", d.StrictSSL)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("retries", d.Retries)
}

// loadConfig merges defaults, the config file, WXRMD_* environment variables
// and the flags of cmd, in increasing precedence.
func loadConfig(cmd *cobra.Command) (core.Config, error) {
	v := viper.New()
	setDefaults(v, core.DefaultConfig())

	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if path, err := platform.FindConfig("."); err == nil {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("WXRMD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return core.Config{}, fmt.Errorf("%w: config file not found: %v", core.ErrInvalidConfig, err)
			}
			return core.Config{}, fmt.Errorf("%w: failed to read config file: %v", core.ErrInvalidConfig, err)
		}
		slog.Debug("using config file", "path", v.ConfigFileUsed())
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return core.Config{}, bindErr
	}

	var cfg core.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return core.Config{}, fmt.Errorf("%w: unable to decode config: %v", core.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// addConfigFlags registers one flag per configuration key on cmd.
func addConfigFlags(cmd *cobra.Command) {
	d := core.DefaultConfig()
	f := cmd.Flags()

	f.StringP("input", "i", d.Input, "path to the WXR export file")
	f.StringP("output", "o", d.Output, "directory documents and images are written to")
	f.String("assets-root", d.AssetsRoot, "root that image references in content point to")
	f.Bool("include-other-types", d.IncludeOtherTypes, "convert pages and custom post types too")
	f.Bool("save-attached-images", d.SaveAttachedImages, "download images attached to posts")
	f.Bool("save-scraped-images", d.SaveScrapedImages, "download images found in post bodies")
	f.Bool("year-folders", d.YearFolders, "group output by year")
	f.Bool("month-folders", d.MonthFolders, "group output by month")
	f.Bool("post-folders", d.PostFolders, "write each post as <slug>/index.md")
	f.Bool("prefix-date", d.PrefixDate, "prefix slugs with the publish date")
	f.StringSlice("frontmatter-fields", d.FrontmatterFields, "frontmatter fields as name or name:alias")
	f.StringSlice("filter-categories", d.FilterCategories, "categories left out of frontmatter")
	f.String("custom-date-timezone", d.DateTimezone, "timezone dates are rendered in")
	f.String("custom-date-formatting", d.DateFormat, "strftime format for the date field")
	f.Bool("include-time-with-date", d.IncludeTime, "render the date field with time of day")
	f.Duration("markdown-file-write-delay", d.MarkdownWriteDelay, "delay between document writes")
	f.Duration("image-file-request-delay", d.ImageRequestDelay, "delay between image requests")
	f.Bool("strict-ssl", d.StrictSSL, "verify TLS certificates of image hosts")
	f.Int("concurrency", d.Concurrency, "maximum files in flight (0 for no limit)")
	f.Int("retries", d.Retries, "retries per failed image request")
}
