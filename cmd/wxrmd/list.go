package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/wxrmd/pkg/adapters/fs"
)

var (
	listJSON       bool
	filterCategory string
	listPattern    string
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List converted documents",
	Long:  "List converted documents under dir, or under the configured output directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := appConfig.Output
		if len(args) == 1 {
			dir = args[0]
		}

		docs, err := fs.Scan(dir, listPattern)
		if err != nil {
			return fmt.Errorf("error listing documents: %w", err)
		}

		filtered := docs[:0]
		for _, doc := range docs {
			if filterCategory != "" && !slices.Contains(doc.Strings("categories"), filterCategory) {
				continue
			}
			filtered = append(filtered, doc)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(filtered)
		}

		for _, doc := range filtered {
			title := ""
			if t, ok := doc.Frontmatter["title"].(string); ok {
				title = fmt.Sprintf("- %s", t)
			}
			fmt.Printf("%s %s\n", doc.Path, title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterCategory, "category", "", "Filter documents by category")
	listCmd.Flags().StringVar(&listPattern, "pattern", fs.DefaultPattern, "Glob of documents to list")
}
