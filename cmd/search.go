package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/config"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/extract"
)

var (
	jsonOutput      bool
	plaintextOutput bool
	searchFolder    string
	searchTag       string
	searchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search saved links",
	Long:  "Search saved links by title, description, URL and tags. Without a query, list the newest links.",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		return withStore(func(cfg *config.Config, store *db.Store) error {
			results, err := store.ListLinks(cfg.User, db.LinkFilter{
				FolderID: searchFolder,
				Search:   query,
				Tag:      searchTag,
				Limit:    searchLimit,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if jsonOutput {
				return outputJSON(results)
			}
			if plaintextOutput {
				return outputPlaintext(results)
			}
			return outputDefault(results)
		})
	},
}

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(results []db.Link) error {
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\t%s\n", r.ID, r.FolderPath, r.Title, r.URL)
	}
	return nil
}

func outputDefault(results []db.Link) error {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, r := range results {
		star := ""
		if r.IsFavorite {
			star = " ★"
		}
		fmt.Printf("%d. %s %s%s\n   %s\n   %s  (%s)\n", i+1, sourceIcon(r.Source), r.Title, star, r.URL, r.FolderPath, r.ID)
		if r.Description != "" {
			fmt.Printf("   %s\n", truncate(r.Description, 100))
		}
		if len(r.Tags) > 0 {
			fmt.Printf("   #%s\n", strings.Join(r.Tags, " #"))
		}
		fmt.Println()
	}
	return nil
}

func sourceIcon(source string) string {
	switch source {
	case "youtube":
		return "[Y]"
	case "github":
		return "[G]"
	case "medium":
		return "[M]"
	case "twitter":
		return "[X]"
	case "stackoverflow":
		return "[S]"
	case "reddit":
		return "[R]"
	default:
		return "[·]"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return extract.Truncate(s, maxLen-3) + "..."
}

func init() {
	searchCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	searchCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	searchCmd.Flags().StringVarP(&searchFolder, "folder", "f", "", "Only links in this folder (and its sub-folders)")
	searchCmd.Flags().StringVarP(&searchTag, "tag", "t", "", "Only links with this tag")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 50, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
