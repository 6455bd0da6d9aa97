package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/classify"
	"github.com/user/linkfind/internal/extract"
)

var (
	classifyURL         string
	classifyTitle       string
	classifyDescription string
	classifyTags        []string
	classifyFetch       bool
	classifyJSON        bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how a link would be classified",
	Long: "Run the category classifier on a title and description, and with --url also show the " +
		"source and topic folder the link would be filed under. Nothing is saved.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		classifier, err := loadClassifier(cfg)
		if err != nil {
			return err
		}

		title, description := classifyTitle, classifyDescription
		if classifyFetch && classifyURL != "" {
			e := extract.New(extract.Config{
				Timeout:      cfg.Extractor.Timeout,
				UserAgent:    cfg.Extractor.UserAgent,
				MaxBodyBytes: cfg.Extractor.MaxBodyBytes,
			}, newLogger(cfg.LogLevel, cmd.ErrOrStderr(), false))
			md, err := e.Extract(context.Background(), classifyURL)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", classifyURL, err)
			}
			if title == "" {
				title = md.Title
			}
			if description == "" {
				description = md.Description
			}
		}

		out := struct {
			Prediction classify.Result            `json:"prediction"`
			Source     string                     `json:"source,omitempty"`
			Suggestion *classify.FolderSuggestion `json:"suggestion,omitempty"`
		}{
			Prediction: classifier.PredictCategory(classify.Input{
				Title:       title,
				Description: description,
				Tags:        classifyTags,
			}),
		}
		if classifyURL != "" {
			s := classifier.SuggestHierarchicalFolder(classifyURL, title, description)
			out.Source = s.MainFolder
			out.Suggestion = &s
		}

		if classifyJSON {
			return outputJSON(out)
		}

		fmt.Printf("Category: %s (%.0f%%)\n", out.Prediction.PredictedCategory, out.Prediction.Confidence)
		if len(out.Prediction.TopCategories) > 0 {
			parts := make([]string, len(out.Prediction.TopCategories))
			for i, c := range out.Prediction.TopCategories {
				parts[i] = fmt.Sprintf("%s %d", c.Category, c.Score)
			}
			fmt.Printf("Top: %s\n", strings.Join(parts, ", "))
		}
		if out.Suggestion != nil {
			fmt.Printf("Folder: %s › %s (%.0f%%)\n", out.Suggestion.MainFolder, out.Suggestion.SubFolder, out.Suggestion.Confidence)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the topic categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		classifier, err := loadClassifier(cfg)
		if err != nil {
			return err
		}

		names := classifier.Tables().CategoryNames()
		if classifyJSON {
			return outputJSON(map[string]any{"categories": names, "total": len(names)})
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyURL, "url", "u", "", "Link URL (enables source and folder suggestion)")
	classifyCmd.Flags().StringVarP(&classifyTitle, "title", "t", "", "Title to classify")
	classifyCmd.Flags().StringVarP(&classifyDescription, "description", "d", "", "Description to classify")
	classifyCmd.Flags().StringSliceVar(&classifyTags, "tags", nil, "Comma-separated tags")
	classifyCmd.Flags().BoolVar(&classifyFetch, "fetch", false, "Fetch the URL for a missing title or description")
	classifyCmd.Flags().BoolVarP(&classifyJSON, "json", "j", false, "Output as JSON")
	categoriesCmd.Flags().BoolVarP(&classifyJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(classifyCmd, categoriesCmd)
}
