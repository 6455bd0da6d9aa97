package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/organizer"
)

var addFolder string

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a link",
	Long:  "Fetch the page, classify it and file it into a source and topic folder. Use --folder to pick the folder yourself.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.organizer.AddLink(context.Background(), organizer.AddRequest{
			UserID:   a.cfg.User,
			URL:      args[0],
			FolderID: addFolder,
		})
		if errors.Is(err, db.ErrLinkExists) {
			return fmt.Errorf("%s is already saved", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to add URL: %w", err)
		}

		fmt.Printf("Added: %s\n", res.Link.Title)
		fmt.Printf("Folder: %s\n", res.Link.FolderPath)
		fmt.Printf("Category: %s (%.0f%%)\n", res.Prediction.PredictedCategory, res.Prediction.Confidence)
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addFolder, "folder", "f", "", "Folder ID to save into (skips auto-filing)")
	rootCmd.AddCommand(addCmd)
}
