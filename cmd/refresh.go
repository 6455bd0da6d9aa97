package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <id-or-url>",
	Short: "Refresh a saved link's metadata",
	Long:  "Re-fetch one link by ID or URL and update its title, description, thumbnail and tags. The link keeps its folder.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.organizer.Refresh(context.Background(), a.cfg.User, args[0])
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		fmt.Printf("Refreshed: %s\n", link.URL)
		fmt.Printf("Title: %s\n", link.Title)
		if link.Description != "" {
			fmt.Printf("Description: %s\n", link.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
