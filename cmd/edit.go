package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/config"
	"github.com/user/linkfind/internal/db"
)

var editCmd = &cobra.Command{
	Use:   "edit <link-id>",
	Short: "Edit a saved link",
	Long:  "Change a link's title, description, tags, folder or favourite flag. Only the flags you pass are changed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			link, err := store.GetLink(cfg.User, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				link.Title, _ = flags.GetString("title")
			}
			if flags.Changed("description") {
				link.Description, _ = flags.GetString("description")
			}
			if flags.Changed("tags") {
				tags, _ := flags.GetString("tags")
				link.Tags = strings.Split(tags, ",")
			}
			if flags.Changed("folder") {
				link.FolderID, _ = flags.GetString("folder")
			}
			if flags.Changed("favorite") {
				link.IsFavorite, _ = flags.GetBool("favorite")
			}

			if err := store.UpdateLink(link); err != nil {
				return fmt.Errorf("failed to update link: %w", err)
			}

			updated, err := store.GetLink(cfg.User, link.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Updated: %s\n", updated.Title)
			fmt.Printf("Folder: %s\n", updated.FolderPath)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <link-id>",
	Short: "Delete a saved link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			link, err := store.GetLink(cfg.User, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteLink(cfg.User, link.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted: %s\n", link.URL)
			return nil
		})
	},
}

func init() {
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("tags", "", "Comma-separated tags (replaces existing tags)")
	editCmd.Flags().String("folder", "", "Move to this folder ID")
	editCmd.Flags().Bool("favorite", false, "Mark or unmark as favourite")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}
