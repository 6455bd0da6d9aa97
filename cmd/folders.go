package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/config"
	"github.com/user/linkfind/internal/db"
)

var foldersJSON bool

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Show the folder tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			folders, err := store.ListFolders(cfg.User)
			if err != nil {
				return err
			}
			if foldersJSON {
				return outputJSON(folders)
			}
			if len(folders) == 0 {
				fmt.Println("No folders yet. Add a link to get started.")
				return nil
			}

			children := make(map[string][]db.Folder)
			for _, f := range folders {
				if f.ParentID != "" {
					children[f.ParentID] = append(children[f.ParentID], f)
				}
			}
			counts, err := store.FolderLinkCounts(cfg.User)
			if err != nil {
				return err
			}

			for _, f := range folders {
				if f.ParentID != "" {
					continue
				}
				fmt.Printf("%s %s (%d)  %s\n", f.Icon, f.Name, counts[f.ID], f.ID)
				for _, c := range children[f.ID] {
					fmt.Printf("   └ %s %s (%d)  %s\n", c.Icon, c.Name, counts[c.ID], c.ID)
				}
			}
			return nil
		})
	},
}

var (
	folderParent      string
	folderColor       string
	folderIcon        string
	folderDescription string
)

var foldersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			f := &db.Folder{
				UserID:      cfg.User,
				Name:        args[0],
				ParentID:    folderParent,
				Color:       folderColor,
				Icon:        folderIcon,
				Description: folderDescription,
			}
			if err := store.CreateFolder(f); err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}
			fmt.Printf("Created: %s %s (%s)\n", f.Icon, f.Name, f.ID)
			return nil
		})
	},
}

var foldersRenameCmd = &cobra.Command{
	Use:   "rename <folder-id> <name>",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			f, err := store.GetFolder(cfg.User, args[0])
			if err != nil {
				return err
			}
			old := f.Name
			f.Name = args[1]
			if err := store.UpdateFolder(f); err != nil {
				return fmt.Errorf("failed to rename folder: %w", err)
			}
			fmt.Printf("Renamed: %s -> %s\n", old, f.Name)
			return nil
		})
	},
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete <folder-id>",
	Short: "Delete a folder, its sub-folders and their links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(cfg *config.Config, store *db.Store) error {
			f, err := store.GetFolder(cfg.User, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteFolder(cfg.User, f.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted: %s\n", f.Name)
			return nil
		})
	},
}

func withStore(fn func(cfg *config.Config, store *db.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := db.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

func init() {
	foldersCmd.Flags().BoolVarP(&foldersJSON, "json", "j", false, "Output as JSON")

	foldersCreateCmd.Flags().StringVar(&folderParent, "parent", "", "Parent folder ID (creates a sub-folder)")
	foldersCreateCmd.Flags().StringVar(&folderColor, "color", "", "Folder colour (default #3B82F6)")
	foldersCreateCmd.Flags().StringVar(&folderIcon, "icon", "", "Folder icon (default 📁)")
	foldersCreateCmd.Flags().StringVar(&folderDescription, "description", "", "Folder description")

	foldersCmd.AddCommand(foldersCreateCmd, foldersRenameCmd, foldersDeleteCmd)
	rootCmd.AddCommand(foldersCmd)
}
