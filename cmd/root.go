package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/linkfind/internal/tui"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "linkfind",
	Short: "Bookmark organiser that files links by source and topic",
	Long: "Save links and let linkfind file them into a source folder (YouTube, GitHub, ...) " +
		"and a topic sub-folder (React, Python, ...). Run without a command to browse saved links.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return tui.Run(a.store, a.cfg.User)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.linkfind)")
	rootCmd.PersistentFlags().String("user", "", "User whose links and folders to use (default: local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}
