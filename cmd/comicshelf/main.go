package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "comicshelf",
	Short: "A comic reading site built with Go, Echo, and templ",
	Long: `comicshelf serves a catalog of comics with chapter pages, a paginated
reader, and per-user favorites and ratings.

Content is added with "comicshelf import", which turns a directory of page
images into a chapter.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the comicshelf version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "comicshelf %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (env DATABASE_PATH, default data/comics.db)")
	rootCmd.PersistentFlags().String("static", "", "static and uploads directory (env STATIC_DIR, default public)")
	rootCmd.AddCommand(serveCmd, importCmd, userCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
