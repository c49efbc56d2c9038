package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/eringen/comicshelf"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory of page images as a new chapter",
	Long: `Import every image in <dir> (jpg, png, gif, webp) as the pages of a new
chapter, in filename order. The comic is matched by title and created when
missing. Images are downscaled and stored as JPEG under <static>/uploads.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		title, _ := f.GetString("comic")
		author, _ := f.GetString("author")
		description, _ := f.GetString("description")
		cover, _ := f.GetString("cover")
		comingSoon, _ := f.GetBool("coming-soon")
		chapterTitle, _ := f.GetString("title")

		opts := comicshelf.ImportOptions{
			ComicTitle:   title,
			Author:       author,
			Description:  description,
			ComingSoon:   comingSoon,
			CoverPath:    cover,
			ChapterTitle: chapterTitle,
			Dir:          args[0],
		}
		if f.Changed("number") {
			n, _ := f.GetInt("number")
			opts.ChapterNumber = &n
		}

		store, err := comicshelf.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		im := comicshelf.NewImporter(store, staticDir(cmd), cfg)
		im.Logf = log.Printf
		res, err := im.Import(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d pages into %q %s (chapter %s)\n",
			len(res.Pages), res.Comic.Title, res.Chapter.Label(), res.Chapter.ID)
		return nil
	},
}

func init() {
	f := importCmd.Flags()
	f.String("comic", "", "comic title (required)")
	f.String("author", "", "comic author")
	f.String("description", "", "comic description")
	f.String("cover", "", "cover image path")
	f.Bool("coming-soon", false, "list the comic under Coming Soon")
	f.Int("number", 0, "chapter number")
	f.String("title", "", "chapter title")
	_ = importCmd.MarkFlagRequired("comic")
}
