package comicshelf

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const uploadsSubdir = "uploads"

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImportOptions describes one chapter to ingest from a directory of images.
type ImportOptions struct {
	ComicTitle  string
	Author      string
	Description string
	ComingSoon  bool
	CoverPath   string // optional cover image

	ChapterNumber *int
	ChapterTitle  string
	Dir           string // page images, imported in lexical filename order
}

// ImportResult reports what an import created.
type ImportResult struct {
	Comic   Comic
	Chapter Chapter
	Pages   []Page
}

// Importer turns image files into comics, chapters and pages. Images are
// resized and re-encoded as JPEG under <StaticDir>/uploads and referenced by
// their /public URL.
type Importer struct {
	Store        *Store
	StaticDir    string
	MaxPageWidth int
	CoverWidth   int
	JPEGQuality  int
	Logf         func(format string, args ...any)
}

// NewImporter returns an Importer using the image settings of cfg.
func NewImporter(s *Store, staticDir string, cfg SiteConfig) *Importer {
	cfg.setDefaults()
	return &Importer{
		Store:        s,
		StaticDir:    staticDir,
		MaxPageWidth: cfg.MaxPageWidth,
		CoverWidth:   cfg.CoverWidth,
		JPEGQuality:  cfg.JPEGQuality,
	}
}

func (im *Importer) logf(format string, args ...any) {
	if im.Logf != nil {
		im.Logf(format, args...)
	}
}

// Import finds or creates the comic by title, creates a new chapter and
// imports every image in opts.Dir as its pages 1..N.
func (im *Importer) Import(ctx context.Context, opts ImportOptions) (ImportResult, error) {
	var res ImportResult
	if strings.TrimSpace(opts.ComicTitle) == "" {
		return res, errors.New("import: comic title is required")
	}
	files, err := listImages(opts.Dir)
	if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}

	comic, err := im.Store.FindComicByTitle(ctx, opts.ComicTitle)
	switch {
	case errors.Is(err, ErrNotFound):
		comic = Comic{Title: strings.TrimSpace(opts.ComicTitle)}
	case err != nil:
		return res, fmt.Errorf("import: find comic: %w", err)
	}
	if opts.Author != "" {
		comic.Author = opts.Author
	}
	if opts.Description != "" {
		comic.Description = opts.Description
	}
	comic.ComingSoon = opts.ComingSoon
	if err := im.Store.SaveComic(ctx, &comic); err != nil {
		return res, fmt.Errorf("import: save comic: %w", err)
	}
	if opts.CoverPath != "" {
		url, err := im.writeImage(opts.CoverPath, path.Join("covers", Slugify(comic.Title)+"-"+comic.ID+".jpg"), im.CoverWidth)
		if err != nil {
			return res, fmt.Errorf("import: cover: %w", err)
		}
		comic.CoverURL = url
		if err := im.Store.SaveComic(ctx, &comic); err != nil {
			return res, fmt.Errorf("import: save cover: %w", err)
		}
		im.logf("cover %s -> %s", opts.CoverPath, url)
	}
	res.Comic = comic

	chapter := Chapter{ComicID: comic.ID, Number: opts.ChapterNumber, Title: opts.ChapterTitle}
	if err := im.Store.SaveChapter(ctx, &chapter); err != nil {
		return res, fmt.Errorf("import: save chapter: %w", err)
	}
	res.Chapter = chapter

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		url, err := im.writeImage(file, path.Join(chapter.ID, fmt.Sprintf("%03d.jpg", n)), im.MaxPageWidth)
		if err != nil {
			return res, fmt.Errorf("import: page %d (%s): %w", n, filepath.Base(file), err)
		}
		page := Page{Number: &n, ImageURL: url}
		if err := im.Store.SavePage(ctx, chapter.ID, &page); err != nil {
			return res, fmt.Errorf("import: save page %d: %w", n, err)
		}
		res.Pages = append(res.Pages, page)
		im.logf("page %d: %s -> %s", n, filepath.Base(file), url)
	}
	return res, nil
}

// Slugify lowercases s and joins its runs of ASCII letters and digits with
// hyphens.
func Slugify(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(words, "-")
}

// listImages returns the image files of dir sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// writeImage decodes src, downscales it to maxWidth, writes it as JPEG under
// the uploads directory at rel and returns its public URL.
func (im *Importer) writeImage(src, rel string, maxWidth int) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	img = fitWidth(img, maxWidth)

	dst := filepath.Join(im.StaticDir, uploadsSubdir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(im.JPEGQuality)); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/public/" + path.Join(uploadsSubdir, rel), nil
}

// fitWidth downscales img to maxWidth keeping the aspect ratio. Narrower
// images are returned unchanged.
func fitWidth(img image.Image, maxWidth int) image.Image {
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	return img
}
