package comicshelf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding comics, chapters, pages, users,
// favorites and ratings.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them;
	// foreign_keys in particular is per-connection in SQLite.
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS comics (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT,
    description TEXT,
    cover_url TEXT,
    coming_soon INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS chapters (
    id TEXT PRIMARY KEY,
    comic_id TEXT NOT NULL REFERENCES comics(id) ON DELETE CASCADE,
    title TEXT,
    number INTEGER,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS chapters_comic_idx ON chapters(comic_id, number);
CREATE TABLE IF NOT EXISTS pages (
    id TEXT PRIMARY KEY,
    chapter_id TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
    page_number INTEGER,
    image_url TEXT
);
CREATE INDEX IF NOT EXISTS pages_chapter_idx ON pages(chapter_id, page_number);
CREATE TABLE IF NOT EXISTS favorites (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    comic_id TEXT NOT NULL REFERENCES comics(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL,
    UNIQUE (user_id, comic_id)
);
CREATE TABLE IF NOT EXISTS ratings (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    comic_id TEXT NOT NULL REFERENCES comics(id) ON DELETE CASCADE,
    value INTEGER NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_id, comic_id)
);
CREATE TABLE IF NOT EXISTS catalog_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version INTEGER NOT NULL
);
INSERT OR IGNORE INTO catalog_version (id, version) VALUES (1, 0);
CREATE TRIGGER IF NOT EXISTS comics_insert_version AFTER INSERT ON comics
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS comics_update_version AFTER UPDATE ON comics
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS comics_delete_version AFTER DELETE ON comics
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS chapters_insert_version AFTER INSERT ON chapters
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS chapters_update_version AFTER UPDATE ON chapters
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS chapters_delete_version AFTER DELETE ON chapters
BEGIN UPDATE catalog_version SET version = version + 1 WHERE id = 1; END;
`)
	return err
}

// --- comics ---

const comicColumns = `id, title, author, description, cover_url, coming_soon`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComic(row rowScanner) (Comic, error) {
	var c Comic
	var author, description, cover sql.NullString
	var comingSoon int
	if err := row.Scan(&c.ID, &c.Title, &author, &description, &cover, &comingSoon); err != nil {
		return Comic{}, err
	}
	c.Author = author.String
	c.Description = description.String
	c.CoverURL = cover.String
	c.ComingSoon = comingSoon == 1
	return c, nil
}

// ListComics returns every comic ordered by title.
func (s *Store) ListComics(ctx context.Context) ([]Comic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+comicColumns+` FROM comics ORDER BY title COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comics []Comic
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, err
		}
		comics = append(comics, c)
	}
	return comics, rows.Err()
}

// GetComic returns a single comic by id.
func (s *Store) GetComic(ctx context.Context, id string) (Comic, error) {
	return scanComic(s.db.QueryRowContext(ctx, `SELECT `+comicColumns+` FROM comics WHERE id = ?`, id))
}

// FindComicByTitle returns the first comic whose title matches case-insensitively.
func (s *Store) FindComicByTitle(ctx context.Context, title string) (Comic, error) {
	return scanComic(s.db.QueryRowContext(ctx,
		`SELECT `+comicColumns+` FROM comics WHERE title = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		strings.TrimSpace(title)))
}

// SaveComic upserts a comic, assigning a new id when c.ID is empty.
func (s *Store) SaveComic(ctx context.Context, c *Comic) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO comics (id, title, author, description, cover_url, coming_soon)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    author = excluded.author,
    description = excluded.description,
    cover_url = excluded.cover_url,
    coming_soon = excluded.coming_soon`,
		c.ID, c.Title, nullString(c.Author), nullString(c.Description), nullString(c.CoverURL), boolInt(c.ComingSoon))
	return err
}

// CatalogVersion returns a counter that grows whenever a comic or chapter
// is written, by this process or any other sharing the database file.
func (s *Store) CatalogVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM catalog_version WHERE id = 1`).Scan(&v)
	return v, err
}

// --- chapters ---

const chapterColumns = `id, comic_id, title, number, created_at`

func scanChapter(row rowScanner) (Chapter, error) {
	var ch Chapter
	var title sql.NullString
	var number sql.NullInt64
	var created string
	if err := row.Scan(&ch.ID, &ch.ComicID, &title, &number, &created); err != nil {
		return Chapter{}, err
	}
	ch.Title = title.String
	ch.Number = intPtr(number)
	ch.CreatedAt = parseTime(created)
	return ch, nil
}

// ListChapters returns the chapters of a comic ordered by number ascending.
// Unnumbered chapters sort last.
func (s *Store) ListChapters(ctx context.Context, comicID string) ([]Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+chapterColumns+` FROM chapters
WHERE comic_id = ?
ORDER BY number IS NULL, number ASC, created_at ASC`, comicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// GetChapter returns a single chapter by id.
func (s *Store) GetChapter(ctx context.Context, id string) (Chapter, error) {
	return scanChapter(s.db.QueryRowContext(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id))
}

// SaveChapter upserts a chapter, assigning an id and creation time when missing.
func (s *Store) SaveChapter(ctx context.Context, ch *Chapter) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO chapters (id, comic_id, title, number, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    comic_id = excluded.comic_id,
    title = excluded.title,
    number = excluded.number`,
		ch.ID, ch.ComicID, nullString(ch.Title), nullInt(ch.Number), formatTime(ch.CreatedAt))
	return err
}

// ChapterRelease is a chapter together with the title of its comic.
type ChapterRelease struct {
	Chapter
	ComicTitle string
}

// RecentChapters returns the newest chapters across all comics.
func (s *Store) RecentChapters(ctx context.Context, limit int) ([]ChapterRelease, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ch.id, ch.comic_id, ch.title, ch.number, ch.created_at, c.title
FROM chapters ch JOIN comics c ON c.id = ch.comic_id
ORDER BY ch.created_at DESC, ch.id
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChapterRelease
	for rows.Next() {
		var r ChapterRelease
		var title sql.NullString
		var number sql.NullInt64
		var created string
		if err := rows.Scan(&r.ID, &r.ComicID, &title, &number, &created, &r.ComicTitle); err != nil {
			return nil, err
		}
		r.Title = title.String
		r.Number = intPtr(number)
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- pages ---

// ListPages returns the pages of a chapter ordered by page number ascending,
// unnumbered pages last. It satisfies reader.Source.
func (s *Store) ListPages(ctx context.Context, chapterID string) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, page_number, image_url FROM pages
WHERE chapter_id = ?
ORDER BY page_number IS NULL, page_number ASC, id`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var number sql.NullInt64
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &number, &imageURL); err != nil {
			return nil, err
		}
		p.Number = intPtr(number)
		p.ImageURL = imageURL.String
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// SavePage upserts a page of chapterID, assigning an id when missing.
func (s *Store) SavePage(ctx context.Context, chapterID string, p *Page) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pages (id, chapter_id, page_number, image_url)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    chapter_id = excluded.chapter_id,
    page_number = excluded.page_number,
    image_url = excluded.image_url`,
		p.ID, chapterID, nullInt(p.Number), nullString(p.ImageURL))
	return err
}

// --- users ---

// CreateUser stores a new user. It returns ErrEmailTaken if the email is
// already registered.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	u := User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByEmail looks a user up by (case-insensitive) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, `email = ?`, normalizeEmail(email))
}

// GetUser looks a user up by id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// --- favorites ---

// FindFavorite returns the favorite linking userID and comicID, or ErrNotFound.
func (s *Store) FindFavorite(ctx context.Context, userID, comicID string) (Favorite, error) {
	var f Favorite
	var created string
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, comic_id, created_at FROM favorites WHERE user_id = ? AND comic_id = ?`,
		userID, comicID).Scan(&f.ID, &f.UserID, &f.ComicID, &created)
	if err != nil {
		return Favorite{}, err
	}
	f.CreatedAt = parseTime(created)
	return f, nil
}

func addFavorite(ctx context.Context, tx *sql.Tx, userID, comicID string) (Favorite, error) {
	f := Favorite{UserID: userID, ComicID: comicID, CreatedAt: time.Now().UTC()}
	res, err := tx.ExecContext(ctx, `INSERT INTO favorites (user_id, comic_id, created_at) VALUES (?, ?, ?)`,
		userID, comicID, formatTime(f.CreatedAt))
	if err != nil {
		return Favorite{}, err
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return Favorite{}, err
	}
	return f, nil
}

// ToggleFavorite deletes the (userID, comicID) favorite when it exists and
// creates it otherwise. It reports whether the comic is a favorite afterwards.
func (s *Store) ToggleFavorite(ctx context.Context, userID, comicID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM favorites WHERE user_id = ? AND comic_id = ?`, userID, comicID).Scan(&id)
	favorited := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := addFavorite(ctx, tx, userID, comicID); err != nil {
			return false, fmt.Errorf("add favorite: %w", err)
		}
		favorited = true
	case err != nil:
		return false, err
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id); err != nil {
			return false, fmt.Errorf("delete favorite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return favorited, nil
}

// ListFavorites returns the favorites of userID, newest first, each with its
// comic attached. Comic is nil if the comic row is gone.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT f.id, f.user_id, f.comic_id, f.created_at,
       c.id, c.title, c.author, c.description, c.cover_url, c.coming_soon
FROM favorites f LEFT JOIN comics c ON c.id = f.comic_id
WHERE f.user_id = ?
ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		var created string
		var cid, title, author, description, cover sql.NullString
		var comingSoon sql.NullInt64
		if err := rows.Scan(&f.ID, &f.UserID, &f.ComicID, &created,
			&cid, &title, &author, &description, &cover, &comingSoon); err != nil {
			return nil, err
		}
		f.CreatedAt = parseTime(created)
		if cid.Valid {
			f.Comic = &Comic{
				ID:          cid.String,
				Title:       title.String,
				Author:      author.String,
				Description: description.String,
				CoverURL:    cover.String,
				ComingSoon:  comingSoon.Int64 == 1,
			}
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// --- ratings ---

// SetRating stores the user's rating for a comic, replacing any earlier one.
func (s *Store) SetRating(ctx context.Context, userID, comicID string, value int) error {
	if value < 1 || value > MaxRating {
		return ErrInvalidRating
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ratings (user_id, comic_id, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, comic_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, comicID, value, formatTime(time.Now().UTC()))
	return err
}

// GetRating returns the user's rating for a comic, or 0 if there is none.
func (s *Store) GetRating(ctx context.Context, userID, comicID string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ratings WHERE user_id = ? AND comic_id = ?`, userID, comicID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, err
}

// --- helpers ---

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
