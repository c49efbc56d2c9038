package comicshelf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_comics.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func intp(n int) *int { return &n }

func seedComic(t *testing.T, s *Store, title string) Comic {
	t.Helper()
	c := Comic{Title: title}
	if err := s.SaveComic(context.Background(), &c); err != nil {
		t.Fatalf("SaveComic failed: %v", err)
	}
	return c
}

func seedUser(t *testing.T, s *Store, email string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetComic(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	comic := Comic{
		Title:       "Night Harbor",
		Author:      "R. Vale",
		Description: "A lighthouse keeper and the sea.",
		CoverURL:    "/public/uploads/covers/night-harbor.jpg",
		ComingSoon:  true,
	}
	if err := s.SaveComic(ctx, &comic); err != nil {
		t.Fatalf("SaveComic failed: %v", err)
	}
	if comic.ID == "" {
		t.Fatal("SaveComic should assign an id")
	}

	got, err := s.GetComic(ctx, comic.ID)
	if err != nil {
		t.Fatalf("GetComic failed: %v", err)
	}
	if got != comic {
		t.Errorf("GetComic = %+v, want %+v", got, comic)
	}

	comic.ComingSoon = false
	comic.Author = ""
	if err := s.SaveComic(ctx, &comic); err != nil {
		t.Fatalf("SaveComic update failed: %v", err)
	}
	got, err = s.GetComic(ctx, comic.ID)
	if err != nil {
		t.Fatalf("GetComic failed: %v", err)
	}
	if got.ComingSoon || got.Author != "" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestGetComicNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetComic(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListComicsOrderedByTitle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for _, title := range []string{"zebra", "Apple", "mango"} {
		seedComic(t, s, title)
	}
	got, err := s.ListComics(context.Background())
	if err != nil {
		t.Fatalf("ListComics failed: %v", err)
	}
	want := []string{"Apple", "mango", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("ListComics count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("comic[%d] = %q, want %q", i, got[i].Title, want[i])
		}
	}
}

func TestFindComicByTitle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	c := seedComic(t, s, "Night Harbor")
	got, err := s.FindComicByTitle(context.Background(), "  night harbor ")
	if err != nil {
		t.Fatalf("FindComicByTitle failed: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("FindComicByTitle id = %q, want %q", got.ID, c.ID)
	}
}

func TestListChaptersOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := seedComic(t, s, "Orders")
	for _, ch := range []Chapter{
		{ComicID: c.ID, Title: "extra"},
		{ComicID: c.ID, Number: intp(2), Title: "second"},
		{ComicID: c.ID, Number: intp(1), Title: "first"},
	} {
		ch := ch
		if err := s.SaveChapter(ctx, &ch); err != nil {
			t.Fatalf("SaveChapter failed: %v", err)
		}
	}

	got, err := s.ListChapters(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListChapters failed: %v", err)
	}
	want := []string{"first", "second", "extra"}
	if len(got) != len(want) {
		t.Fatalf("ListChapters count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("chapter[%d] = %q, want %q", i, got[i].Title, want[i])
		}
	}
	if got[2].Number != nil {
		t.Errorf("unnumbered chapter Number = %v, want nil", *got[2].Number)
	}
}

func TestListChaptersEmpty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	c := seedComic(t, s, "Empty")
	got, err := s.ListChapters(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ListChapters failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListChapters count = %d, want 0", len(got))
	}
}

func TestListPagesOrderedByNumber(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := seedComic(t, s, "Pages")
	ch := Chapter{ComicID: c.ID, Number: intp(1)}
	if err := s.SaveChapter(ctx, &ch); err != nil {
		t.Fatalf("SaveChapter failed: %v", err)
	}
	for _, p := range []Page{
		{ID: "c", Number: intp(3), ImageURL: "/c.jpg"},
		{ID: "x"},
		{ID: "a", Number: intp(1), ImageURL: "/a.jpg"},
		{ID: "b", Number: intp(2), ImageURL: "/b.jpg"},
	} {
		p := p
		if err := s.SavePage(ctx, ch.ID, &p); err != nil {
			t.Fatalf("SavePage failed: %v", err)
		}
	}

	got, err := s.ListPages(ctx, ch.ID)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	want := []string{"a", "b", "c", "x"}
	if len(got) != len(want) {
		t.Fatalf("ListPages count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("page[%d] = %q, want %q", i, got[i].ID, want[i])
		}
	}
	if got[0].ImageURL != "/a.jpg" || *got[0].Number != 1 {
		t.Errorf("page a = %+v", got[0])
	}
	if got[3].Number != nil || got[3].ImageURL != "" {
		t.Errorf("page x should have no number or url, got %+v", got[3])
	}
}

func TestListPagesUnknownChapter(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := s.ListPages(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListPages count = %d, want 0", len(got))
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u := seedUser(t, s, "Reader@Example.com")
	if u.Email != "reader@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if _, err := s.CreateUser(ctx, "reader@example.com ", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "READER@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetUserByEmail id = %q, want %q", got.ID, u.ID)
	}
	byID, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("GetUser email = %q, want %q", byID.Email, u.Email)
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := seedComic(t, s, "Toggle")
	u := seedUser(t, s, "t@example.com")

	if _, err := s.FindFavorite(ctx, u.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no favorite initially, got %v", err)
	}

	on, err := s.ToggleFavorite(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !on {
		t.Fatal("first toggle should favorite the comic")
	}
	fav, err := s.FindFavorite(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("FindFavorite after toggle failed: %v", err)
	}
	if fav.ID == 0 {
		t.Error("favorite should have an id")
	}

	on, err = s.ToggleFavorite(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("second ToggleFavorite failed: %v", err)
	}
	if on {
		t.Fatal("second toggle should remove the favorite")
	}
	if _, err := s.FindFavorite(ctx, u.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected favorite removed, got %v", err)
	}
}

func TestCatalogVersionTracksComicsAndChapters(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	v0, err := s.CatalogVersion(ctx)
	if err != nil {
		t.Fatalf("CatalogVersion failed: %v", err)
	}
	c := seedComic(t, s, "Versioned")
	v1, _ := s.CatalogVersion(ctx)
	if v1 <= v0 {
		t.Fatalf("version after comic insert = %d, want > %d", v1, v0)
	}
	c.Title = "Versioned Again"
	if err := s.SaveComic(ctx, &c); err != nil {
		t.Fatal(err)
	}
	v2, _ := s.CatalogVersion(ctx)
	if v2 <= v1 {
		t.Fatalf("version after comic update = %d, want > %d", v2, v1)
	}
	ch := Chapter{ComicID: c.ID}
	if err := s.SaveChapter(ctx, &ch); err != nil {
		t.Fatal(err)
	}
	v3, _ := s.CatalogVersion(ctx)
	if v3 <= v2 {
		t.Fatalf("version after chapter insert = %d, want > %d", v3, v2)
	}

	u := seedUser(t, s, "v@example.com")
	if _, err := s.ToggleFavorite(ctx, u.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if v4, _ := s.CatalogVersion(ctx); v4 != v3 {
		t.Errorf("favorites should not bump the catalog version: %d != %d", v4, v3)
	}
}

func TestListFavoritesNewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u := seedUser(t, s, "f@example.com")
	other := seedUser(t, s, "o@example.com")
	first := seedComic(t, s, "First")
	second := seedComic(t, s, "Second")

	for _, f := range []struct{ user, comic string }{
		{u.ID, first.ID},
		{u.ID, second.ID},
		{other.ID, first.ID},
	} {
		if _, err := s.ToggleFavorite(ctx, f.user, f.comic); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListFavorites(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListFavorites count = %d, want 2", len(got))
	}
	if got[0].Comic == nil || got[0].Comic.Title != "Second" {
		t.Errorf("newest favorite = %+v, want Second", got[0].Comic)
	}
	if got[1].Comic == nil || got[1].Comic.Title != "First" {
		t.Errorf("oldest favorite = %+v, want First", got[1].Comic)
	}
}

func TestRatings(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := seedComic(t, s, "Rated")
	u := seedUser(t, s, "r@example.com")

	if v, err := s.GetRating(ctx, u.ID, c.ID); err != nil || v != 0 {
		t.Fatalf("GetRating before set = %d, %v; want 0, nil", v, err)
	}
	if err := s.SetRating(ctx, u.ID, c.ID, 4); err != nil {
		t.Fatalf("SetRating failed: %v", err)
	}
	if err := s.SetRating(ctx, u.ID, c.ID, 2); err != nil {
		t.Fatalf("SetRating update failed: %v", err)
	}
	if v, err := s.GetRating(ctx, u.ID, c.ID); err != nil || v != 2 {
		t.Errorf("GetRating = %d, %v; want 2, nil", v, err)
	}
	for _, bad := range []int{0, MaxRating + 1, -3} {
		if err := s.SetRating(ctx, u.ID, c.ID, bad); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("SetRating(%d) = %v, want ErrInvalidRating", bad, err)
		}
	}
}

func TestRecentChapters(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c := seedComic(t, s, "Feed")
	for i := 1; i <= 3; i++ {
		ch := Chapter{ComicID: c.ID, Number: intp(i)}
		if err := s.SaveChapter(ctx, &ch); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.RecentChapters(ctx, 2)
	if err != nil {
		t.Fatalf("RecentChapters failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentChapters count = %d, want 2", len(got))
	}
	if got[0].ComicTitle != "Feed" {
		t.Errorf("ComicTitle = %q, want Feed", got[0].ComicTitle)
	}
	if got[0].CreatedAt.Before(got[1].CreatedAt) {
		t.Error("RecentChapters should be newest first")
	}
}

func TestChapterLabel(t *testing.T) {
	tests := []struct {
		ch   Chapter
		want string
	}{
		{Chapter{}, "Chapter"},
		{Chapter{Number: intp(3)}, "Chapter 3"},
		{Chapter{Number: intp(3), Title: "Storm"}, "Chapter 3 · Storm"},
		{Chapter{Title: "Prologue"}, "Chapter · Prologue"},
	}
	for _, tt := range tests {
		if got := tt.ch.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
