package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eringen/comicshelf"
	"github.com/eringen/comicshelf/reader"
)

func TestReaderURL(t *testing.T) {
	tests := []struct {
		page    int
		nav     string
		partial bool
		want    string
	}{
		{0, "", false, "/reader/ch%201/"},
		{2, "", false, "/reader/ch%201/?page=2"},
		{2, "next", false, "/reader/ch%201/?nav=next&page=2"},
		{3, "prev", true, "/reader/ch%201/?nav=prev&page=3&partial=page"},
	}
	for _, tt := range tests {
		if got := ReaderURL("ch 1", tt.page, tt.nav, tt.partial); got != tt.want {
			t.Errorf("ReaderURL(%d, %q, %v) = %q, want %q", tt.page, tt.nav, tt.partial, got, tt.want)
		}
	}
}

func TestErrorPagesUseSiteName(t *testing.T) {
	v := New("Shelf")
	var buf bytes.Buffer
	if err := v.NotFound().Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<title>Not found · Shelf</title>") {
		t.Errorf("missing title: %s", out)
	}
	if !strings.Contains(out, "Sign in") {
		t.Error("signed-out layout should offer sign in")
	}
}

func TestReaderPartialOmitsLayout(t *testing.T) {
	n := 1
	view := comicshelf.ReaderView{
		Chapter: comicshelf.Chapter{ID: "c1"},
		State: reader.State{
			ChapterID: "c1",
			Page:      reader.Page{ID: "p1", Number: &n, ImageURL: "/public/p1.jpg"},
			HasPage:   true,
			Total:     2,
			HasNext:   true,
		},
	}
	var buf bytes.Buffer
	if err := New("Shelf").ReaderPartial(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<html") {
		t.Error("partial should not include the layout")
	}
	for _, want := range []string{`id="reader-page"`, `src="/public/p1.jpg"`, "Page 1 of 2", `rel="next"`} {
		if !strings.Contains(out, want) {
			t.Errorf("partial missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, `rel="prev"`) {
		t.Error("first page should not link back")
	}
}

func TestReaderShowsLoadError(t *testing.T) {
	view := comicshelf.ReaderView{Chapter: comicshelf.Chapter{ID: "c1"}, Error: "load chapter c1: boom"}
	var buf bytes.Buffer
	if err := New("Shelf").Reader(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "load chapter c1: boom") {
		t.Errorf("error not shown: %s", buf.String())
	}
}
