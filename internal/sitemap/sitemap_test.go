package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">
  <url>
    <loc>https://example.com/breaking-market-news/</loc>
    <news:news>
      <news:publication>
        <news:name>Example News</news:name>
        <news:language>en</news:language>
      </news:publication>
      <news:title>Breaking Market News</news:title>
      <news:publication_date>2025-03-10T08:30:00+07:00</news:publication_date>
      <news:keywords>markets, finance</news:keywords>
    </news:news>
  </url>
  <url>
    <loc>https://example.com/untitled-article-slug/</loc>
    <news:news>
      <news:publication_date>2025-03-10T09:00:00+07:00</news:publication_date>
    </news:news>
  </url>
  <url>
    <loc></loc>
  </url>
</urlset>`

func TestParse(t *testing.T) {
	articles, err := Parse([]byte(sampleSitemap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.URL != "https://example.com/breaking-market-news/" {
		t.Errorf("unexpected URL: %s", first.URL)
	}
	if first.Title != "Breaking Market News" {
		t.Errorf("unexpected title: %s", first.Title)
	}
	if first.PublicationDate != "2025-03-10T08:30:00+07:00" {
		t.Errorf("unexpected publication date: %s", first.PublicationDate)
	}
	if len(first.Keywords) != 2 || first.Keywords[0] != "markets" || first.Keywords[1] != "finance" {
		t.Errorf("unexpected keywords: %v", first.Keywords)
	}
}

func TestParse_TitleFallsBackToSlug(t *testing.T) {
	articles, err := Parse([]byte(sampleSitemap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if articles[1].Title != "Untitled Article Slug" {
		t.Errorf("expected slug-derived title, got %q", articles[1].Title)
	}
}

func TestParse_InvalidXML(t *testing.T) {
	_, err := Parse([]byte("not xml at all <<<"))
	if err == nil {
		t.Fatal("expected error for invalid XML, got nil")
	}
}

func TestParse_EmptyURLSkipped(t *testing.T) {
	articles, err := Parse([]byte(sampleSitemap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, a := range articles {
		if a.URL == "" {
			t.Error("entry with empty loc should have been skipped")
		}
	}
}

func TestPublishedAt(t *testing.T) {
	a := Article{PublicationDate: "2025-03-10T08:30:00+07:00"}
	ts, ok := a.PublishedAt()
	if !ok {
		t.Fatal("expected publication date to parse")
	}
	if ts.UTC().Hour() != 1 {
		t.Errorf("unexpected parsed hour: %d", ts.UTC().Hour())
	}

	a = Article{PublicationDate: ""}
	if _, ok := a.PublishedAt(); ok {
		t.Error("empty publication date should not parse")
	}

	a = Article{PublicationDate: "yesterday"}
	if _, ok := a.PublishedAt(); ok {
		t.Error("garbage publication date should not parse")
	}
}

func TestFetch(t *testing.T) {
	var gotCacheBuster, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheBuster = r.URL.Query().Get("_cb")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(sampleSitemap))
	}))
	defer server.Close()

	c := NewClient(5 * time.Second)
	data, err := c.Fetch(context.Background(), server.URL+"/news-sitemap.xml")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected sitemap body")
	}
	if gotCacheBuster == "" {
		t.Error("expected cache-busting query param")
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("expected browser User-Agent, got %q", gotUA)
	}
}

func TestFetch_AppendsToExistingQuery(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(sampleSitemap))
	}))
	defer server.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.Fetch(context.Background(), server.URL+"/sitemap.xml?page=2"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(rawQuery, "page=2") || !strings.Contains(rawQuery, "_cb=") {
		t.Errorf("expected both params preserved, got %q", rawQuery)
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestFetchAndParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleSitemap))
	}))
	defer server.Close()

	c := NewClient(5 * time.Second)
	articles, err := c.FetchAndParse(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchAndParse failed: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		loc  string
		want string
	}{
		{"https://example.com/hello-world/", "Hello World"},
		{"https://example.com/one", "One"},
		{"https://example.com/a-b-c", "A B C"},
	}
	for _, tt := range tests {
		if got := titleFromSlug(tt.loc); got != tt.want {
			t.Errorf("titleFromSlug(%q) = %q, want %q", tt.loc, got, tt.want)
		}
	}
}
