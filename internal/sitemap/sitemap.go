// Package sitemap fetches and parses Google News sitemaps.
// It extracts article URLs, titles, publication dates and keywords from the
// news-sitemap.xml a WordPress/Yoast site exposes.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Browser-like UA; some CDNs serve bots a cached or empty sitemap.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Article is a single sitemap entry.
type Article struct {
	URL             string
	Title           string
	PublicationDate string
	Keywords        []string
}

type Client struct {
	rest *resty.Client
}

func NewClient(timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second) // default fallback
	}
	r.SetHeader("User-Agent", userAgent)
	r.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate")
	r.SetHeader("Pragma", "no-cache")
	return &Client{rest: r}
}

// Fetch downloads the sitemap. A timestamp query param is appended to bust
// CDN caches (W3 Total Cache keeps sitemaps for 24h).
func (c *Client) Fetch(ctx context.Context, sitemapURL string) ([]byte, error) {
	sep := "?"
	if strings.Contains(sitemapURL, "?") {
		sep = "&"
	}
	url := fmt.Sprintf("%s%s_cb=%d", sitemapURL, sep, time.Now().Unix())

	resp, err := c.rest.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("fetch sitemap: status %d", resp.StatusCode())
	}

	log.Debug().Int("bytes", len(resp.Body())).Msg("sitemap fetched")
	return resp.Body(), nil
}

type urlSet struct {
	XMLName xml.Name   `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc  string    `xml:"loc"`
	News newsEntry `xml:"http://www.google.com/schemas/sitemap-news/0.9 news"`
}

type newsEntry struct {
	Title           string `xml:"title"`
	PublicationDate string `xml:"publication_date"`
	Keywords        string `xml:"keywords"`
}

// Parse extracts articles from sitemap XML. Entries without a URL are
// skipped; entries without a news title fall back to a title derived from
// the URL slug.
func Parse(data []byte) ([]Article, error) {
	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse sitemap XML: %w", err)
	}

	log.Debug().Int("entries", len(set.URLs)).Msg("sitemap parsed")

	articles := make([]Article, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}

		title := strings.TrimSpace(u.News.Title)
		if title == "" {
			title = titleFromSlug(loc)
		}

		articles = append(articles, Article{
			URL:             loc,
			Title:           title,
			PublicationDate: strings.TrimSpace(u.News.PublicationDate),
			Keywords:        splitKeywords(u.News.Keywords),
		})
	}

	return articles, nil
}

// FetchAndParse downloads the sitemap and returns its articles.
func (c *Client) FetchAndParse(ctx context.Context, sitemapURL string) ([]Article, error) {
	data, err := c.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// PublishedAt parses the entry's publication date, if present and valid.
func (a Article) PublishedAt() (time.Time, bool) {
	if a.PublicationDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, a.PublicationDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func titleFromSlug(loc string) string {
	slug := strings.TrimRight(loc, "/")
	if idx := strings.LastIndex(slug, "/"); idx >= 0 {
		slug = slug[idx+1:]
	}
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
