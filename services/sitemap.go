package services

import (
	"encoding/xml"
	"github.com/TokDenis/folio/sorting"
	"github.com/TokDenis/folio/types"
	"github.com/gorilla/feeds"
	"io"
	"time"
)

type SitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type URLSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []SitemapURL `xml:"url"`
}

// Sitemap lists the index and archive pages (modified today), then every
// post and archived post with its publish date.
func Sitemap(baseURL string, posts, archive []types.Post, now time.Time) URLSet {
	today := now.Format(sorting.DateLayout)

	var urls []SitemapURL
	for _, route := range []string{"", "/archive"} {
		urls = append(urls, SitemapURL{Loc: baseURL + route, LastMod: today})
	}

	for _, post := range posts {
		urls = append(urls, SitemapURL{Loc: baseURL + post.Page(), LastMod: post.PublishedAt})
	}
	for _, post := range archive {
		urls = append(urls, SitemapURL{Loc: baseURL + post.Page(), LastMod: post.PublishedAt})
	}

	return URLSet{URLs: urls}
}

func WriteSitemap(w io.Writer, set URLSet) error {
	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}

// Feed builds the RSS feed of published posts, newest first.
func Feed(title, baseURL string, posts []types.Post, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:   title,
		Link:    &feeds.Link{Href: baseURL},
		Created: now,
	}

	for _, post := range sorting.SortPosts(posts, sorting.DefaultSort) {
		created, _ := sorting.ParseDate(post.PublishedAt)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          baseURL + post.Page(),
			Title:       post.Title,
			Link:        &feeds.Link{Href: baseURL + post.Page()},
			Description: post.Summary,
			Created:     created,
		})
	}

	return feed
}
