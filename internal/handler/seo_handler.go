package handler

import (
	"encoding/xml"
	"fmt"
	"mbs-hub/internal/data"
	"mbs-hub/internal/middleware"
	"net/http"
	"strings"
	"time"
)

const (
	sitemapDateFormat = "2006-01-02"
	feedTitle         = "Mind / Body / Soul"
	feedDescription   = "Articles on mind, body and soul."
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	content ContentServicer
	baseURL string
}

// NewSeoHandler creates a new SeoHandler. Links are absolute under baseURL.
func NewSeoHandler(cs ContentServicer, baseURL string) *SeoHandler {
	return &SeoHandler{content: cs, baseURL: strings.TrimRight(baseURL, "/")}
}

// robotsHandler serves robots.txt pointing at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /preview")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func lastModified(a data.Article) time.Time {
	if a.UpdatedAt != nil && !a.UpdatedAt.IsZero() {
		return *a.UpdatedAt
	}
	return a.PublishedAt
}

// sitemapHandler lists the home page, every pillar and every published article.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pillars, err := h.content.GetPillars(r.Context())
	if err != nil {
		return middleware.FromError(err)
	}
	articles, err := h.content.GetArticles(r.Context())
	if err != nil {
		return middleware.FromError(err)
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, 1+len(pillars)+len(articles)),
	}
	sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + "/"})
	for _, p := range pillars {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + "/" + p.Slug})
	}
	for _, a := range articles {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.articleURL(a),
			LastMod: lastModified(a).Format(sitemapDateFormat),
		})
	}
	return writeXML(w, "application/xml", sitemap)
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
	Category    string `xml:"category,omitempty"`
	Author      string `xml:"dc:creator,omitempty"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	DC      string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

// rssHandler serves the latest published articles as RSS 2.0.
func (h *SeoHandler) rssHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	articles, err := h.content.GetLatestArticles(r.Context(), 20)
	if err != nil {
		return middleware.FromError(err)
	}

	feed := rssFeed{
		Version: "2.0",
		DC:      "http://purl.org/dc/elements/1.1/",
		Channel: rssChannel{
			Title:       feedTitle,
			Link:        h.baseURL + "/",
			Description: feedDescription,
			Items:       make([]rssItem, 0, len(articles)),
		},
	}
	for _, a := range articles {
		item := rssItem{
			Title:   a.Title,
			Link:    h.articleURL(a),
			GUID:    h.articleURL(a),
			PubDate: a.PublishedAt.UTC().Format(time.RFC1123Z),
		}
		switch {
		case a.SEODescription != nil:
			item.Description = *a.SEODescription
		case a.Subtitle != nil:
			item.Description = *a.Subtitle
		}
		if a.Pillar != nil {
			item.Category = a.Pillar.Name
		}
		if a.Author != nil {
			item.Author = a.Author.Name
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}
	return writeXML(w, "application/rss+xml", feed)
}

func (h *SeoHandler) articleURL(a data.Article) string {
	return h.baseURL + "/article/" + a.Slug
}

func writeXML(w http.ResponseWriter, contentType string, v interface{}) *middleware.AppError {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to generate XML", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(xml.Header))
	w.Write(out)
	return nil
}
