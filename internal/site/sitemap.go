package site

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"

	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/domain"
)

// Sitemap styles.
const (
	// SitemapPaths lists the home page, landing category directories and the
	// generated product pages.
	SitemapPaths = "paths"
	// SitemapQuery lists SPA routes addressed with ?category= and ?product=.
	SitemapQuery = "query"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap renders sitemap.xml and returns it with the number of URLs.
// slugs is only consulted for the paths style.
func BuildSitemap(cfg config.SiteConfig, products []domain.Product, slugs map[string]string, buildDate time.Time) ([]byte, int, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	lastMod := buildDate.UTC().Format(time.DateOnly)

	entry := func(loc, freq, priority string) sitemapURL {
		return sitemapURL{Loc: loc, LastMod: lastMod, ChangeFreq: freq, Priority: priority}
	}

	set := urlSet{XMLNS: sitemapNamespace}
	set.URLs = append(set.URLs, entry(base+"/", "daily", "1.0"))

	switch cfg.SitemapStyle {
	case SitemapQuery:
		for _, category := range MainCategories(products) {
			set.URLs = append(set.URLs, entry(base+"/?category="+encodeURIComponent(category), "weekly", "0.9"))
		}
		for _, p := range products {
			if p.ID == "" {
				continue
			}
			set.URLs = append(set.URLs, entry(base+"/?product="+encodeURIComponent(p.ID), "weekly", "0.7"))
		}
	case SitemapPaths, "":
		for _, category := range cfg.Categories {
			if slug := Slug(category.Slug); slug != "" {
				set.URLs = append(set.URLs, entry(base+"/"+slug+"/", "weekly", "0.9"))
			}
		}
		for _, p := range products {
			slug, ok := slugs[p.ID]
			if !ok {
				continue
			}
			set.URLs = append(set.URLs, entry(productURL(base, slug), "weekly", "0.7"))
		}
	default:
		return nil, 0, fmt.Errorf("unknown sitemap style %q", cfg.SitemapStyle)
	}

	encoded, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode sitemap: %w", err)
	}

	out := append([]byte(xml.Header), encoded...)
	out = append(out, '\n')
	return out, len(set.URLs), nil
}

// MainCategories returns the sorted distinct trimmed main category names.
func MainCategories(products []domain.Product) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range products {
		name := strings.TrimSpace(p.CategoryMainEN)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
