package site

import (
	"regexp"
	"strconv"
	"strings"

	"laonlink/storefront/internal/domain"
)

const maxSlugLength = 100

var (
	conditionTagPattern = regexp.MustCompile(`(?i)\[used\]|\[중고\]`)
	nonSlugPattern      = regexp.MustCompile(`[^a-z0-9]+`)
	modelNumberPattern  = regexp.MustCompile(`\b([A-Z]{2,}-?[A-Z0-9]{2,})\b`)
)

// Slug turns a name into a URL path segment of lowercase ASCII letters, digits
// and single dashes.
func Slug(name string) string {
	s := strings.ToLower(name)
	s = conditionTagPattern.ReplaceAllString(s, "")
	s = nonSlugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

// ModelNumber extracts a model number such as "QJ71C24N" from the English
// name, falling back to the product id.
func ModelNumber(p domain.Product) string {
	if match := modelNumberPattern.FindStringSubmatch(p.NameEN); match != nil {
		return match[1]
	}
	return p.ID
}

// AssignSlugs returns the page slug per product id. Products whose slug is
// already taken get their id appended.
func AssignSlugs(products []domain.Product) map[string]string {
	slugs := make(map[string]string, len(products))
	taken := make(map[string]bool, len(products))

	for _, p := range products {
		slug := Slug(ModelNumber(p))
		if slug == "" {
			slug = Slug(p.ID)
		}
		if slug == "" {
			slug = "product"
		}

		if taken[slug] {
			slug = disambiguate(slug, p.ID, taken)
		}

		taken[slug] = true
		slugs[p.ID] = slug
	}

	return slugs
}

func disambiguate(slug, id string, taken map[string]bool) string {
	base := slug
	if suffix := Slug(id); suffix != "" {
		base = slug + "-" + suffix
	}
	candidate := base
	for n := 2; taken[candidate]; n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}
