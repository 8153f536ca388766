package navigation

import (
	"cmp"
	"slices"
	"strings"

	"laonlink/storefront/internal/domain"
)

type predicate func(domain.Product) bool

// Derive computes the full (unpaged) result list for s from the source-ordered
// catalog. HOME without applied filters yields no results.
func Derive(products []domain.Product, s State) []domain.Product {
	var match predicate

	switch s.Mode() {
	case ModeCategory:
		match = categoryPredicate(s.Path)
		if s.FiltersApplied {
			match = both(match, structuredPredicate(s))
		}
	case ModeSearch:
		match = searchPredicate(s.SearchTerm)
	default:
		if !s.FiltersApplied {
			return nil
		}
		match = structuredPredicate(s)
	}

	results := make([]domain.Product, 0)
	for _, p := range products {
		if match(p) {
			results = append(results, p)
		}
	}

	sortProducts(results, s.SortKey)
	return results
}

// categoryPredicate matches on the deepest selected level only, so a sub
// category name shared by two main categories matches products under both.
func categoryPredicate(path domain.CategoryPath) predicate {
	level := path.Level()
	name := path.Leaf()
	return func(p domain.Product) bool {
		return p.CategoryAt(level) == name
	}
}

func searchPredicate(term string) predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(p domain.Product) bool {
		return strings.Contains(searchableText(p), needle)
	}
}

func searchableText(p domain.Product) string {
	return strings.ToLower(strings.Join([]string{
		p.NameEN,
		p.NameKR,
		p.ModelNumber,
		p.Manufacturer,
		p.CategoryMainEN,
		p.CategorySubEN,
	}, " "))
}

func structuredPredicate(s State) predicate {
	price := s.Price
	manufacturers := s.Manufacturers
	conditions := s.Conditions

	return func(p domain.Product) bool {
		if !price.Contains(p.PriceEURMarkup) {
			return false
		}
		if len(manufacturers) > 0 && !slices.Contains(manufacturers, p.Manufacturer) {
			return false
		}
		if len(conditions) > 0 && !slices.Contains(conditions, domain.DeriveCondition(p)) {
			return false
		}
		return true
	}
}

func both(a, b predicate) predicate {
	return func(p domain.Product) bool {
		return a(p) && b(p)
	}
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortNameAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return compareNames(a, b)
		})
	case domain.SortNameDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return compareNames(b, a)
		})
	case domain.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(a.PriceEURMarkup, b.PriceEURMarkup)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.PriceEURMarkup, a.PriceEURMarkup)
		})
	case domain.SortNewest:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.ScrapedTime().Compare(a.ScrapedTime())
		})
	}
}

func compareNames(a, b domain.Product) int {
	return strings.Compare(strings.ToLower(a.NameEN), strings.ToLower(b.NameEN))
}
