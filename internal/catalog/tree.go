package catalog

import "laonlink/storefront/internal/domain"

// BuildCategoryTree derives the category tree from product category fields.
// Empty levels end the branch for that product.
func BuildCategoryTree(products []domain.Product) *domain.CategoryNode {
	root := domain.NewRootCategory()

	for _, p := range products {
		if p.CategoryMainEN == "" {
			continue
		}
		mainNode := root.EnsureChild(p.CategoryMainEN, p.CategoryMainKR)

		if p.CategorySubEN == "" {
			continue
		}
		sub := mainNode.EnsureChild(p.CategorySubEN, p.CategorySubKR)

		if p.CategorySubSubEN == "" {
			continue
		}
		sub.EnsureChild(p.CategorySubSubEN, p.CategorySubSubKR)
	}

	return root
}
