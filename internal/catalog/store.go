package catalog

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"laonlink/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Store holds the immutable product list and category tree for a session.
type Store struct {
	mu            sync.RWMutex
	ready         bool
	products      []domain.Product
	byID          map[string]int
	tree          *domain.CategoryNode
	manufacturers []string
	mainCounts    map[string]int
}

func NewStore() *Store {
	return &Store{}
}

// Load initializes the store once. Nil products or a missing or malformed tree
// are rejected with an *InitError and leave the store unusable; Load may then be
// retried.
func (s *Store) Load(products []domain.Product, tree *domain.CategoryNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return ErrAlreadyLoaded
	}

	if products == nil {
		return &InitError{Reason: "product list is missing"}
	}
	if err := tree.Validate(); err != nil {
		return &InitError{Reason: "category tree is malformed", Err: err}
	}

	byID := make(map[string]int, len(products))
	mainCounts := make(map[string]int)
	seenManufacturers := make(map[string]struct{})
	manufacturers := make([]string, 0)

	for i, p := range products {
		if p.ID == "" {
			return &InitError{Reason: "product without id", Err: fmt.Errorf("at index %d", i)}
		}
		if _, exists := byID[p.ID]; exists {
			return &InitError{Reason: "duplicate product id " + p.ID}
		}
		byID[p.ID] = i

		if p.CategoryMainEN != "" {
			mainCounts[p.CategoryMainEN]++
		}

		if p.Manufacturer == "" {
			continue
		}
		if _, exists := seenManufacturers[p.Manufacturer]; !exists {
			seenManufacturers[p.Manufacturer] = struct{}{}
			manufacturers = append(manufacturers, p.Manufacturer)
		}
	}
	sort.Strings(manufacturers)

	s.products = slices.Clone(products)
	s.byID = byID
	s.tree = tree
	s.manufacturers = manufacturers
	s.mainCounts = mainCounts
	s.ready = true

	log.Infof("✅ Catalog loaded: %d products, %d main categories, %d manufacturers",
		len(products), len(tree.Children), len(manufacturers))
	return nil
}

// Ready reports whether Load has succeeded.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// AllProducts returns the full catalog in source order.
func (s *Store) AllProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// Len returns the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// CategoryTree returns the root of the category tree, or nil before Load.
func (s *Store) CategoryTree() *domain.CategoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

func (s *Store) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[idx], true
}

// CategoryByPath resolves a category path against the tree.
func (s *Store) CategoryByPath(path domain.CategoryPath) (*domain.CategoryNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tree == nil || len(path) == 0 {
		return nil, false
	}
	return s.tree.Find(path)
}

// ManufacturersDistinct returns the sorted set of non-empty manufacturers.
func (s *Store) ManufacturersDistinct() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.manufacturers)
}

// CountByMainCategory returns how many products sit under a main category.
func (s *Store) CountByMainCategory(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mainCounts[name]
}
