package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Payload is the raw catalog data handed to the catalog store.
type Payload struct {
	Products   []domain.Product
	Categories *domain.CategoryNode
}

// Source loads the catalog payload once at startup.
type Source interface {
	Load(ctx context.Context) (*Payload, error)
}

type document struct {
	Products   []domain.Product                `json:"products"`
	Categories map[string]*domain.CategoryNode `json:"categories"`
}

var (
	productsBundlePattern   = regexp.MustCompile(`const\s+productsData\s*=\s*`)
	categoriesBundlePattern = regexp.MustCompile(`const\s+categoriesData\s*=\s*`)
)

// Decode accepts a {"products","categories"} document, a bare product array or
// the products-data.js bundle.
func Decode(data []byte) (*Payload, error) {
	trimmed := skipSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to decode catalog: empty payload")
	}

	switch trimmed[0] {
	case '[':
		var products []domain.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, fmt.Errorf("failed to decode product array: %w", err)
		}
		return &Payload{Products: products}, nil
	case '{':
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode catalog document: %w", err)
		}
		return &Payload{Products: doc.Products, Categories: rootOf(doc.Categories)}, nil
	default:
		return decodeBundle(trimmed)
	}
}

func decodeBundle(data []byte) (*Payload, error) {
	var products []domain.Product
	found, err := decodeBundleValue(data, productsBundlePattern, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to decode productsData: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("failed to decode catalog: productsData not found")
	}

	payload := &Payload{Products: products}

	var categories map[string]*domain.CategoryNode
	if _, err := decodeBundleValue(data, categoriesBundlePattern, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categoriesData: %w", err)
	}
	payload.Categories = rootOf(categories)

	return payload, nil
}

// decodeBundleValue decodes the single JSON value assigned after the
// declaration matched by pattern. Whatever follows the value is ignored.
func decodeBundleValue(data []byte, pattern *regexp.Regexp, v any) (bool, error) {
	loc := pattern.FindIndex(data)
	if loc == nil {
		return false, nil
	}
	if err := json.NewDecoder(bytes.NewReader(data[loc[1]:])).Decode(v); err != nil {
		return true, err
	}
	return true, nil
}

func rootOf(categories map[string]*domain.CategoryNode) *domain.CategoryNode {
	if categories == nil {
		return nil
	}
	root := domain.NewRootCategory()
	root.Children = categories
	fillNames(root)
	return root
}

// fillNames names nodes after their key when the name field is absent.
func fillNames(n *domain.CategoryNode) {
	for key, child := range n.Children {
		if child == nil {
			continue
		}
		if child.Name == "" {
			child.Name = key
		}
		fillNames(child)
	}
}

func skipSpace(data []byte) []byte {
	for i, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			// UTF-8 byte order mark
			if len(data) >= i+3 && data[i+1] == 0xBB && data[i+2] == 0xBF {
				return skipSpace(data[i+3:])
			}
		}
		return data[i:]
	}
	return nil
}

// PrepareOptions selects the optional specification clean-ups.
type PrepareOptions struct {
	RepairSpecifications    bool
	TranslateSpecifications bool
}

// Prepare cleans specifications when asked and falls back to a tree built
// from the products when none was supplied. Repair runs before translation so
// shifted Korean keys are translated in their repaired position.
func Prepare(payload *Payload, opts PrepareOptions) *Payload {
	if payload == nil {
		return nil
	}

	if opts.RepairSpecifications {
		if n := rewriteSpecifications(payload.Products, RepairSpecifications); n > 0 {
			log.Infof("🔧 Repaired specifications of %d products", n)
		}
	}

	if opts.TranslateSpecifications {
		if n := rewriteSpecifications(payload.Products, TranslateSpecifications); n > 0 {
			log.Infof("🌐 Translated specifications of %d products", n)
		}
	}

	if payload.Categories == nil && payload.Products != nil {
		payload.Categories = catalog.BuildCategoryTree(payload.Products)
		log.Debugf("🌳 Built category tree from %d products", len(payload.Products))
	}

	return payload
}

func rewriteSpecifications(products []domain.Product, rewrite func(string) string) int {
	changed := 0
	for i := range products {
		next := rewrite(products[i].Specifications)
		if next != products[i].Specifications {
			products[i].Specifications = next
			changed++
		}
	}
	return changed
}
