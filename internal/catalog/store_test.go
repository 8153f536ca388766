package catalog

import (
	"errors"
	"testing"

	"laonlink/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "A", NameEN: "Q02HCPU", Manufacturer: "Mitsubishi", CategoryMainEN: "PLC", CategorySubEN: "MELSEC", CategorySubSubEN: "Q Series"},
		{ID: "B", NameEN: "GT2710", Manufacturer: "Mitsubishi", CategoryMainEN: "HMI", CategoryMainKR: "터치패널"},
		{ID: "C", NameEN: "CJ1M", Manufacturer: "Omron", CategoryMainEN: "PLC", CategorySubEN: "SYSMAC"},
		{ID: "D", NameEN: "Loose cable"},
	}
}

func TestStoreLoad(t *testing.T) {
	products := sampleProducts()
	store := NewStore()

	require.NoError(t, store.Load(products, BuildCategoryTree(products)))
	assert.True(t, store.Ready())
	assert.Equal(t, 4, store.Len())

	all := store.AllProducts()
	require.Len(t, all, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	all[0].NameEN = "mutated"
	p, ok := store.ProductByID("A")
	require.True(t, ok)
	assert.Equal(t, "Q02HCPU", p.NameEN)

	_, ok = store.ProductByID("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Mitsubishi", "Omron"}, store.ManufacturersDistinct())
	assert.Equal(t, 2, store.CountByMainCategory("PLC"))
	assert.Equal(t, 0, store.CountByMainCategory("SENSOR"))

	node, ok := store.CategoryByPath(domain.CategoryPath{"PLC", "MELSEC", "Q Series"})
	require.True(t, ok)
	assert.Equal(t, "Q Series", node.Name)

	assert.ErrorIs(t, store.Load(products, BuildCategoryTree(products)), ErrAlreadyLoaded)
}

func TestStoreLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		products []domain.Product
		tree     *domain.CategoryNode
	}{
		{name: "nil products", products: nil, tree: domain.NewRootCategory()},
		{name: "nil tree", products: []domain.Product{}, tree: nil},
		{name: "missing id", products: []domain.Product{{NameEN: "x"}}, tree: domain.NewRootCategory()},
		{name: "duplicate id", products: []domain.Product{{ID: "A"}, {ID: "A"}}, tree: domain.NewRootCategory()},
		{
			name:     "malformed tree",
			products: []domain.Product{},
			tree:     &domain.CategoryNode{Children: map[string]*domain.CategoryNode{"PLC": nil}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			err := store.Load(tc.products, tc.tree)

			var initErr *InitError
			require.True(t, errors.As(err, &initErr), "expected InitError, got %v", err)
			assert.False(t, store.Ready())
			assert.Empty(t, store.AllProducts())
			assert.Nil(t, store.CategoryTree())
			assert.Empty(t, store.ManufacturersDistinct())

			_, ok := store.ProductByID("A")
			assert.False(t, ok)
		})
	}
}

func TestStoreLoadCanBeRetried(t *testing.T) {
	store := NewStore()
	require.Error(t, store.Load(nil, nil))
	require.NoError(t, store.Load([]domain.Product{}, domain.NewRootCategory()))
	assert.True(t, store.Ready())
}

func TestBuildCategoryTree(t *testing.T) {
	tree := BuildCategoryTree(sampleProducts())

	assert.Equal(t, []string{"HMI", "PLC"}, tree.ChildNames())

	plc, ok := tree.Child("PLC")
	require.True(t, ok)
	assert.Equal(t, []string{"MELSEC", "SYSMAC"}, plc.ChildNames())

	hmi, ok := tree.Child("HMI")
	require.True(t, ok)
	assert.Equal(t, "터치패널", hmi.NameKR)
	assert.False(t, hmi.HasChildren())

	require.NoError(t, tree.Validate())
}
