package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/service"
	"laonlink/storefront/internal/source"
	"laonlink/storefront/internal/state"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{"products": [
	{"id": "1", "name_en": "[Used] QJ71C24N Serial", "manufacturer": "MITSUBISHI", "category_main_en": "PLC", "category_sub_en": "MELSEC", "price_eur_markup": 120},
	{"id": "2", "name_en": "New CJ1M CPU", "name_kr": "신품 CJ1M CPU", "manufacturer": "OMRON", "category_main_en": "PLC", "category_sub_en": "SYSMAC", "price_eur_markup": 80},
	{"id": "3", "name_en": "MR-J2S Servo Amp", "manufacturer": "MITSUBISHI", "category_main_en": "Servo", "category_main_kr": "서보", "price_eur_markup": 300}
]}`

func newTestRouter(t *testing.T, load bool) http.Handler {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "catalog.json", []byte(catalogJSON), 0o644))
	require.NoError(t, afero.WriteFile(fs, "site/sitemap.xml", []byte("<urlset>storefront</urlset>"), 0o644))

	svc := service.NewService(catalog.NewStore(), source.NewFileSource(fs, "catalog.json"), nil, nil, nil, state.NewMemoryStore(), service.Options{
		InquiryEmail: "sales@example.test",
		PageSize:     12,
	})
	if load {
		require.NoError(t, svc.LoadCatalog(context.Background()))
	}

	return NewRouter(svc, afero.NewBasePathFs(fs, "site"))
}

func do(t *testing.T, h http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func productIDs(resp productsResponse) []string {
	ids := make([]string, 0, len(resp.Products))
	for _, p := range resp.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t, true), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","products":3}`, rec.Body.String())

	rec = do(t, newTestRouter(t, false), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListProducts(t *testing.T) {
	h := newTestRouter(t, true)

	tests := []struct {
		name      string
		target    string
		wantMode  string
		wantIDs   []string
		wantCrumb string
	}{
		{name: "home", target: "/api/products", wantMode: "HOME", wantIDs: []string{}, wantCrumb: "Select a Category"},
		{name: "category", target: "/api/products?category=PLC", wantMode: "CATEGORY", wantIDs: []string{"1", "2"}, wantCrumb: "PLC"},
		{name: "sub category", target: "/api/products?category=PLC&sub=SYSMAC", wantMode: "CATEGORY", wantIDs: []string{"2"}, wantCrumb: "PLC"},
		{name: "search", target: "/api/products?q=mitsubishi&sort=price-desc", wantMode: "SEARCH", wantIDs: []string{"3", "1"}, wantCrumb: `Search results for "mitsubishi"`},
		{name: "filters default to used", target: "/api/products?category=PLC&max_price=500", wantMode: "CATEGORY", wantIDs: []string{"1"}, wantCrumb: "PLC"},
		{name: "filters on home", target: "/api/products?min_price=100&condition=used&condition=new&sort=price-asc", wantMode: "HOME", wantIDs: []string{"1", "3"}, wantCrumb: "Select a Category"},
		{name: "manufacturer", target: "/api/products?manufacturer=OMRON&condition=new", wantMode: "HOME", wantIDs: []string{"2"}, wantCrumb: "Select a Category"},
		{name: "paging", target: "/api/products?category=PLC&page_size=1&page=2", wantMode: "CATEGORY", wantIDs: []string{"2"}, wantCrumb: "PLC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[productsResponse](t, rec)
			assert.Equal(t, tt.wantMode, string(resp.Mode))
			assert.Equal(t, tt.wantIDs, productIDs(resp))
			require.NotEmpty(t, resp.Breadcrumb)
			assert.Equal(t, tt.wantCrumb, resp.Breadcrumb[0].Label)
		})
	}
}

func TestListProductsRejectsBadInput(t *testing.T) {
	h := newTestRouter(t, true)

	tests := []struct {
		target string
		field  string
	}{
		{target: "/api/products?min_price=10&max_price=5", field: "minPrice"},
		{target: "/api/products?min_price=cheap", field: "minPrice"},
		{target: "/api/products?max_price=-1", field: "maxPrice"},
		{target: "/api/products?condition=broken", field: "conditions"},
		{target: "/api/products?sort=random", field: "sort"},
		{target: "/api/products?page=two", field: "page"},
		{target: "/api/products?lang=jp", field: "lang"},
		{target: "/api/products/1?lang=jp", field: "lang"},
		{target: "/api/categories?lang=jp", field: "lang"},
		{target: "/api/products?page_size=0&category=PLC", field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if tt.field == "" {
				assert.Equal(t, http.StatusOK, rec.Code, "zero page size means default")
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[errorResponse](t, rec).Field)
		})
	}
}

func TestListProductsUnknownCategory(t *testing.T) {
	h := newTestRouter(t, true)

	for _, target := range []string{"/api/products?category=HMI", "/api/products?category=PLC&sub=CompactLogix"} {
		rec := do(t, h, http.MethodGet, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "category not found")
	}
}

func TestListProductsDisplayName(t *testing.T) {
	h := newTestRouter(t, true)

	type listing struct {
		Lang     string `json:"lang"`
		Products []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"products"`
	}

	rec := do(t, h, http.MethodGet, "/api/products?category=PLC&lang=kr")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[listing](t, rec)
	assert.Equal(t, "kr", resp.Lang)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "[Used] QJ71C24N Serial", resp.Products[0].DisplayName)
	assert.Equal(t, "신품 CJ1M CPU", resp.Products[1].DisplayName)

	rec = do(t, h, http.MethodGet, "/api/products?category=PLC")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[listing](t, rec)
	assert.Equal(t, "en", resp.Lang)
	assert.Equal(t, "New CJ1M CPU", resp.Products[1].DisplayName)

	rec = do(t, h, http.MethodGet, "/api/products/2?lang=kr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "신품 CJ1M CPU", decode[productResponse](t, rec).DisplayName)
}

func TestUninitializedCatalog(t *testing.T) {
	h := newTestRouter(t, false)

	for _, target := range []string{"/api/products", "/api/products/1", "/api/categories", "/api/manufacturers"} {
		rec := do(t, h, http.MethodGet, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestProductSessionFlow(t *testing.T) {
	h := newTestRouter(t, true)

	rec := do(t, h, http.MethodGet, "/api/products/2")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	sessionCookie := cookies[0]

	product := decode[productResponse](t, rec)
	assert.Equal(t, "2", product.Product.ID)
	assert.Equal(t, "new", string(product.Condition))
	assert.Equal(t, "€80.00", product.PriceLabel)
	assert.True(t, strings.HasPrefix(product.InquiryURL, "mailto:sales@example.test?"))

	rec = do(t, h, http.MethodGet, "/api/products/1", sessionCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "existing session is kept")
	assert.Equal(t, []string{"1", "2"}, decode[productResponse](t, rec).RecentlyViewed)

	rec = do(t, h, http.MethodGet, "/api/recently-viewed", sessionCookie)
	assert.Equal(t, []string{"1", "2"}, decode[[]string](t, rec))

	rec = do(t, h, http.MethodGet, "/api/products/missing", sessionCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, h, http.MethodPost, "/api/cart/1", sessionCookie)
	rec = do(t, h, http.MethodPost, "/api/cart/1", sessionCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[cartResponse](t, rec).Count)

	rec = do(t, h, http.MethodPost, "/api/cart/missing", sessionCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/cart")
	assert.Equal(t, 0, decode[cartResponse](t, rec).Count, "a new visitor has an empty cart")
}

func TestCatalogMetadata(t *testing.T) {
	h := newTestRouter(t, true)

	rec := do(t, h, http.MethodGet, "/api/manufacturers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"MITSUBISHI", "OMRON"}, decode[[]string](t, rec))

	rec = do(t, h, http.MethodGet, "/api/categories?lang=kr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"name": "PLC", "display_name": "PLC", "count": 2, "has_subcategories": true, "subcategories": [
			{"name": "MELSEC", "display_name": "MELSEC", "has_subcategories": false},
			{"name": "SYSMAC", "display_name": "SYSMAC", "has_subcategories": false}
		]},
		{"name": "Servo", "display_name": "서보", "count": 1, "has_subcategories": false}
	]`, rec.Body.String())
}

func TestStaticSite(t *testing.T) {
	rec := do(t, newTestRouter(t, true), http.MethodGet, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront")
}
