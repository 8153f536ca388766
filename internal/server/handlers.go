package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/domain"
	"laonlink/storefront/internal/navigation"
	"laonlink/storefront/internal/service"
	"laonlink/storefront/internal/state"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type breadcrumbItem struct {
	Label  string   `json:"label"`
	IsLink bool     `json:"is_link"`
	Path   []string `json:"path,omitempty"`
}

// productItem flattens a product and adds its name in the requested language.
type productItem struct {
	domain.Product
	Name string `json:"display_name"`
}

type productsResponse struct {
	Mode       navigation.Mode  `json:"mode"`
	Language   domain.Language  `json:"lang"`
	Products   []productItem    `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Pages      []int            `json:"pages"`
	Breadcrumb []breadcrumbItem `json:"breadcrumb"`
}

type categoryResponse struct {
	Name             string             `json:"name"`
	DisplayName      string             `json:"display_name"`
	Count            int                `json:"count,omitempty"`
	HasSubcategories bool               `json:"has_subcategories"`
	Subcategories    []categoryResponse `json:"subcategories,omitempty"`
}

type productResponse struct {
	Product        domain.Product    `json:"product"`
	DisplayName    string            `json:"display_name"`
	Condition      domain.Condition  `json:"condition"`
	PriceLabel     string            `json:"price_label"`
	Specifications map[string]string `json:"specifications"`
	InquiryURL     string            `json:"inquiry_url"`
	RecentlyViewed []string          `json:"recently_viewed"`
}

type cartResponse struct {
	Items []state.CartItem `json:"items"`
	Count int              `json:"count"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Store().Ready() {
		writeError(w, catalog.ErrNotInitialized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "products": h.svc.Store().Len()})
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	req, err := browseRequest(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Browse(req)
	if err != nil {
		writeError(w, err)
		return
	}

	crumbs := make([]breadcrumbItem, 0, len(result.Breadcrumb))
	for _, item := range result.Breadcrumb {
		crumbs = append(crumbs, breadcrumbItem{Label: item.Label, IsLink: item.IsLink, Path: item.Path})
	}

	products := make([]productItem, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, productItem{Product: p, Name: p.DisplayName(result.Language)})
	}

	writeJSON(w, http.StatusOK, productsResponse{
		Mode:       result.Mode,
		Language:   result.Language,
		Products:   products,
		Total:      result.Total,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Pages:      result.Pages,
		Breadcrumb: crumbs,
	})
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ViewProduct(r.Context(), sessionID(r), chi.URLParam(r, "id"), domain.Language(r.URL.Query().Get("lang")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productResponse{
		Product:        view.Product,
		DisplayName:    view.DisplayName,
		Condition:      view.Condition,
		PriceLabel:     view.Product.PriceLabel(),
		Specifications: view.Specifications,
		InquiryURL:     view.InquiryURL,
		RecentlyViewed: view.RecentlyViewed,
	})
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Categories(domain.Language(r.URL.Query().Get("lang")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponses(cards))
}

func newCategoryResponses(cards []service.CategoryCard) []categoryResponse {
	out := make([]categoryResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, categoryResponse{
			Name:             card.Name,
			DisplayName:      card.DisplayName,
			Count:            card.Count,
			HasSubcategories: card.HasSubcategories(),
			Subcategories:    newCategoryResponses(card.Subcategories),
		})
	}
	return out
}

func (h *handler) manufacturers(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Store().Ready() {
		writeError(w, catalog.ErrNotInitialized)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Store().ManufacturersDistinct())
}

func (h *handler) cart(w http.ResponseWriter, r *http.Request) {
	items := h.svc.Cart(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, newCartResponse(items))
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.AddToCart(r.Context(), sessionID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.svc.Cart(r.Context(), sessionID(r))))
}

func (h *handler) recentlyViewed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.RecentlyViewed(r.Context(), sessionID(r)))
}

func newCartResponse(items []state.CartItem) cartResponse {
	resp := cartResponse{Items: items}
	if resp.Items == nil {
		resp.Items = []state.CartItem{}
	}
	for _, item := range items {
		resp.Count += item.Quantity
	}
	return resp
}

// browseRequest maps query parameters onto a browse request. Structured
// filters are applied when any filter parameter is present.
func browseRequest(q url.Values) (service.BrowseRequest, error) {
	req := service.BrowseRequest{
		Search:   strings.TrimSpace(q.Get("q")),
		Sort:     domain.SortKey(q.Get("sort")),
		Language: domain.Language(q.Get("lang")),
	}

	for _, key := range []string{"category", "sub", "subsub"} {
		name := strings.TrimSpace(q.Get(key))
		if name == "" {
			break
		}
		req.Category = append(req.Category, name)
	}

	var err error
	if req.Page, err = intParam(q, "page"); err != nil {
		return req, err
	}
	if req.PageSize, err = intParam(q, "page_size"); err != nil {
		return req, err
	}

	if !hasAny(q, "min_price", "max_price", "manufacturer", "condition") {
		return req, nil
	}

	filters := navigation.Filters{Manufacturers: q["manufacturer"]}
	if filters.MinPrice, err = priceParam(q, "min_price", "minPrice"); err != nil {
		return req, err
	}
	if filters.MaxPrice, err = priceParam(q, "max_price", "maxPrice"); err != nil {
		return req, err
	}
	if values, ok := q["condition"]; ok {
		filters.Conditions = make([]domain.Condition, 0, len(values))
		for _, v := range values {
			filters.Conditions = append(filters.Conditions, domain.Condition(strings.ToLower(v)))
		}
	} else {
		filters.Conditions = []domain.Condition{domain.DefaultCondition}
	}
	req.Filters = &filters

	return req, nil
}

func hasAny(q url.Values, keys ...string) bool {
	for _, key := range keys {
		if _, ok := q[key]; ok {
			return true
		}
	}
	return false
}

func intParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &navigation.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return n, nil
}

func priceParam(q url.Values, key, field string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &navigation.ValidationError{Field: field, Reason: "must be a number"}
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("⚠️ Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var validation *navigation.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error(), Field: validation.Field})
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotInitialized):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		log.Errorf("❌ Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
