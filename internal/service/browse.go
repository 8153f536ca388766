package service

import (
	"context"
	"fmt"
	"strings"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/domain"
	"laonlink/storefront/internal/navigation"
	"laonlink/storefront/internal/site"
	"laonlink/storefront/internal/state"
)

// BrowseRequest replays one browsing interaction: a category or a search,
// optional structured filters, a sort order and a page.
type BrowseRequest struct {
	Category domain.CategoryPath
	Search   string
	Filters  *navigation.Filters
	Sort     domain.SortKey
	Page     int
	PageSize int
	Language domain.Language
}

type BrowseResult struct {
	Mode       navigation.Mode
	Language   domain.Language
	Products   []domain.Product
	Total      int
	Page       int
	TotalPages int
	Pages      []int
	Breadcrumb []navigation.BreadcrumbItem
}

// Browse drives a fresh navigation controller through the request. Invalid
// filters, sort keys, languages or page sizes are reported as
// *navigation.ValidationError. A category path missing from the tree yields
// ErrCategoryNotFound.
func (s *Service) Browse(req BrowseRequest) (*BrowseResult, error) {
	if !s.store.Ready() {
		return nil, catalog.ErrNotInitialized
	}

	lang, err := parseLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	c := navigation.NewController(s.store)

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = s.opts.PageSize
	}
	if pageSize != 0 {
		if err := c.SetPageSize(pageSize); err != nil {
			return nil, err
		}
	}

	switch {
	case req.Search != "":
		c.Search(req.Search)
	case len(req.Category) > 0:
		if len(req.Category) > domain.MaxCategoryDepth {
			return nil, &navigation.ValidationError{Field: "category", Reason: fmt.Sprintf("path has %d levels, at most %d allowed", len(req.Category), domain.MaxCategoryDepth)}
		}
		if _, ok := s.store.CategoryByPath(req.Category); !ok {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, strings.Join(req.Category, " > "))
		}
		selectPath(c, req.Category)
	}

	if req.Filters != nil {
		if err := c.ApplyStructuredFilters(*req.Filters); err != nil {
			return nil, err
		}
	}

	if req.Sort != domain.SortNone {
		if err := c.Sort(req.Sort); err != nil {
			return nil, err
		}
	}

	if req.Page > 0 {
		c.SetPage(req.Page)
	}

	return &BrowseResult{
		Mode:       c.Mode(),
		Language:   lang,
		Products:   c.ActiveView(),
		Total:      c.ResultCount(),
		Page:       c.CurrentPage(),
		TotalPages: c.TotalPages(),
		Pages:      c.PageWindow(),
		Breadcrumb: c.Breadcrumb(),
	}, nil
}

func selectPath(c *navigation.Controller, path domain.CategoryPath) {
	switch len(path) {
	case 1:
		c.SelectCategory(path[0], domain.LevelMain, "", "")
	case 2:
		c.SelectCategory(path[1], domain.LevelSub, path[0], "")
	case 3:
		c.SelectCategory(path[2], domain.LevelSubSub, path[1], path[0])
	}
}

func parseLanguage(code domain.Language) (domain.Language, error) {
	lang, ok := domain.ParseLanguage(string(code))
	if !ok {
		return "", &navigation.ValidationError{Field: "lang", Reason: fmt.Sprintf("unknown language %q, expected en or kr", code)}
	}
	return lang, nil
}

// CategoryCard is a category as listed on the home page, with its children in
// name order.
type CategoryCard struct {
	Name          string
	DisplayName   string
	Count         int
	Subcategories []CategoryCard
}

// HasSubcategories reports whether the card leads to a deeper level.
func (c CategoryCard) HasSubcategories() bool {
	return len(c.Subcategories) > 0
}

// Categories lists the main categories with their product counts. Nested cards
// carry names only.
func (s *Service) Categories(lang domain.Language) ([]CategoryCard, error) {
	if !s.store.Ready() {
		return nil, catalog.ErrNotInitialized
	}

	lang, err := parseLanguage(lang)
	if err != nil {
		return nil, err
	}
	return categoryCards(s.store.CategoryTree(), lang, s.store.CountByMainCategory), nil
}

func categoryCards(node *domain.CategoryNode, lang domain.Language, count func(string) int) []CategoryCard {
	names := node.ChildNames()
	cards := make([]CategoryCard, 0, len(names))
	for _, name := range names {
		child, _ := node.Child(name)
		card := CategoryCard{Name: name, DisplayName: child.DisplayName(lang)}
		if count != nil {
			card.Count = count(name)
		}
		if child.HasChildren() {
			card.Subcategories = categoryCards(child, lang, nil)
		}
		cards = append(cards, card)
	}
	return cards
}

// ProductView is a product as shown in the detail modal.
type ProductView struct {
	Product        domain.Product
	DisplayName    string
	Condition      domain.Condition
	Specifications map[string]string
	InquiryURL     string
	RecentlyViewed []string
}

// ViewProduct looks up a product and records it as recently viewed for the
// session. The display name follows lang.
func (s *Service) ViewProduct(ctx context.Context, sessionID, id string, lang domain.Language) (*ProductView, error) {
	if !s.store.Ready() {
		return nil, catalog.ErrNotInitialized
	}

	lang, err := parseLanguage(lang)
	if err != nil {
		return nil, err
	}

	p, ok := s.store.ProductByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	recent := state.NewSession(s.sessions, sessionID).RecentlyViewed(ctx)
	recent.Add(ctx, p.ID)

	return &ProductView{
		Product:        p,
		DisplayName:    p.DisplayName(lang),
		Condition:      domain.DeriveCondition(p),
		Specifications: p.Specs(),
		InquiryURL:     site.InquiryURL(p, s.opts.InquiryEmail),
		RecentlyViewed: recent.IDs(),
	}, nil
}

// AddToCart adds one unit of a product to the session cart and returns the new
// item count.
func (s *Service) AddToCart(ctx context.Context, sessionID, id string) (int, error) {
	if !s.store.Ready() {
		return 0, catalog.ErrNotInitialized
	}

	if _, ok := s.store.ProductByID(id); !ok {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	cart := state.NewSession(s.sessions, sessionID).Cart(ctx)
	cart.Add(ctx, id)
	return cart.Count(), nil
}

func (s *Service) Cart(ctx context.Context, sessionID string) []state.CartItem {
	return state.NewSession(s.sessions, sessionID).Cart(ctx).Items()
}

func (s *Service) RecentlyViewed(ctx context.Context, sessionID string) []string {
	return state.NewSession(s.sessions, sessionID).RecentlyViewed(ctx).IDs()
}
