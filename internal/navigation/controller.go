package navigation

import (
	"slices"
	"strings"

	"laonlink/storefront/internal/catalog"
	"laonlink/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Catalog is the read side of the catalog store used by the controller.
type Catalog interface {
	Ready() bool
	AllProducts() []domain.Product
}

// Controller owns the navigation state of a single session and the result list
// derived from it. It is not safe for concurrent use.
type Controller struct {
	catalog Catalog
	state   State
	results []domain.Product
}

func NewController(c Catalog) *Controller {
	return &Controller{
		catalog: c,
		state:   NewState(),
	}
}

// State returns a copy of the current navigation state.
func (c *Controller) State() State {
	return c.state.clone()
}

func (c *Controller) Mode() Mode {
	return c.state.Mode()
}

func (c *Controller) ready(op string) bool {
	if c.catalog == nil || !c.catalog.Ready() {
		log.Warnf("⚠️ %s ignored: %v", op, catalog.ErrNotInitialized)
		return false
	}
	return true
}

// apply installs next and recomputes the result list from scratch.
func (c *Controller) apply(next State) {
	c.results = Derive(c.catalog.AllProducts(), next)
	c.state = next.ClampPage(len(c.results))
}

// SelectCategory enters the category identified by name at level. Parent and
// grandparent supply the ancestors for sub and subsub selections. A missing
// ancestor leaves an empty segment: matching uses the deepest level only, and
// the breadcrumb skips empty segments.
func (c *Controller) SelectCategory(name string, level domain.CategoryLevel, parent, grandparent string) {
	if !c.ready("select category") {
		return
	}

	name = strings.TrimSpace(name)
	if name == "" || !level.Valid() {
		log.Warnf("⚠️ Ignoring category selection with name %q and level %q", name, level)
		return
	}

	ancestors := []string{strings.TrimSpace(grandparent), strings.TrimSpace(parent)}
	path := append(domain.CategoryPath(nil), ancestors[len(ancestors)-(level.Depth()-1):]...)
	path = append(path, name)

	if slices.Contains(path[:len(path)-1], "") {
		log.Debugf("📂 Category %q selected without its full ancestor chain", name)
	}

	c.apply(c.state.WithCategory(path))
	log.Debugf("📂 Category %v selected: %d results", path, len(c.results))
}

// Search runs a free-text search. A blank term returns to HOME.
func (c *Controller) Search(term string) {
	if !c.ready("search") {
		return
	}

	term = strings.TrimSpace(term)
	if term == "" {
		c.ClearToHome()
		return
	}

	c.apply(c.state.WithSearch(term))
	log.Debugf("🔍 Search %q: %d results", term, len(c.results))
}

// ApplyStructuredFilters filters the current category scope (or the whole
// catalog) by price, manufacturer and condition. Invalid input is rejected with
// a *ValidationError and leaves the state unchanged.
func (c *Controller) ApplyStructuredFilters(f Filters) error {
	if !c.ready("apply filters") {
		return catalog.ErrNotInitialized
	}

	next, err := c.state.WithFilters(f)
	if err != nil {
		return err
	}

	c.apply(next)
	log.Debugf("🧰 Filters applied: %d results", len(c.results))
	return nil
}

// ClearFilters resets structured filters, keeping the category scope. Without a
// category it falls back to HOME.
func (c *Controller) ClearFilters() {
	if !c.ready("clear filters") {
		return
	}

	if len(c.state.Path) == 0 {
		c.ClearToHome()
		return
	}
	c.apply(c.state.WithoutFilters())
}

// ClearToHome returns to the welcome state with an empty view.
func (c *Controller) ClearToHome() {
	if !c.ready("clear to home") {
		return
	}
	c.apply(c.state.Home())
}

// Sort reorders the current results. The page is kept (and clamped).
func (c *Controller) Sort(key domain.SortKey) error {
	if !c.ready("sort") {
		return catalog.ErrNotInitialized
	}

	next, err := c.state.WithSort(key)
	if err != nil {
		return err
	}
	c.apply(next)
	return nil
}

// SetPage moves to page n, clamped to the available pages.
func (c *Controller) SetPage(n int) {
	if !c.ready("set page") {
		return
	}

	clamped := c.state
	clamped.Page = n
	clamped = clamped.ClampPage(len(c.results))
	if clamped.Page == c.state.Page {
		return
	}
	c.state.Page = clamped.Page
}

// SetPageSize changes the number of results per page and returns to page 1.
func (c *Controller) SetPageSize(n int) error {
	if !c.ready("set page size") {
		return catalog.ErrNotInitialized
	}

	next, err := c.state.WithPageSize(n)
	if err != nil {
		return err
	}
	c.apply(next)
	return nil
}

// ActiveView returns the products on the current page.
func (c *Controller) ActiveView() []domain.Product {
	if len(c.results) == 0 {
		return []domain.Product{}
	}
	start := (c.state.Page - 1) * c.state.PageSize
	end := min(start+c.state.PageSize, len(c.results))
	if start >= end {
		return []domain.Product{}
	}
	view := make([]domain.Product, end-start)
	copy(view, c.results[start:end])
	return view
}

// ResultCount is the filtered count before pagination.
func (c *Controller) ResultCount() int {
	return len(c.results)
}

func (c *Controller) CurrentPage() int {
	return c.state.Page
}

func (c *Controller) TotalPages() int {
	return c.state.TotalPages(len(c.results))
}

// PageWindow returns up to five page numbers centred on the current page.
func (c *Controller) PageWindow() []int {
	total := c.TotalPages()
	start := max(1, c.state.Page-2)
	end := min(total, start+4)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
