package navigation

import (
	"math"
	"slices"
	"sort"

	"laonlink/storefront/internal/domain"
)

// Mode names the scope the active view is drawn from.
type Mode string

const (
	ModeHome     Mode = "HOME"
	ModeCategory Mode = "CATEGORY"
	ModeSearch   Mode = "SEARCH"
)

// DefaultPageSize matches the storefront's initial items-per-page selector.
const DefaultPageSize = 12

// PriceRange is an inclusive price interval. Max is +Inf when unbounded.
type PriceRange struct {
	Min float64
	Max float64
}

func DefaultPriceRange() PriceRange {
	return PriceRange{Min: 0, Max: math.Inf(1)}
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Bounded reports whether an upper bound is set.
func (r PriceRange) Bounded() bool {
	return !math.IsInf(r.Max, 1)
}

// Filters carries the structured filter form. Nil prices mean "not given".
type Filters struct {
	MinPrice      *float64
	MaxPrice      *float64
	Manufacturers []string
	Conditions    []domain.Condition
}

// State is the navigation state of one browsing session. Transition methods
// return a new State and never modify the receiver.
type State struct {
	Path           domain.CategoryPath
	SearchTerm     string
	Price          PriceRange
	Manufacturers  []string
	Conditions     []domain.Condition
	FiltersApplied bool
	SortKey        domain.SortKey
	Page           int
	PageSize       int
}

// NewState returns the HOME state.
func NewState() State {
	return State{
		Price:      DefaultPriceRange(),
		Conditions: defaultConditions(),
		Page:       1,
		PageSize:   DefaultPageSize,
	}
}

func defaultConditions() []domain.Condition {
	return []domain.Condition{domain.DefaultCondition}
}

// Mode derives the active scope. Category and search are mutually exclusive.
func (s State) Mode() Mode {
	switch {
	case len(s.Path) > 0:
		return ModeCategory
	case s.SearchTerm != "":
		return ModeSearch
	default:
		return ModeHome
	}
}

func (s State) clone() State {
	s.Path = slices.Clone(s.Path)
	s.Manufacturers = slices.Clone(s.Manufacturers)
	s.Conditions = slices.Clone(s.Conditions)
	return s
}

// WithCategory enters CATEGORY scope for path. Search is cleared and applied
// structured filters are dropped; their form values are kept.
func (s State) WithCategory(path domain.CategoryPath) State {
	next := s.clone()
	next.Path = slices.Clone(path)
	next.SearchTerm = ""
	next.FiltersApplied = false
	next.SortKey = domain.SortNone
	next.Page = 1
	return next
}

// WithSearch enters SEARCH scope. term must already be trimmed and non-empty.
func (s State) WithSearch(term string) State {
	next := s.clone()
	next.Path = nil
	next.SearchTerm = term
	next.FiltersApplied = false
	next.SortKey = domain.SortNone
	next.Page = 1
	return next
}

// WithFilters validates f and applies it on top of the current category scope.
// An active search is left, never combined. The chosen sort order is kept.
func (s State) WithFilters(f Filters) (State, error) {
	if err := f.Validate(); err != nil {
		return s, err
	}

	next := s.clone()
	next.Price = DefaultPriceRange()
	if f.MinPrice != nil {
		next.Price.Min = *f.MinPrice
	}
	if f.MaxPrice != nil {
		next.Price.Max = *f.MaxPrice
	}
	next.Manufacturers = uniqueSorted(f.Manufacturers)
	next.Conditions = uniqueConditions(f.Conditions)
	next.FiltersApplied = true
	next.SearchTerm = ""
	next.Page = 1
	return next, nil
}

// WithoutFilters restores default structured filters, keeping the category scope.
func (s State) WithoutFilters() State {
	next := s.clone()
	next.Price = DefaultPriceRange()
	next.Manufacturers = nil
	next.Conditions = defaultConditions()
	next.FiltersApplied = false
	next.SortKey = domain.SortNone
	next.Page = 1
	return next
}

// Home clears category, search and structured filters. Page size is preserved.
func (s State) Home() State {
	next := NewState()
	next.PageSize = s.PageSize
	return next
}

func (s State) WithSort(key domain.SortKey) (State, error) {
	if !key.Valid() {
		return s, &ValidationError{Field: "sort", Reason: "unknown sort key " + string(key)}
	}
	next := s.clone()
	next.SortKey = key
	return next, nil
}

func (s State) WithPageSize(size int) (State, error) {
	if size < 1 {
		return s, &ValidationError{Field: "pageSize", Reason: "must be at least 1"}
	}
	next := s.clone()
	next.PageSize = size
	next.Page = 1
	return next, nil
}

// TotalPages returns the page count for count results, never less than 1.
func (s State) TotalPages(count int) int {
	size := s.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (count + size - 1) / size
	return max(1, pages)
}

// ClampPage enforces 1 <= Page <= TotalPages(count).
func (s State) ClampPage(count int) State {
	s.Page = min(max(s.Page, 1), s.TotalPages(count))
	return s
}

// Validate checks the structured filter form.
func (f Filters) Validate() error {
	if f.MinPrice != nil && (math.IsNaN(*f.MinPrice) || *f.MinPrice < 0) {
		return &ValidationError{Field: "minPrice", Reason: "must be a non-negative number"}
	}
	if f.MaxPrice != nil && (math.IsNaN(*f.MaxPrice) || *f.MaxPrice < 0) {
		return &ValidationError{Field: "maxPrice", Reason: "must be a non-negative number"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &ValidationError{Field: "minPrice", Reason: "must not exceed maxPrice"}
	}
	for _, c := range f.Conditions {
		if !c.Valid() {
			return &ValidationError{Field: "conditions", Reason: "unknown condition " + string(c)}
		}
	}
	return nil
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func uniqueConditions(values []domain.Condition) []domain.Condition {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.Condition, 0, len(values))
	for _, c := range domain.Conditions {
		if slices.Contains(values, c) {
			out = append(out, c)
		}
	}
	return out
}
