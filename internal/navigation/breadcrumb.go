package navigation

import "laonlink/storefront/internal/domain"

// BreadcrumbItem is one segment of the trail shown above the results.
// Path is the category path to select when the item is clicked.
type BreadcrumbItem struct {
	Label  string
	IsLink bool
	Level  domain.CategoryLevel
	Path   domain.CategoryPath
}

const homeBreadcrumbLabel = "Select a Category"

// Breadcrumb returns the trail for the current state. Main and sub segments are
// links; the subsub segment is plain text.
func (c *Controller) Breadcrumb() []BreadcrumbItem {
	return BreadcrumbFor(c.state)
}

func BreadcrumbFor(s State) []BreadcrumbItem {
	switch s.Mode() {
	case ModeSearch:
		return []BreadcrumbItem{{Label: `Search results for "` + s.SearchTerm + `"`}}
	case ModeCategory:
		items := make([]BreadcrumbItem, 0, len(s.Path))
		for i, name := range s.Path {
			if name == "" {
				continue
			}
			level := domain.LevelForDepth(i + 1)
			items = append(items, BreadcrumbItem{
				Label:  name,
				IsLink: level != domain.LevelSubSub,
				Level:  level,
				Path:   append(domain.CategoryPath(nil), s.Path[:i+1]...),
			})
		}
		return items
	default:
		return []BreadcrumbItem{{Label: homeBreadcrumbLabel}}
	}
}
