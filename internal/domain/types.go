package domain

import "strings"

// CategoryLevel identifies a depth in the category tree.
type CategoryLevel string

func (l CategoryLevel) String() string {
	return string(l)
}

const (
	LevelMain   CategoryLevel = "main"
	LevelSub    CategoryLevel = "sub"
	LevelSubSub CategoryLevel = "subsub"
)

// CategoryLevels lists the levels from the top of the tree down.
var CategoryLevels = []CategoryLevel{
	LevelMain,
	LevelSub,
	LevelSubSub,
}

// Valid reports whether l is one of the known levels.
func (l CategoryLevel) Valid() bool {
	switch l {
	case LevelMain, LevelSub, LevelSubSub:
		return true
	default:
		return false
	}
}

// Depth returns 1 for main, 2 for sub, 3 for subsub and 0 otherwise.
func (l CategoryLevel) Depth() int {
	switch l {
	case LevelMain:
		return 1
	case LevelSub:
		return 2
	case LevelSubSub:
		return 3
	default:
		return 0
	}
}

// LevelForDepth is the inverse of Depth.
func LevelForDepth(depth int) CategoryLevel {
	if depth < 1 || depth > len(CategoryLevels) {
		return ""
	}
	return CategoryLevels[depth-1]
}

// CategoryPath is an ordered list of up to three category names (main, sub, subsub).
type CategoryPath []string

// Level returns the level of the deepest segment, or "" for an empty path.
func (p CategoryPath) Level() CategoryLevel {
	return LevelForDepth(len(p))
}

// Leaf returns the deepest segment.
func (p CategoryPath) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Language selects which product name field is displayed.
type Language string

const (
	LanguageEN Language = "en"
	LanguageKR Language = "kr"
)

// ParseLanguage maps a language code onto a Language. An empty code means
// English; "ko" is accepted as an alias for Korean.
func ParseLanguage(code string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", string(LanguageEN):
		return LanguageEN, true
	case string(LanguageKR), "ko":
		return LanguageKR, true
	default:
		return "", false
	}
}

// SortKey names an ordering of the active view. The zero value keeps source order.
type SortKey string

const (
	SortNone      SortKey = ""
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNewest    SortKey = "newest"
)

var SortKeys = []SortKey{
	SortNameAsc,
	SortNameDesc,
	SortPriceAsc,
	SortPriceDesc,
	SortNewest,
}

func (k SortKey) Valid() bool {
	for _, key := range SortKeys {
		if k == key {
			return true
		}
	}
	return false
}
