package domain

import (
	"regexp"
	"strings"
)

// Condition is the derived state of a catalog item.
type Condition string

const (
	ConditionUsed        Condition = "used"
	ConditionNew         Condition = "new"
	ConditionRefurbished Condition = "refurbished"
)

// Conditions is ordered by marker precedence.
var Conditions = []Condition{
	ConditionUsed,
	ConditionNew,
	ConditionRefurbished,
}

// DefaultCondition applies when neither names nor specifications carry a marker.
const DefaultCondition = ConditionUsed

func (c Condition) String() string {
	return string(c)
}

func (c Condition) Valid() bool {
	switch c {
	case ConditionUsed, ConditionNew, ConditionRefurbished:
		return true
	default:
		return false
	}
}

type conditionMarker struct {
	condition Condition
	english   *regexp.Regexp
	korean    string
}

var conditionMarkers = []conditionMarker{
	{condition: ConditionUsed, english: regexp.MustCompile(`(?i)\bused\b`), korean: "중고"},
	{condition: ConditionNew, english: regexp.MustCompile(`(?i)\bnew\b`), korean: "신품"},
	{condition: ConditionRefurbished, english: regexp.MustCompile(`(?i)\brefurbished\b`), korean: "재생"},
}

// matchCondition returns the first condition whose marker appears in text.
func matchCondition(text string) (Condition, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, marker := range conditionMarkers {
		if marker.english.MatchString(text) || strings.Contains(text, marker.korean) {
			return marker.condition, true
		}
	}
	return "", false
}

// DeriveCondition infers the condition of a product from its names, then from the
// Condition/condition specification field, defaulting to used.
func DeriveCondition(p Product) Condition {
	if c, ok := matchCondition(p.NameEN + " " + p.NameKR); ok {
		return c
	}

	specs := p.Specs()
	for _, key := range []string{"Condition", "condition"} {
		if c, ok := matchCondition(specs[key]); ok {
			return c
		}
	}

	return DefaultCondition
}
