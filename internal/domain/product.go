package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Product is a single catalog entry as bundled with the storefront.
type Product struct {
	ID               string     `json:"id"`
	NameEN           string     `json:"name_en"`
	NameKR           string     `json:"name_kr"`
	ModelNumber      string     `json:"model_number"`
	Manufacturer     string     `json:"manufacturer"`
	CategoryMainEN   string     `json:"category_main_en"`
	CategorySubEN    string     `json:"category_sub_en"`
	CategorySubSubEN string     `json:"category_subsub_en"`
	CategoryMainKR   string     `json:"category_main_kr,omitempty"`
	CategorySubKR    string     `json:"category_sub_kr,omitempty"`
	CategorySubSubKR string     `json:"category_subsub_kr,omitempty"`
	PriceEURMarkup   float64    `json:"price_eur_markup"`
	Images           StringList `json:"images"`
	Specifications   string     `json:"specifications"`
	URL              string     `json:"url,omitempty"`
	ScrapedAt        string     `json:"scraped_at"`
}

// UnmarshalJSON decodes a product without failing on badly typed fields.
// Text fields accept numbers, booleans and objects, and an unreadable price
// becomes 0.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	raw := struct {
		*plain
		ID               lenientString `json:"id"`
		NameEN           lenientString `json:"name_en"`
		NameKR           lenientString `json:"name_kr"`
		ModelNumber      lenientString `json:"model_number"`
		Manufacturer     lenientString `json:"manufacturer"`
		CategoryMainEN   lenientString `json:"category_main_en"`
		CategorySubEN    lenientString `json:"category_sub_en"`
		CategorySubSubEN lenientString `json:"category_subsub_en"`
		CategoryMainKR   lenientString `json:"category_main_kr"`
		CategorySubKR    lenientString `json:"category_sub_kr"`
		CategorySubSubKR lenientString `json:"category_subsub_kr"`
		PriceEURMarkup   lenientPrice  `json:"price_eur_markup"`
		Specifications   lenientString `json:"specifications"`
		URL              lenientString `json:"url"`
		ScrapedAt        lenientString `json:"scraped_at"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = string(raw.ID)
	p.NameEN = string(raw.NameEN)
	p.NameKR = string(raw.NameKR)
	p.ModelNumber = string(raw.ModelNumber)
	p.Manufacturer = string(raw.Manufacturer)
	p.CategoryMainEN = string(raw.CategoryMainEN)
	p.CategorySubEN = string(raw.CategorySubEN)
	p.CategorySubSubEN = string(raw.CategorySubSubEN)
	p.CategoryMainKR = string(raw.CategoryMainKR)
	p.CategorySubKR = string(raw.CategorySubKR)
	p.CategorySubSubKR = string(raw.CategorySubSubKR)
	p.PriceEURMarkup = float64(raw.PriceEURMarkup)
	p.Specifications = string(raw.Specifications)
	p.URL = string(raw.URL)
	p.ScrapedAt = string(raw.ScrapedAt)
	return nil
}

// lenientString keeps strings as they are, writes numbers and booleans as
// text and keeps objects and arrays as compact JSON.
type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			*s = ""
			return nil
		}
		*s = lenientString(v)
	case trimmed[0] == '{', trimmed[0] == '[':
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, trimmed); err != nil {
			*s = ""
			return nil
		}
		*s = lenientString(compacted.String())
	default:
		*s = lenientString(trimmed)
	}
	return nil
}

// lenientPrice reads numbers and numeric strings such as "€1,200.50".
// Negative or unreadable prices become 0, which displays as contact for price.
type lenientPrice float64

func (p *lenientPrice) UnmarshalJSON(data []byte) error {
	*p = 0

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil
		}
		text = strings.NewReplacer("€", "", ",", "", " ", "").Replace(text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	*p = lenientPrice(v)
	return nil
}

const unknownProductName = "Unknown Product"

// DisplayName returns the name for the given language ("en" or "kr").
func (p Product) DisplayName(lang Language) string {
	if lang == LanguageKR && p.NameKR != "" {
		return p.NameKR
	}
	if p.NameEN != "" {
		return p.NameEN
	}
	if p.NameKR != "" {
		return p.NameKR
	}
	return unknownProductName
}

// HasPrice reports whether the product carries a list price.
func (p Product) HasPrice() bool {
	return p.PriceEURMarkup > 0
}

// PriceLabel formats the price for display.
func (p Product) PriceLabel() string {
	if !p.HasPrice() {
		return "Contact for Price"
	}
	return fmt.Sprintf("€%.2f", p.PriceEURMarkup)
}

// FirstImage returns the first image filename or "" when the product has none.
func (p Product) FirstImage() string {
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return ""
}

// CategoryAt returns the category name stored for the given level.
func (p Product) CategoryAt(level CategoryLevel) string {
	switch level {
	case LevelMain:
		return p.CategoryMainEN
	case LevelSub:
		return p.CategorySubEN
	case LevelSubSub:
		return p.CategorySubSubEN
	default:
		return ""
	}
}

// Specs decodes the specification blob. Malformed input yields an empty map.
func (p Product) Specs() map[string]string {
	return ParseSpecifications(p.Specifications)
}

var scrapedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ScrapedTime parses scraped_at. Unparseable values return the zero time.
func (p Product) ScrapedTime() time.Time {
	raw := strings.TrimSpace(p.ScrapedAt)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range scrapedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseSpecifications decodes a JSON object into a flat string map.
// Non-string values are stringified; anything unparseable results in an empty map.
func ParseSpecifications(raw string) map[string]string {
	specs := make(map[string]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return specs
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return specs
	}

	for key, value := range values {
		switch v := value.(type) {
		case nil:
			specs[key] = ""
		case string:
			specs[key] = v
		case float64:
			specs[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			specs[key] = strconv.FormatBool(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			specs[key] = string(encoded)
		}
	}
	return specs
}

// StringList accepts a JSON array, a comma separated string or null. Anything
// else decodes to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		*l = nil
	case trimmed[0] == '[':
		var items []lenientString
		if err := json.Unmarshal(trimmed, &items); err != nil {
			*l = nil
			return nil
		}
		values := make([]string, len(items))
		for i, item := range items {
			values[i] = string(item)
		}
		*l = compact(values)
	case trimmed[0] == '"':
		var joined string
		if err := json.Unmarshal(trimmed, &joined); err != nil {
			*l = nil
			return nil
		}
		*l = compact(strings.Split(joined, ","))
	default:
		*l = nil
	}
	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
