package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"laonlink/storefront/internal/config"
	"laonlink/storefront/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	metaDescriptionLength = 160
	ldDescriptionLength   = 200
)

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from scraped names before they reach page metadata.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// productPage holds everything rendered into one product page.
type productPage struct {
	ID           string
	Name         string
	Description  string
	URL          string
	Image        string
	ModelNumber  string
	Manufacturer string
	Price        float64
	Condition    domain.Condition
}

func newProductPage(cfg config.SiteConfig, p domain.Product, slug string) productPage {
	name := plainText(p.DisplayName(domain.LanguageEN))
	if name == "" {
		name = "Unknown Product"
	}

	category := plainText(p.CategoryMainEN)
	if category == "" {
		category = "Products"
	}

	manufacturer := plainText(p.Manufacturer)
	if manufacturer == "" {
		manufacturer = "Various"
	}

	price := "Price on request"
	if p.HasPrice() {
		price = fmt.Sprintf("Price: €%.2f", p.PriceEURMarkup)
	}

	description := fmt.Sprintf("%s. %s component. %s. %s industrial automation part available from %s, Sweden.",
		name, category, price, manufacturer, cfg.BrandName)

	return productPage{
		ID:           p.ID,
		Name:         name,
		Description:  description,
		URL:          productURL(cfg.BaseURL, slug),
		Image:        imageURL(cfg, p.FirstImage()),
		ModelNumber:  ModelNumber(p),
		Manufacturer: manufacturer,
		Price:        p.PriceEURMarkup,
		Condition:    domain.DeriveCondition(p),
	}
}

func productURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/products/" + slug + ".html"
}

func imageURL(cfg config.SiteConfig, image string) string {
	switch {
	case image == "":
		return cfg.NoImageURL
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return image
	default:
		return strings.TrimRight(cfg.ImageBaseURL, "/") + "/" + strings.TrimLeft(image, "/")
	}
}

// RenderProductPage rewrites the storefront template into the static page of
// one product.
func RenderProductPage(template []byte, cfg config.SiteConfig, p domain.Product, slug string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	page := newProductPage(cfg, p, slug)
	description := truncate(page.Description, metaDescriptionLength)

	setTitle(doc, page.Name+" - "+cfg.BrandName)
	setMeta(doc, "name", "description", description)
	setCanonical(doc, page.URL)
	setMeta(doc, "property", "og:title", page.Name)
	setMeta(doc, "property", "og:description", description)
	setMeta(doc, "property", "og:url", page.URL)

	ld, err := productStructuredData(cfg, page)
	if err != nil {
		return nil, err
	}
	doc.Find("head").AppendHtml(`<script type="application/ld+json">` + ld + `</script>`)

	id, err := jsString(p.ID)
	if err != nil {
		return nil, err
	}
	doc.Find("body").PrependHtml(`<script>window.STATIC_PRODUCT_ID = ` + id + `;</script>`)

	return render(doc)
}

// RenderCategoryPage rewrites the storefront template into a landing page that
// opens the given main category.
func RenderCategoryPage(template []byte, cfg config.SiteConfig, category config.LandingCategory) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	description := fmt.Sprintf("%s - Industrial automation components and %s parts from %s. Premium semiconductor components with competitive pricing from Sweden.",
		category.FullName, category.Name, cfg.BrandName)
	url := strings.TrimRight(cfg.BaseURL, "/") + "/" + category.Slug + "/"

	setTitle(doc, fmt.Sprintf("%s - %s Components | %s", category.FullName, category.Name, cfg.BrandName))
	setMeta(doc, "name", "description", description)
	setCanonical(doc, url)
	setMeta(doc, "property", "og:title", category.FullName)
	setMeta(doc, "property", "og:url", url)

	name, err := jsString(category.Name)
	if err != nil {
		return nil, err
	}
	doc.Find("body").PrependHtml(`<script>window.STATIC_CATEGORY = ` + name + `; window.STATIC_CATEGORY_LEVEL = "main";</script>`)

	return render(doc)
}

func setTitle(doc *goquery.Document, title string) {
	sel := doc.Find("head title")
	if sel.Length() == 0 {
		doc.Find("head").AppendHtml("<title></title>")
		sel = doc.Find("head title")
	}
	sel.First().SetText(title)
}

// setMeta updates <meta attr="key"> in the head, creating it when missing.
func setMeta(doc *goquery.Document, attr, key, content string) {
	sel := doc.Find(fmt.Sprintf(`head meta[%s=%q]`, attr, key))
	if sel.Length() == 0 {
		doc.Find("head").AppendHtml(fmt.Sprintf(`<meta %s="%s">`, attr, html.EscapeString(key)))
		sel = doc.Find(fmt.Sprintf(`head meta[%s=%q]`, attr, key))
	}
	sel.SetAttr("content", content)
}

func setCanonical(doc *goquery.Document, href string) {
	sel := doc.Find(`head link[rel="canonical"]`)
	if sel.Length() == 0 {
		doc.Find("head").AppendHtml(`<link rel="canonical">`)
		sel = doc.Find(`head link[rel="canonical"]`)
	}
	sel.SetAttr("href", href)
}

type ldBrand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ldOffer struct {
	Type          string  `json:"@type"`
	URL           string  `json:"url"`
	PriceCurrency string  `json:"priceCurrency"`
	Price         string  `json:"price"`
	Availability  string  `json:"availability"`
	ItemCondition string  `json:"itemCondition"`
	Seller        ldBrand `json:"seller"`
}

type ldProduct struct {
	Context     string  `json:"@context"`
	Type        string  `json:"@type"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	MPN         string  `json:"mpn"`
	Brand       ldBrand `json:"brand"`
	Offers      ldOffer `json:"offers"`
}

var itemConditions = map[domain.Condition]string{
	domain.ConditionUsed:        "https://schema.org/UsedCondition",
	domain.ConditionNew:         "https://schema.org/NewCondition",
	domain.ConditionRefurbished: "https://schema.org/RefurbishedCondition",
}

func productStructuredData(cfg config.SiteConfig, page productPage) (string, error) {
	condition, ok := itemConditions[page.Condition]
	if !ok {
		condition = itemConditions[domain.ConditionUsed]
	}

	data := ldProduct{
		Context:     "https://schema.org/",
		Type:        "Product",
		Name:        page.Name,
		Image:       page.Image,
		Description: truncate(page.Description, ldDescriptionLength),
		SKU:         page.ID,
		MPN:         page.ModelNumber,
		Brand:       ldBrand{Type: "Brand", Name: page.Manufacturer},
		Offers: ldOffer{
			Type:          "Offer",
			URL:           page.URL,
			PriceCurrency: "EUR",
			Price:         fmt.Sprintf("%.2f", page.Price),
			Availability:  "https://schema.org/InStock",
			ItemCondition: condition,
			Seller:        ldBrand{Type: "Organization", Name: cfg.BrandName},
		},
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode structured data: %w", err)
	}
	return string(encoded), nil
}

// jsString quotes s as a script-safe JavaScript string literal.
func jsString(s string) (string, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode script value: %w", err)
	}
	return string(encoded), nil
}

func render(doc *goquery.Document) ([]byte, error) {
	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return []byte(out), nil
}
