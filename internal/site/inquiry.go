package site

import (
	"fmt"
	"net/url"
	"strings"

	"laonlink/storefront/internal/domain"
)

// InquiryURL builds the mailto: link used in place of a checkout.
func InquiryURL(p domain.Product, email string) string {
	subject := fmt.Sprintf("Inquiry about %s (ID: %s)", p.NameEN, p.ID)
	body := fmt.Sprintf("Hello,\n\nI am interested in the following product:\n\nProduct: %s\nModel: %s\nProduct ID: %s\n\nPlease provide more information.\n\nThank you.",
		p.NameEN, p.ModelNumber, p.ID)

	return "mailto:" + email + "?subject=" + encodeURIComponent(subject) + "&body=" + encodeURIComponent(body)
}

// encodeURIComponent escapes s for use inside a query value, encoding spaces
// as %20 rather than '+'.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
