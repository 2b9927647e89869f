// Package billing defines the document categories the bot can dispatch and
// the email template attached to each one.
package billing

import "strings"

// Category identifies one kind of billing document.
type Category string

const (
	CategoryInvoice Category = "invoice"
	CategoryZelle   Category = "zelle"
	CategoryDebtor  Category = "debtor"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{CategoryInvoice, CategoryZelle, CategoryDebtor}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryInvoice, CategoryZelle, CategoryDebtor:
		return true
	}
	return false
}

// String returns the lowercase category name.
func (c Category) String() string {
	return string(c)
}

// Label returns the capitalized display name, which is also the name of the
// category's archive subfolder (e.g. "Invoice").
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory resolves free text to a category. The match is a
// case-insensitive substring test so that button captions like "Invoice"
// and loose operator input like "send invoice" both resolve.
func ParseCategory(text string) (Category, bool) {
	t := strings.ToLower(text)
	for _, c := range Categories() {
		if strings.Contains(t, string(c)) {
			return c, true
		}
	}
	return "", false
}
