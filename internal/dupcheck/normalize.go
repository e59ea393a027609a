// Package dupcheck scans a seller's eBay inventory for items that already
// carry a given UPC, so the same disc does not get listed twice.
package dupcheck

import "strings"

// identifierTypes are the productIdentifiers[].type values compared against
// the target UPC.
var identifierTypes = map[string]bool{
	"UPC":   true,
	"UPC_A": true,
	"UPC_E": true,
	"GTIN":  true,
	"EAN":   true,
	"ISBN":  true,
}

// digitsOnly strips everything but digits, keeping leading zeros.
func digitsOnly(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripLeadingZeros removes leading zeros, keeping at least one digit.
func stripLeadingZeros(code string) string {
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" && code != "" {
		return "0"
	}
	return trimmed
}

// variants returns the comparison forms of a barcode: raw trimmed, digits
// only, and digits with leading zeros stripped. Each transformation is
// idempotent, so two codes match when their variant sets intersect.
func variants(code string) []string {
	raw := strings.TrimSpace(code)
	if raw == "" {
		return nil
	}

	set := make([]string, 0, 3)
	seen := make(map[string]bool, 3)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			set = append(set, v)
		}
	}

	add(raw)
	digits := digitsOnly(raw)
	add(digits)
	add(stripLeadingZeros(digits))
	return set
}

// codesMatch reports whether two barcodes refer to the same product under
// any of the comparison forms.
func codesMatch(a, b string) bool {
	av := variants(a)
	if len(av) == 0 {
		return false
	}
	for _, bv := range variants(b) {
		for _, v := range av {
			if v == bv {
				return true
			}
		}
	}
	return false
}
