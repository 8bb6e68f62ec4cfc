package db

import "strings"

// NormalizeStaffID brings an external personnel-system id to its canonical
// string form. Ids arrive as strings from the spreadsheet and as numbers
// from manual entry; every comparison in the system goes through this form
// rather than relying on type coercion.
func NormalizeStaffID(id string) string {
	return strings.TrimSpace(id)
}

// SameStaffID reports whether two external ids refer to the same person.
func SameStaffID(a, b string) bool {
	return NormalizeStaffID(a) == NormalizeStaffID(b) && NormalizeStaffID(a) != ""
}
