package catalog

import "strings"

// ResolveLocation resolves free text to a location by case-insensitive,
// accent-insensitive substring containment against each location's keyword
// set. The first location in catalog order with a contained keyword wins;
// there is no longest-match tie-break. A keyword that happens to be a
// substring of another location's name can therefore shadow it, which is the
// price of keeping resolution a single linear pass (see DESIGN.md).
func (c *Catalog) ResolveLocation(text string) *Location {
	folded := Fold(text)
	if folded == "" {
		return nil
	}

	for i := range c.Locations {
		if containsAny(folded, c.Locations[i].folded) {
			return &c.Locations[i]
		}
	}

	return nil
}

// ResolveBranch resolves free text to one of the location's branches using
// the same containment policy as ResolveLocation.
func (l *Location) ResolveBranch(text string) *Branch {
	folded := Fold(text)
	if folded == "" {
		return nil
	}

	for i := range l.Branches {
		if containsAny(folded, l.Branches[i].folded) {
			return &l.Branches[i]
		}
	}

	return nil
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
