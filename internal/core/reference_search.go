package core

import (
	"strings"
	"unicode"
)

var listQueries = map[string]bool{"": true, "all": true, "list": true, "show all": true}

// IsListQuery reports whether query asks for every record rather than a match.
func IsListQuery(query string) bool {
	return listQueries[strings.ToLower(strings.TrimSpace(query))]
}

// MatchesName reports whether a record called name satisfies query: either the
// whole query is a case-insensitive substring of the name, or every query word
// equals some word of the name once both are singularized ("servers" finds
// "Hosting Server").
func MatchesName(name, query string) bool {
	name = strings.ToLower(name)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(name, query) {
		return true
	}

	nameWords := map[string]bool{}
	for _, w := range words(name) {
		nameWords[singular(w)] = true
	}
	queryWords := words(query)
	if len(queryWords) == 0 {
		return false
	}
	for _, w := range queryWords {
		if !nameWords[singular(w)] {
			return false
		}
	}
	return true
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && (strings.HasSuffix(w, "ses") || strings.HasSuffix(w, "xes") ||
		strings.HasSuffix(w, "zes") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

func filterClients(all []Client, query string) []Client {
	if IsListQuery(query) {
		return all
	}
	var out []Client
	for _, c := range all {
		if MatchesName(c.Name, query) {
			out = append(out, c)
		}
	}
	return out
}

func filterItems(all []InventoryItem, query string) []InventoryItem {
	if IsListQuery(query) {
		return all
	}
	var out []InventoryItem
	for _, item := range all {
		if MatchesName(item.Name, query) {
			out = append(out, item)
		}
	}
	return out
}
