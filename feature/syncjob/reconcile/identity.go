package reconcile

import (
	"strings"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/ers"
)

// Rule decides whether an external entry is a given catalog item.
type Rule struct {
	Name  string
	Match func(e ers.PriceEntry, item models.CatalogItem) bool
}

// Identity rule names.
const (
	RuleCodeExact      = "code-exact"
	RuleCodePartial    = "code-partial"
	RuleArticleExact   = "article-exact"
	RuleArticlePartial = "article-partial"
	RuleExternalID     = "external-id"
	RuleNameFuzzy      = "name-fuzzy"
)

// DefaultRules are the identity rules in priority order.
var DefaultRules = []Rule{
	{Name: RuleCodeExact, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return exact(normalizeCode(e.Code), normalizeCode(item.ExternalCode))
	}},
	{Name: RuleCodePartial, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return partial(normalizeCode(e.Code), normalizeCode(item.ExternalCode))
	}},
	{Name: RuleArticleExact, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return exact(normalizeCode(e.Article), normalizeCode(item.ExternalArticle))
	}},
	{Name: RuleArticlePartial, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return partial(normalizeCode(e.Article), normalizeCode(item.ExternalArticle))
	}},
	{Name: RuleExternalID, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return exact(strings.TrimSpace(e.ID), strings.TrimSpace(item.ExternalID))
	}},
	{Name: RuleNameFuzzy, Match: func(e ers.PriceEntry, item models.CatalogItem) bool {
		return partial(normalizeName(e.Name), normalizeName(item.Name))
	}},
}

// Resolver matches external entries to catalog items.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver over rules, or DefaultRules when none are given.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Resolver{rules: rules}
}

// Rules returns the rules in the order they are tried.
func (r *Resolver) Rules() []Rule {
	return r.rules
}

// Match returns the index of the catalog item e identifies and the rule that matched.
// Rules are tried in order, and for each rule the catalog is scanned in order; the
// first hit wins.
func (r *Resolver) Match(e ers.PriceEntry, items []models.CatalogItem) (int, string, bool) {
	for _, rule := range r.rules {
		for i := range items {
			if rule.Match(e, items[i]) {
				return i, rule.Name, true
			}
		}
	}
	return -1, "", false
}

// Assignment is the catalog item an entry was given, or Item -1 when none.
type Assignment struct {
	Item int
	Rule string
}

// Assign matches every entry against items so that each item goes to at most one
// entry. An item belongs to the entry that matched it through the highest-priority
// rule, ties going to the earlier entry. An entry that loses its item is matched
// again against the items still open to it, and stays unassigned when none are.
func (r *Resolver) Assign(entries []ers.PriceEntry, items []models.CatalogItem) []Assignment {
	type owner struct{ entry, rank int }

	out := make([]Assignment, len(entries))
	owners := make(map[int]owner)
	pending := make([]int, len(entries))
	for j := range entries {
		out[j] = Assignment{Item: -1}
		pending[j] = j
	}

	for len(pending) > 0 {
		j := pending[0]
		pending = pending[1:]

	scan:
		for rank, rule := range r.rules {
			for i := range items {
				if o, held := owners[i]; held && o.rank <= rank {
					continue
				}
				if !rule.Match(entries[j], items[i]) {
					continue
				}
				if o, held := owners[i]; held {
					out[o.entry] = Assignment{Item: -1}
					pending = append(pending, o.entry)
				}
				owners[i] = owner{entry: j, rank: rank}
				out[j] = Assignment{Item: i, Rule: rule.Name}
				break scan
			}
		}
	}
	return out
}

func exact(a, b string) bool {
	return a != "" && a == b
}

func partial(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
