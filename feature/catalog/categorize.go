package catalog

import "strings"

// DefaultCategory is assigned when no category keyword matches.
const DefaultCategory = "accessories"

// Rule is one entry of a keyword table.
type Rule struct {
	Name     string
	Keywords []string
}

// CategoryRule is a category with its own subcategory table.
type CategoryRule struct {
	Rule
	Subcategories []Rule
}

// Categories is the category table in declaration order. Ties are won by the earlier entry.
var Categories = []CategoryRule{
	{
		Rule: Rule{Name: "pos-systems", Keywords: []string{"касс", "pos", "моноблок", "ккт", "фискальн"}},
		Subcategories: []Rule{
			{Name: "fiscal-registers", Keywords: []string{"фискальн", "ккт", "фн-", "регистратор"}},
			{Name: "terminals", Keywords: []string{"терминал", "моноблок", "pos"}},
			{Name: "acquiring", Keywords: []string{"эквайр", "пинпад", "pin pad", "pinpad"}},
		},
	},
	{
		Rule: Rule{Name: "scanners", Keywords: []string{"сканер", "scanner", "штрих", "barcode", "тсд"}},
		Subcategories: []Rule{
			{Name: "handheld", Keywords: []string{"ручн", "handheld", "беспровод", "wireless"}},
			{Name: "stationary", Keywords: []string{"стационар", "встраив", "presentation"}},
			{Name: "data-terminals", Keywords: []string{"тсд", "терминал сбора"}},
		},
	},
	{
		Rule: Rule{Name: "printers", Keywords: []string{"принтер", "printer", "этикет", "label"}},
		Subcategories: []Rule{
			{Name: "receipt", Keywords: []string{"чек", "receipt"}},
			{Name: "label", Keywords: []string{"этикет", "label", "термотрансфер"}},
		},
	},
	{
		Rule: Rule{Name: "scales", Keywords: []string{"весы", "весов", "scale"}},
		Subcategories: []Rule{
			{Name: "labeling", Keywords: []string{"с печатью", "печать этикет"}},
			{Name: "counter", Keywords: []string{"настольн", "торгов"}},
			{Name: "floor", Keywords: []string{"напольн", "платформ"}},
		},
	},
	{
		Rule: Rule{Name: "software", Keywords: []string{"лиценз", "подписк", "программ", "software", "license", "1с:"}},
		Subcategories: []Rule{
			{Name: "licenses", Keywords: []string{"лиценз", "license"}},
			{Name: "subscriptions", Keywords: []string{"подписк", "subscription", "мес"}},
		},
	},
	{
		Rule: Rule{Name: "consumables", Keywords: []string{"лента", "рулон", "бумаг", "риббон", "ribbon", "roll"}},
		Subcategories: []Rule{
			{Name: "receipt-rolls", Keywords: []string{"чеков", "рулон", "roll"}},
			{Name: "ribbons", Keywords: []string{"риббон", "ribbon"}},
		},
	},
}

// DefaultSubcategories classify items that fell back to DefaultCategory.
var DefaultSubcategories = []Rule{
	{Name: "cables", Keywords: []string{"кабель", "cable", "шнур", "переходник"}},
	{Name: "cash-drawers", Keywords: []string{"денежный ящик", "cash drawer", "drawer"}},
	{Name: "stands", Keywords: []string{"подставк", "кронштейн", "stand", "держател"}},
}

// Classify assigns a category and (possibly empty) subcategory to a product name.
// Each keyword found as a substring of the lower-cased name scores one point;
// the highest score wins and no score at all yields DefaultCategory.
func Classify(name string) (category, subcategory string) {
	lower := strings.ToLower(name)

	best, bestScore := -1, 0
	for i, c := range Categories {
		if s := score(lower, c.Keywords); s > bestScore {
			best, bestScore = i, s
		}
	}

	subs := DefaultSubcategories
	category = DefaultCategory
	if best >= 0 {
		category = Categories[best].Name
		subs = Categories[best].Subcategories
	}

	subBest, subScore := -1, 0
	for i, r := range subs {
		if s := score(lower, r.Keywords); s > subScore {
			subBest, subScore = i, s
		}
	}
	if subBest >= 0 {
		subcategory = subs[subBest].Name
	}
	return category, subcategory
}

func score(name string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(name, k) {
			n++
		}
	}
	return n
}
