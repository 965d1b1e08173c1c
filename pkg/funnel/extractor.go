package funnel

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule maps a set of substrings to a canonical filter value. Rules within a
// key are checked in order and the first match wins, so rule order encodes
// precedence (metal before plastic before wood).
type Rule struct {
	Keywords []string
	Value    string
}

// RuleSet is the ordered rule list for one funnel key.
type RuleSet struct {
	Key   string
	Rules []Rule
}

// dimensionPattern matches "300x500" style sizes with Latin or Cyrillic
// separators, as typed by real users.
var dimensionPattern = regexp.MustCompile(`(\d+)\s*[×хxXХ]\s*(\d+)`)

// SizeThresholdMM is the boundary between the small and large size groups,
// compared against the larger side of an extracted WxH dimension.
const SizeThresholdMM = 1000

// Extractor recognizes filter criteria in free-form user text.
// It is pure and deterministic: same text, same result.
type Extractor struct {
	rules []RuleSet
}

func NewExtractor(rules []RuleSet) *Extractor {
	return &Extractor{rules: rules}
}

// NewDefaultExtractor builds an extractor over the production rule table.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultRules())
}

// Extract scans the text and returns every confidently recognized
// key -> canonical value pair. A key with no matching rule is simply absent:
// "no match" never means "don't care".
func (e *Extractor) Extract(text string) map[string]string {
	lower := strings.ToLower(text)
	found := make(map[string]string)

	for _, set := range e.rules {
		// Exact dimensions beat vague size words.
		if set.Key == KeySizeGroup {
			if group, ok := extractSizeGroup(text); ok {
				found[set.Key] = group
				continue
			}
		}
		for _, rule := range set.Rules {
			if containsAny(lower, rule.Keywords) {
				found[set.Key] = rule.Value
				break
			}
		}
	}

	return found
}

func extractSizeGroup(text string) (string, bool) {
	m := dimensionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	side := w
	if h > side {
		side = h
	}
	if side < SizeThresholdMM {
		return "small", true
	}
	return "large", true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the production extraction table. It is data, not
// code: tests and deployments may swap in their own table via NewExtractor.
func DefaultRules() []RuleSet {
	return []RuleSet{
		{
			Key: KeyProductType,
			Rules: []Rule{
				{Keywords: []string{"решетк", "решётк"}, Value: "grille"},
				{Keywords: []string{"диффузор"}, Value: "diffuser"},
				{Keywords: []string{"клапан"}, Value: "valve"},
				{Keywords: []string{"воздухораспределител", "воздухораздат"}, Value: "distributor"},
				{Keywords: []string{"электропривод", "привод"}, Value: "actuator"},
				{Keywords: []string{"фильтр", "hepa"}, Value: "filter"},
			},
		},
		{
			Key: KeyLocation,
			Rules: []Rule{
				{Keywords: []string{"фасад", "улиц", "наружн", "уличн", "снаружи", "внешн"}, Value: "outdoor"},
				{Keywords: []string{
					"помещен", "внутр", "квартир", "офис", "потолок", "потолоч",
					"стен", "комнат", "дом", "кухн", "ванн", "туалет",
					"в пол", "наполн", "межкомнат", "переточн",
				}, Value: "indoor"},
			},
		},
		{
			Key: KeyMaterial,
			Rules: []Rule{
				{Keywords: []string{
					"металл", "сталь", "стальн", "алюмини", "нержавейк",
					"нержавеющ", "оцинков", "железн", "латун",
				}, Value: "metal"},
				{Keywords: []string{"пластик", "пластмасс", "пвх", "полипропилен"}, Value: "plastic"},
				{Keywords: []string{"дерев", "деревянн", "мдф", "шпон"}, Value: "wood"},
			},
		},
		{
			Key: KeySizeGroup,
			Rules: []Rule{
				{Keywords: []string{"маленьк", "небольш", "компактн", "мини"}, Value: "small"},
				{Keywords: []string{"больш", "крупн", "промышленн"}, Value: "large"},
			},
		},
	}
}
