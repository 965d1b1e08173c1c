package funnel

import "strings"

// Predicate is a conjunction of key = value equality terms passed to the
// semantic index. An empty predicate means an unfiltered search.
type Predicate map[string]string

// CatchAllQuery keeps semantic search meaningful when no criteria are set.
const CatchAllQuery = "вентиляционное оборудование"

// BuildQuery concatenates the human-readable labels of all non-empty
// criteria in funnel order into a search string.
func (v *Vocabulary) BuildQuery(criteria map[string]string) string {
	var parts []string
	for _, step := range v.steps {
		value, ok := criteria[step.Key]
		if !ok || value == "" {
			continue
		}
		parts = append(parts, step.LabelFor(value))
	}
	if len(parts) == 0 {
		return CatchAllQuery
	}
	return strings.Join(parts, " ")
}

// BuildPredicate emits one equality term per non-empty criterion.
// "Don't care" answers never become filter terms.
func BuildPredicate(criteria map[string]string) Predicate {
	pred := make(Predicate)
	for key, value := range criteria {
		if value != "" {
			pred[key] = value
		}
	}
	return pred
}

// DescribeCriteria renders extracted criteria as labels, for the
// "understood you" acknowledgement before the next question.
func (v *Vocabulary) DescribeCriteria(criteria map[string]string) string {
	var parts []string
	for _, step := range v.steps {
		value, ok := criteria[step.Key]
		if !ok || value == "" {
			continue
		}
		parts = append(parts, step.LabelFor(value))
	}
	return strings.Join(parts, ", ")
}
