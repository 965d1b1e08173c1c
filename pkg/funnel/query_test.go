package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPredicateSkipsDontCare(t *testing.T) {
	criteria := map[string]string{
		KeyProductType: "grille",
		KeyLocation:    "", // answered with "don't care"
		KeyMaterial:    "metal",
	}

	pred := BuildPredicate(criteria)

	assert.Equal(t, Predicate{
		KeyProductType: "grille",
		KeyMaterial:    "metal",
	}, pred)
}

func TestBuildPredicateEmpty(t *testing.T) {
	assert.Empty(t, BuildPredicate(nil))
	assert.Empty(t, BuildPredicate(map[string]string{KeySizeGroup: ""}))
}

func TestBuildQueryUsesLabelsInFunnelOrder(t *testing.T) {
	v := DefaultVocabulary()

	query := v.BuildQuery(map[string]string{
		KeyMaterial:    "metal",
		KeyProductType: "grille",
	})

	// Product type label precedes material label regardless of map order.
	assert.Equal(t, "Вентиляционные решетки Металл (сталь, алюминий)", query)
}

func TestBuildQueryCatchAll(t *testing.T) {
	v := DefaultVocabulary()

	assert.Equal(t, CatchAllQuery, v.BuildQuery(nil))
	assert.Equal(t, CatchAllQuery, v.BuildQuery(map[string]string{KeyLocation: ""}))
}

func TestDescribeCriteria(t *testing.T) {
	v := DefaultVocabulary()

	described := v.DescribeCriteria(map[string]string{
		KeyProductType: "grille",
		KeySizeGroup:   "small",
	})

	assert.Equal(t, "Вентиляционные решетки, Малый (до 1000 мм по стороне)", described)
}
