package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"product-advisor-be/pkg/funnel"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

type ByArticle struct {
	Article string
}

func (s ByArticle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("article = ?", s.Article)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// ByPredicate translates funnel equality terms into WHERE clauses on the
// products table's canonical filter columns. Unknown keys are skipped so a
// stale vocabulary cannot produce invalid SQL.
type ByPredicate struct {
	Predicate funnel.Predicate
}

// filterColumns whitelists predicate keys against real columns.
var filterColumns = map[string]string{
	funnel.KeyProductType: "product_type",
	funnel.KeyLocation:    "location",
	funnel.KeyMaterial:    "material",
	funnel.KeySizeGroup:   "size_group",
}

func (s ByPredicate) Apply(db *gorm.DB) *gorm.DB {
	for key, value := range s.Predicate {
		column, ok := filterColumns[key]
		if !ok {
			continue
		}
		db = db.Where("products."+column+" = ?", value)
	}
	return db
}

type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(s.Field + " " + direction)
}

type Limit struct {
	Count int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Count)
}
