package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is one normalized catalog entry produced by the external
// ingestion pipeline. Filter fields carry canonical funnel values.
type Product struct {
	Id          uuid.UUID
	Article     string
	Name        string
	Url         string
	Price       string
	OldPrice    string
	Category    string
	Description string
	Attributes  map[string]string // raw site characteristics, verbatim
	ProductType string
	Location    string
	Material    string
	SizeGroup   string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// SearchText is the document indexed for semantic search.
func (p *Product) SearchText() string {
	text := p.Name
	if p.Category != "" {
		text += "\n" + p.Category
	}
	if p.Description != "" {
		text += "\n\n" + p.Description
	}
	return text
}
