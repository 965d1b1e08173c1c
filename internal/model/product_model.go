package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Article     string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name        string            `gorm:"type:varchar(255);not null"`
	Url         string            `gorm:"type:text"`
	Price       string            `gorm:"type:varchar(64)"`
	OldPrice    string            `gorm:"type:varchar(64)"`
	Category    string            `gorm:"type:varchar(255);index"`
	Description string            `gorm:"type:text"`
	Attributes  datatypes.JSONMap `gorm:"type:jsonb"`
	ProductType string            `gorm:"type:varchar(32);index"`
	Location    string            `gorm:"type:varchar(32);index"`
	Material    string            `gorm:"type:varchar(32);index"`
	SizeGroup   string            `gorm:"type:varchar(32);index"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}
