package model

import "time"

// CollectionRow stores one whole collection as a JSON array.
type CollectionRow struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Records   string    `gorm:"column:records;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CollectionRow) TableName() string {
	return "collections"
}
