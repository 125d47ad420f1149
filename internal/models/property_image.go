package models

import "time"

// PropertyImage is owned by exactly one property and is deleted with it.
type PropertyImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	Alt        string    `gorm:"type:text" json:"alt,omitempty"`
	SortOrder  int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}
