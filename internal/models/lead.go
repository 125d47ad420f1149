package models

import "time"

// Lead is a public inquiry against a listing. Leads are append-only:
// nothing in the system updates or deletes them.
type Lead struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	Name       string    `gorm:"type:varchar(150);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}
