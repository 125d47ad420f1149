package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Property struct {
	ID   string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`

	Title        string `gorm:"type:text;not null" json:"title"`
	City         string `gorm:"type:varchar(100);not null;index" json:"city"`
	Neighborhood string `gorm:"type:varchar(150)" json:"neighborhood,omitempty"`
	AddressLine  string `gorm:"type:text" json:"address_line,omitempty"`
	AreaText     string `gorm:"type:text;not null" json:"area_text"`

	PropertyType PropertyType `gorm:"type:varchar(20);not null;index" json:"property_type"`

	Bedrooms  *int `gorm:"type:int;index" json:"bedrooms,omitempty"`
	Bathrooms *int `gorm:"type:int" json:"bathrooms,omitempty"`
	SizeSqm   *int `gorm:"type:int;index" json:"size_sqm,omitempty"`
	LotSqm    *int `gorm:"type:int" json:"lot_sqm,omitempty"`

	// Price is nil while PriceOnRequest is set.
	Price          *float64 `gorm:"type:decimal(14,2);index" json:"price,omitempty"`
	Currency       string   `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	PriceOnRequest bool     `gorm:"not null;default:false" json:"price_on_request"`

	Features    FeatureList `gorm:"type:json" json:"features"`
	Description string      `gorm:"type:text;not null" json:"description"`

	Status     PropertyStatus `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`
	IsFeatured bool           `gorm:"not null;default:false;index" json:"is_featured"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime;index:idx_updated_at,sort:desc" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// IsPublished reports whether the listing is publicly visible.
func (p *Property) IsPublished() bool {
	return p.Status == PropertyStatusPublished
}

type PropertyStatus string

const (
	PropertyStatusDraft     PropertyStatus = "Draft"
	PropertyStatusPublished PropertyStatus = "Published"
	PropertyStatusSold      PropertyStatus = "Sold"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s string) bool {
	switch PropertyStatus(s) {
	case PropertyStatusDraft, PropertyStatusPublished, PropertyStatusSold:
		return true
	}
	return false
}

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "Apartment"
	PropertyTypePenthouse  PropertyType = "Penthouse"
	PropertyTypeVilla      PropertyType = "Villa"
	PropertyTypeDuplex     PropertyType = "Duplex"
	PropertyTypeLand       PropertyType = "Land"
	PropertyTypeCommercial PropertyType = "Commercial"
)

// PropertyTypes lists every known type, in landing-page order.
func PropertyTypes() []PropertyType {
	return []PropertyType{
		PropertyTypeApartment,
		PropertyTypePenthouse,
		PropertyTypeVilla,
		PropertyTypeDuplex,
		PropertyTypeLand,
		PropertyTypeCommercial,
	}
}

// ValidPropertyType reports whether s is one of the known types.
func ValidPropertyType(s string) bool {
	for _, t := range PropertyTypes() {
		if PropertyType(s) == t {
			return true
		}
	}
	return false
}

// FeatureList is an unordered set of feature tags stored as a JSON array.
type FeatureList []string

func (f FeatureList) Value() (driver.Value, error) {
	if f == nil {
		f = FeatureList{}
	}
	return json.Marshal(f)
}

func (f *FeatureList) Scan(value interface{}) error {
	if value == nil {
		*f = FeatureList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported feature list source type %T", value)
	}
	return json.Unmarshal(data, f)
}

// Contains reports whether tag is present in the list.
func (f FeatureList) Contains(tag string) bool {
	for _, t := range f {
		if t == tag {
			return true
		}
	}
	return false
}
