package database

import (
	"errors"

	"github.com/cybernetics669/nadlan-website/internal/catalog"
	"github.com/cybernetics669/nadlan-website/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ListingPage is one page of catalog results. Total reflects the same
// predicate set as the page; Cities is the facet over all published
// listings regardless of the current filters.
type ListingPage struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Cities     []string          `json:"cities"`
}

// TypeCount is a per-type facet over published listings.
type TypeCount struct {
	PropertyType models.PropertyType `json:"property_type"`
	Count        int64               `json:"count"`
}

// Stats summarizes back-office activity for the admin dashboard.
type Stats struct {
	Draft       int64         `json:"draft"`
	Published   int64         `json:"published"`
	Sold        int64         `json:"sold"`
	Leads       int64         `json:"leads"`
	RecentLeads []models.Lead `json:"recent_leads"`
}

// Store is the persistence contract. Two implementations exist: GORM/MySQL
// and raw-SQL Postgres, chosen at startup from configuration.
type Store interface {
	InitSchema() error
	Close() error

	CreateProperty(p *models.Property, images []models.PropertyImage) error
	UpdateProperty(p *models.Property, images []models.PropertyImage) error
	DeleteProperty(id string) error
	GetPropertyByID(id string) (*models.Property, error)
	GetPublishedBySlug(slug string) (*models.Property, error)
	SlugExists(slug string) (bool, error)

	ListPublished(f catalog.Filters) (*ListingPage, error)
	Featured(limit int) ([]models.Property, error)
	CountByType() ([]TypeCount, error)
	ListAllProperties() ([]models.Property, error)

	CreateLead(l *models.Lead) error
	Stats() (*Stats, error)

	// ImageURLs returns every stored image URL, for the upload sweep.
	ImageURLs() ([]string, error)
}
