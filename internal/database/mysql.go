package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cybernetics669/nadlan-website/internal/catalog"
	"github.com/cybernetics669/nadlan-website/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.Lead{},
	)
}

// CreateProperty inserts a property and its image list in one transaction.
func (gdb *GormDB) CreateProperty(p *models.Property, images []models.PropertyImage) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusDraft
	}

	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Create(p).Error; err != nil {
			return err
		}
		return savePropertyImages(tx, p.ID, images)
	})
}

// UpdateProperty replaces a property's scalar fields and its whole image
// list. The image replace happens in the same transaction as the scalar
// update, so readers never observe an empty image list.
func (gdb *GormDB) UpdateProperty(p *models.Property, images []models.PropertyImage) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Property
		if err := tx.Where("id = ?", p.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		p.CreatedAt = existing.CreatedAt
		if err := tx.Omit("Images").Save(p).Error; err != nil {
			return err
		}

		if err := tx.Where("property_id = ?", p.ID).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		return savePropertyImages(tx, p.ID, images)
	})
}

func savePropertyImages(tx *gorm.DB, propertyID string, images []models.PropertyImage) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ID = 0
		images[i].PropertyID = propertyID
	}
	return tx.Create(&images).Error
}

// DeleteProperty removes a property and cascades to its images.
func (gdb *GormDB) DeleteProperty(id string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Property{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetPropertyByID retrieves a property with its ordered images.
func (gdb *GormDB) GetPropertyByID(id string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Preload("Images", orderImages).Where("id = ?", id).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetPublishedBySlug retrieves a publicly visible property by slug.
func (gdb *GormDB) GetPublishedBySlug(slug string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Preload("Images", orderImages).
		Where("slug = ? AND status = ?", slug, models.PropertyStatusPublished).
		First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// SlugExists reports whether a slug is already taken.
func (gdb *GormDB) SlugExists(slug string) (bool, error) {
	var count int64
	err := gdb.db.Model(&models.Property{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ListPublished executes the catalog query descriptor: one page of published
// listings plus the total under the same predicates and the distinct-city
// facet over all published listings.
func (gdb *GormDB) ListPublished(f catalog.Filters) (*ListingPage, error) {
	query := applyCatalogFilters(gdb.db.Model(&models.Property{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var properties []models.Property
	err := query.Preload("Images", orderImages).
		Order(orderClause(f.Sort)).
		Offset(f.Offset()).
		Limit(f.Limit()).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	var cities []string
	err = gdb.db.Model(&models.Property{}).
		Where("status = ?", models.PropertyStatusPublished).
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}

	return &ListingPage{
		Properties: properties,
		Total:      total,
		Page:       f.Page,
		TotalPages: totalPages(total),
		Cities:     cities,
	}, nil
}

// applyCatalogFilters translates the descriptor's predicate set into a GORM
// query, always restricted to Published status.
func applyCatalogFilters(q *gorm.DB, f catalog.Filters) *gorm.DB {
	q = q.Where("status = ?", models.PropertyStatusPublished)
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.MinBedrooms)
	}
	if len(f.Features) > 0 {
		// JSON_CONTAINS with an array candidate matches only supersets,
		// which is the AND semantics the features filter requires.
		tags, _ := json.Marshal(f.Features)
		q = q.Where("JSON_CONTAINS(features, ?)", string(tags))
	}
	return q
}

// orderClause maps a catalog sort key to SQL, NULL prices last.
func orderClause(sort string) string {
	switch sort {
	case catalog.SortPriceAsc:
		return "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price ASC"
	case catalog.SortPriceDesc:
		return "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price DESC"
	case catalog.SortSizeDesc:
		return "CASE WHEN size_sqm IS NULL THEN 1 ELSE 0 END, size_sqm DESC"
	default:
		return "updated_at DESC"
	}
}

func totalPages(total int64) int {
	return int((total + catalog.PageSize - 1) / catalog.PageSize)
}

// Featured returns up to limit featured published listings, newest first.
func (gdb *GormDB) Featured(limit int) ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Preload("Images", orderImages).
		Where("status = ? AND is_featured = ?", models.PropertyStatusPublished, true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&properties).Error
	return properties, err
}

// CountByType returns per-type counts over published listings, including
// zero entries for types with no listings.
func (gdb *GormDB) CountByType() ([]TypeCount, error) {
	var rows []TypeCount
	err := gdb.db.Model(&models.Property{}).
		Select("property_type, count(*) as count").
		Where("status = ?", models.PropertyStatusPublished).
		Group("property_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byType := make(map[models.PropertyType]int64, len(rows))
	for _, r := range rows {
		byType[r.PropertyType] = r.Count
	}
	counts := make([]TypeCount, 0, len(models.PropertyTypes()))
	for _, t := range models.PropertyTypes() {
		counts = append(counts, TypeCount{PropertyType: t, Count: byType[t]})
	}
	return counts, nil
}

// ListAllProperties returns every property regardless of status, newest
// first, for the admin index.
func (gdb *GormDB) ListAllProperties() ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Preload("Images", orderImages).
		Order("updated_at DESC").
		Find(&properties).Error
	return properties, err
}

// CreateLead stores an inquiry after verifying the referenced property
// exists. Leads are append-only.
func (gdb *GormDB) CreateLead(l *models.Lead) error {
	var count int64
	if err := gdb.db.Model(&models.Property{}).Where("id = ?", l.PropertyID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return gdb.db.Create(l).Error
}

// Stats returns dashboard counters and the most recent inquiries.
func (gdb *GormDB) Stats() (*Stats, error) {
	stats := &Stats{}

	countByStatus := func(s models.PropertyStatus, dst *int64) error {
		return gdb.db.Model(&models.Property{}).Where("status = ?", s).Count(dst).Error
	}
	if err := countByStatus(models.PropertyStatusDraft, &stats.Draft); err != nil {
		return nil, err
	}
	if err := countByStatus(models.PropertyStatusPublished, &stats.Published); err != nil {
		return nil, err
	}
	if err := countByStatus(models.PropertyStatusSold, &stats.Sold); err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&models.Lead{}).Count(&stats.Leads).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Order("created_at DESC").Limit(10).Find(&stats.RecentLeads).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// ImageURLs returns every stored image URL.
func (gdb *GormDB) ImageURLs() ([]string, error) {
	var urls []string
	err := gdb.db.Model(&models.PropertyImage{}).Pluck("url", &urls).Error
	return urls, err
}
