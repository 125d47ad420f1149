package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cybernetics669/nadlan-website/internal/catalog"
	"github.com/cybernetics669/nadlan-website/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresDB implements Store over database/sql with lib/pq.
type PostgresDB struct {
	conn *sql.DB
}

func NewPostgresDB(host, port, user, password, dbname, sslmode string) (*PostgresDB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &PostgresDB{conn: conn}, nil
}

func (db *PostgresDB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the tables if they don't exist
func (db *PostgresDB) InitSchema() error {
	_, err := db.conn.Exec(postgresSchema)
	return err
}

// Leads carry no foreign key on purpose: inquiries are append-only and must
// survive deletion of the property they were sent for.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(36) PRIMARY KEY,
		slug VARCHAR(255) NOT NULL UNIQUE,
		title TEXT NOT NULL,
		city VARCHAR(100) NOT NULL,
		neighborhood VARCHAR(150) NOT NULL DEFAULT '',
		address_line TEXT NOT NULL DEFAULT '',
		area_text TEXT NOT NULL,
		property_type VARCHAR(20) NOT NULL,
		bedrooms INTEGER,
		bathrooms INTEGER,
		size_sqm INTEGER,
		lot_sqm INTEGER,
		price DECIMAL(14, 2),
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		price_on_request BOOLEAN NOT NULL DEFAULT FALSE,
		features JSONB NOT NULL DEFAULT '[]',
		description TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Draft',
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS property_images (
		id BIGSERIAL PRIMARY KEY,
		property_id VARCHAR(36) NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		alt TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS leads (
		id VARCHAR(36) PRIMARY KEY,
		property_id VARCHAR(36) NOT NULL,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Indexes for catalog filtering
	CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);
	CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city);
	CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
	CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
	CREATE INDEX IF NOT EXISTS idx_properties_updated_at ON properties(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_property_images_property ON property_images(property_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_leads_property ON leads(property_id);
	`

const propertyColumns = `id, slug, title, city, neighborhood, address_line, area_text,
	property_type, bedrooms, bathrooms, size_sqm, lot_sqm,
	price, currency, price_on_request, features, description,
	status, is_featured, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.City, &p.Neighborhood, &p.AddressLine, &p.AreaText,
		&p.PropertyType, &p.Bedrooms, &p.Bathrooms, &p.SizeSqm, &p.LotSqm,
		&p.Price, &p.Currency, &p.PriceOnRequest, &p.Features, &p.Description,
		&p.Status, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty inserts a property and its image list in one transaction.
func (db *PostgresDB) CreateProperty(p *models.Property, images []models.PropertyImage) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusDraft
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO properties (
			id, slug, title, city, neighborhood, address_line, area_text,
			property_type, bedrooms, bathrooms, size_sqm, lot_sqm,
			price, currency, price_on_request, features, description,
			status, is_featured
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.Slug, p.Title, p.City, p.Neighborhood, p.AddressLine, p.AreaText,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.SizeSqm, p.LotSqm,
		p.Price, p.Currency, p.PriceOnRequest, p.Features, p.Description,
		p.Status, p.IsFeatured)
	if err != nil {
		return err
	}

	if err := insertImages(tx, p.ID, images); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateProperty replaces the scalar fields and the whole image list in a
// single transaction.
func (db *PostgresDB) UpdateProperty(p *models.Property, images []models.PropertyImage) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE properties SET
			slug = $2, title = $3, city = $4, neighborhood = $5, address_line = $6,
			area_text = $7, property_type = $8, bedrooms = $9, bathrooms = $10,
			size_sqm = $11, lot_sqm = $12, price = $13, currency = $14,
			price_on_request = $15, features = $16, description = $17,
			status = $18, is_featured = $19, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Slug, p.Title, p.City, p.Neighborhood, p.AddressLine,
		p.AreaText, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.SizeSqm, p.LotSqm, p.Price, p.Currency,
		p.PriceOnRequest, p.Features, p.Description,
		p.Status, p.IsFeatured)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM property_images WHERE property_id = $1`, p.ID); err != nil {
		return err
	}
	if err := insertImages(tx, p.ID, images); err != nil {
		return err
	}
	return tx.Commit()
}

func insertImages(tx *sql.Tx, propertyID string, images []models.PropertyImage) error {
	for _, img := range images {
		_, err := tx.Exec(`
			INSERT INTO property_images (property_id, url, alt, sort_order)
			VALUES ($1, $2, $3, $4)`,
			propertyID, img.URL, img.Alt, img.SortOrder)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteProperty removes a property; images go with it via ON DELETE CASCADE.
func (db *PostgresDB) DeleteProperty(id string) error {
	res, err := db.conn.Exec(`DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPropertyByID retrieves a property with its ordered images.
func (db *PostgresDB) GetPropertyByID(id string) (*models.Property, error) {
	row := db.conn.QueryRow(`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := db.attachImages([]*models.Property{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPublishedBySlug retrieves a publicly visible property by slug.
func (db *PostgresDB) GetPublishedBySlug(slug string) (*models.Property, error) {
	row := db.conn.QueryRow(
		`SELECT `+propertyColumns+` FROM properties WHERE slug = $1 AND status = $2`,
		slug, models.PropertyStatusPublished)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := db.attachImages([]*models.Property{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// SlugExists reports whether a slug is already taken.
func (db *PostgresDB) SlugExists(slug string) (bool, error) {
	var count int64
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM properties WHERE slug = $1`, slug).Scan(&count)
	return count > 0, err
}

// buildCatalogWhere translates the descriptor's predicate set into a WHERE
// clause with positional arguments, always restricted to Published status.
func buildCatalogWhere(f catalog.Filters) (string, []interface{}) {
	clauses := []string{"status = $1"}
	args := []interface{}{string(models.PropertyStatusPublished)}

	next := func() int { return len(args) + 1 }
	if f.City != "" {
		clauses = append(clauses, fmt.Sprintf("city = $%d", next()))
		args = append(args, f.City)
	}
	if f.PropertyType != "" {
		clauses = append(clauses, fmt.Sprintf("property_type = $%d", next()))
		args = append(args, f.PropertyType)
	}
	if f.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= $%d", next()))
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= $%d", next()))
		args = append(args, *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		clauses = append(clauses, fmt.Sprintf("bedrooms >= $%d", next()))
		args = append(args, *f.MinBedrooms)
	}
	if len(f.Features) > 0 {
		// jsonb array containment is superset matching: every listed tag
		// must be present.
		tags, _ := json.Marshal(f.Features)
		clauses = append(clauses, fmt.Sprintf("features @> $%d::jsonb", next()))
		args = append(args, string(tags))
	}

	return strings.Join(clauses, " AND "), args
}

// ListPublished executes the catalog query descriptor.
func (db *PostgresDB) ListPublished(f catalog.Filters) (*ListingPage, error) {
	where, args := buildCatalogWhere(f)

	var total int64
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM properties WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM properties WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		propertyColumns, where, orderClause(f.Sort), len(args)+1, len(args)+2)
	rows, err := db.conn.Query(query, append(args, f.Limit(), f.Offset())...)
	if err != nil {
		return nil, err
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}
	if err := db.attachImages(propertyPtrs(properties)); err != nil {
		return nil, err
	}

	cities, err := db.distinctCities()
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

func (db *PostgresDB) distinctCities() ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT DISTINCT city FROM properties WHERE status = $1 ORDER BY city ASC`,
		models.PropertyStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// Featured returns up to limit featured published listings, newest first.
func (db *PostgresDB) Featured(limit int) ([]models.Property, error) {
	rows, err := db.conn.Query(
		`SELECT `+propertyColumns+` FROM properties
		 WHERE status = $1 AND is_featured = TRUE
		 ORDER BY updated_at DESC LIMIT $2`,
		models.PropertyStatusPublished, limit)
	if err != nil {
		return nil, err
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}
	if err := db.attachImages(propertyPtrs(properties)); err != nil {
		return nil, err
	}
	return properties, nil
}

// CountByType returns per-type counts over published listings, including
// zero entries for types with no listings.
func (db *PostgresDB) CountByType() ([]TypeCount, error) {
	rows, err := db.conn.Query(
		`SELECT property_type, COUNT(*) FROM properties WHERE status = $1 GROUP BY property_type`,
		models.PropertyStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byType := make(map[models.PropertyType]int64)
	for rows.Next() {
		var t models.PropertyType
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		byType[t] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make([]TypeCount, 0, len(models.PropertyTypes()))
	for _, t := range models.PropertyTypes() {
		counts = append(counts, TypeCount{PropertyType: t, Count: byType[t]})
	}
	return counts, nil
}

// ListAllProperties returns every property regardless of status.
func (db *PostgresDB) ListAllProperties() ([]models.Property, error) {
	rows, err := db.conn.Query(`SELECT ` + propertyColumns + ` FROM properties ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}
	if err := db.attachImages(propertyPtrs(properties)); err != nil {
		return nil, err
	}
	return properties, nil
}

// CreateLead stores an inquiry after verifying the referenced property exists.
func (db *PostgresDB) CreateLead(l *models.Lead) error {
	var count int64
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM properties WHERE id = $1`, l.PropertyID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO leads (id, property_id, name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.PropertyID, l.Name, l.Email, l.Phone, l.Message)
	return err
}

// Stats returns dashboard counters and the most recent inquiries.
func (db *PostgresDB) Stats() (*Stats, error) {
	stats := &Stats{}

	countByStatus := func(s models.PropertyStatus, dst *int64) error {
		return db.conn.QueryRow(`SELECT COUNT(*) FROM properties WHERE status = $1`, s).Scan(dst)
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
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM leads`).Scan(&stats.Leads); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`
		SELECT id, property_id, name, email, phone, message, created_at
		FROM leads ORDER BY created_at DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.Name, &l.Email, &l.Phone, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		stats.RecentLeads = append(stats.RecentLeads, l)
	}
	return stats, rows.Err()
}

// ImageURLs returns every stored image URL.
func (db *PostgresDB) ImageURLs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT url FROM property_images`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func collectProperties(rows *sql.Rows) ([]models.Property, error) {
	defer rows.Close()
	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func propertyPtrs(properties []models.Property) []*models.Property {
	ptrs := make([]*models.Property, len(properties))
	for i := range properties {
		ptrs[i] = &properties[i]
	}
	return ptrs
}

// attachImages loads ordered images for the given properties in one query.
func (db *PostgresDB) attachImages(properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	ids := make([]string, len(properties))
	byID := make(map[string]*models.Property, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := db.conn.Query(`
		SELECT id, property_id, url, alt, sort_order, created_at
		FROM property_images
		WHERE property_id = ANY($1)
		ORDER BY property_id, sort_order ASC`,
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var img models.PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.URL, &img.Alt, &img.SortOrder, &img.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[img.PropertyID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}
