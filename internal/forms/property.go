package forms

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cybernetics669/nadlan-website/internal/models"
)

// FieldErrors maps a submitted field name to its human-readable problems.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// PropertyForm is the raw admin create/update submission. Everything arrives
// as strings; Validate does the coercion.
type PropertyForm struct {
	Title          string `form:"title"`
	City           string `form:"city"`
	Neighborhood   string `form:"neighborhood"`
	AddressLine    string `form:"addressLine"`
	AreaText       string `form:"areaText"`
	PropertyType   string `form:"propertyType"`
	Bedrooms       string `form:"bedrooms"`
	Bathrooms      string `form:"bathrooms"`
	SizeSqm        string `form:"sizeSqm"`
	LotSqm         string `form:"lotSqm"`
	Price          string `form:"price"`
	Currency       string `form:"currency"`
	PriceOnRequest string `form:"priceOnRequest"`
	Features       string `form:"features"`
	Description    string `form:"description"`
	Slug           string `form:"slug"`
	IsFeatured     string `form:"isFeatured"`
	Status         string `form:"status"`
	ImageURLs      string `form:"imageUrls"`
}

// Validate schema-checks the submission and returns the property to persist
// plus its ordered image list. A non-empty FieldErrors means nothing may be
// written. The returned property carries no ID and no resolved slug; the
// caller owns identity and slug uniqueness.
func (f *PropertyForm) Validate() (*models.Property, []models.PropertyImage, FieldErrors) {
	errs := FieldErrors{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errs.add("title", "Title is required")
	}
	city := strings.TrimSpace(f.City)
	if city == "" {
		errs.add("city", "City is required")
	}
	areaText := strings.TrimSpace(f.AreaText)
	if areaText == "" {
		errs.add("areaText", "Area description is required")
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		errs.add("description", "Description is required")
	}
	if !models.ValidPropertyType(f.PropertyType) {
		errs.add("propertyType", "Unknown property type")
	}

	bedrooms := optionalCount(f.Bedrooms, "bedrooms", errs)
	bathrooms := optionalCount(f.Bathrooms, "bathrooms", errs)
	sizeSqm := optionalCount(f.SizeSqm, "sizeSqm", errs)
	lotSqm := optionalCount(f.LotSqm, "lotSqm", errs)

	priceOnRequest := checked(f.PriceOnRequest)
	var price *float64
	if v := strings.TrimSpace(f.Price); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			errs.add("price", "Price must be a non-negative number")
		} else {
			price = &parsed
		}
	}
	// Price-on-request listings never store a numeric price, regardless of
	// what was submitted.
	if priceOnRequest {
		price = nil
	}

	currency := strings.TrimSpace(f.Currency)
	if currency == "" {
		currency = "USD"
	}

	status := models.PropertyStatusDraft
	if f.Status != "" {
		if !models.ValidStatus(f.Status) {
			errs.add("status", "Unknown status")
		} else {
			status = models.PropertyStatus(f.Status)
		}
	}

	images := parseImageURLs(f.ImageURLs, title)
	if len(images) == 0 {
		errs.add("imageUrls", "At least one image is required")
	}

	if len(errs) > 0 {
		return nil, nil, errs
	}

	property := &models.Property{
		Title:          title,
		City:           city,
		Neighborhood:   strings.TrimSpace(f.Neighborhood),
		AddressLine:    strings.TrimSpace(f.AddressLine),
		AreaText:       areaText,
		PropertyType:   models.PropertyType(f.PropertyType),
		Bedrooms:       bedrooms,
		Bathrooms:      bathrooms,
		SizeSqm:        sizeSqm,
		LotSqm:         lotSqm,
		Price:          price,
		Currency:       currency,
		PriceOnRequest: priceOnRequest,
		Features:       parseFeatures(f.Features),
		Description:    description,
		Status:         status,
		IsFeatured:     checked(f.IsFeatured),
	}
	return property, images, nil
}

// optionalCount parses an optional non-negative integer field.
func optionalCount(raw, field string, errs FieldErrors) *int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		errs.add(field, "Must be a non-negative integer")
		return nil
	}
	return &n
}

// checked interprets an HTML checkbox value.
func checked(v string) bool {
	return v == "on" || v == "true"
}

func parseFeatures(raw string) models.FeatureList {
	features := models.FeatureList{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			features = append(features, tag)
		}
	}
	return features
}

// parseImageURLs decodes the JSON-encoded ordered URL array, dropping blank
// entries. A malformed payload yields an empty list, which the caller rejects.
func parseImageURLs(raw, alt string) []models.PropertyImage {
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	var images []models.PropertyImage
	for _, u := range urls {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		images = append(images, models.PropertyImage{
			URL:       u,
			Alt:       alt,
			SortOrder: len(images),
		})
	}
	return images
}
