package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// PageSize is the fixed number of listings per catalog page.
const PageSize = 12

// Sort keys accepted by the catalog. Anything else falls back to SortDefault.
const (
	SortDefault   = ""          // last-updated descending
	SortPriceAsc  = "priceAsc"  // cheapest first
	SortPriceDesc = "priceDesc" // most expensive first
	SortSizeDesc  = "sizeDesc"  // largest first
)

// Filters is the structured query descriptor built from raw catalog query
// parameters. All predicates are ANDed; the store layer additionally
// restricts public queries to Published listings.
type Filters struct {
	City         string
	PropertyType string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	Features     []string
	Sort         string
	Page         int
}

// ResolveFilters maps raw query parameters onto a Filters descriptor.
// Malformed numeric values are treated as absent, not as errors.
func ResolveFilters(params url.Values) Filters {
	f := Filters{
		City:         params.Get("city"),
		PropertyType: params.Get("propertyType"),
		Page:         1,
	}

	if minStr := params.Get("minPrice"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			f.MinPrice = &min
		}
	}
	if maxStr := params.Get("maxPrice"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			f.MaxPrice = &max
		}
	}

	if bedStr := params.Get("bedrooms"); bedStr != "" {
		if beds, err := strconv.Atoi(bedStr); err == nil {
			f.MinBedrooms = &beds
		}
	}

	// Comma-separated tags; a listing must carry every one of them.
	if featuresStr := params.Get("features"); featuresStr != "" {
		for _, tag := range strings.Split(featuresStr, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Features = append(f.Features, tag)
			}
		}
	}

	switch s := params.Get("sort"); s {
	case SortPriceAsc, SortPriceDesc, SortSizeDesc:
		f.Sort = s
	default:
		f.Sort = SortDefault
	}

	if pageStr := params.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 1 {
			f.Page = page
		}
	}

	return f
}

// Offset returns the pagination offset for the fixed page size.
func (f Filters) Offset() int {
	return (f.Page - 1) * PageSize
}

// Limit returns the pagination window size.
func (f Filters) Limit() int {
	return PageSize
}
