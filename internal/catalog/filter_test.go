package catalog

import (
	"net/url"
	"reflect"
	"testing"
)

func TestResolveFiltersDefaults(t *testing.T) {
	f := ResolveFilters(url.Values{})

	if f.City != "" || f.PropertyType != "" {
		t.Errorf("expected no equality predicates, got city=%q type=%q", f.City, f.PropertyType)
	}
	if f.MinPrice != nil || f.MaxPrice != nil || f.MinBedrooms != nil {
		t.Error("expected no numeric predicates")
	}
	if f.Features != nil {
		t.Errorf("expected no feature predicate, got %v", f.Features)
	}
	if f.Sort != SortDefault {
		t.Errorf("expected default sort, got %q", f.Sort)
	}
	if f.Page != 1 {
		t.Errorf("expected page 1, got %d", f.Page)
	}
	if f.Offset() != 0 || f.Limit() != PageSize {
		t.Errorf("expected window 0..%d, got offset=%d limit=%d", PageSize, f.Offset(), f.Limit())
	}
}

func TestResolveFiltersAllParams(t *testing.T) {
	params := url.Values{
		"city":         {"Tel Aviv"},
		"propertyType": {"Apartment"},
		"minPrice":     {"500000"},
		"maxPrice":     {"1000000"},
		"bedrooms":     {"3"},
		"features":     {"Pool,Sea View"},
		"sort":         {"priceAsc"},
		"page":         {"3"},
	}
	f := ResolveFilters(params)

	if f.City != "Tel Aviv" {
		t.Errorf("city = %q", f.City)
	}
	if f.PropertyType != "Apartment" {
		t.Errorf("propertyType = %q", f.PropertyType)
	}
	if f.MinPrice == nil || *f.MinPrice != 500000 {
		t.Errorf("minPrice = %v", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 1000000 {
		t.Errorf("maxPrice = %v", f.MaxPrice)
	}
	if f.MinBedrooms == nil || *f.MinBedrooms != 3 {
		t.Errorf("bedrooms = %v", f.MinBedrooms)
	}
	if want := []string{"Pool", "Sea View"}; !reflect.DeepEqual(f.Features, want) {
		t.Errorf("features = %v, want %v", f.Features, want)
	}
	if f.Sort != SortPriceAsc {
		t.Errorf("sort = %q", f.Sort)
	}
	if f.Page != 3 {
		t.Errorf("page = %d", f.Page)
	}
	if f.Offset() != 2*PageSize {
		t.Errorf("offset = %d, want %d", f.Offset(), 2*PageSize)
	}
}

func TestResolveFiltersMalformedNumbers(t *testing.T) {
	params := url.Values{
		"minPrice": {"cheap"},
		"maxPrice": {"1,000,000"},
		"bedrooms": {"many"},
	}
	f := ResolveFilters(params)

	if f.MinPrice != nil {
		t.Errorf("malformed minPrice should be absent, got %v", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		t.Errorf("malformed maxPrice should be absent, got %v", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		t.Errorf("malformed bedrooms should be absent, got %v", *f.MinBedrooms)
	}
}

func TestResolveFiltersFeatures(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"Pool", []string{"Pool"}},
		{"Pool,Sea View,Parking", []string{"Pool", "Sea View", "Parking"}},
		{" Pool , ,Sea View,", []string{"Pool", "Sea View"}},
		{",,,", nil},
	}
	for _, tt := range tests {
		f := ResolveFilters(url.Values{"features": {tt.raw}})
		if !reflect.DeepEqual(f.Features, tt.want) {
			t.Errorf("features %q resolved to %v, want %v", tt.raw, f.Features, tt.want)
		}
	}
}

func TestResolveFiltersSort(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"priceAsc", SortPriceAsc},
		{"priceDesc", SortPriceDesc},
		{"sizeDesc", SortSizeDesc},
		{"newest", SortDefault},
		{"", SortDefault},
		{"PRICEASC", SortDefault},
	}
	for _, tt := range tests {
		f := ResolveFilters(url.Values{"sort": {tt.raw}})
		if f.Sort != tt.want {
			t.Errorf("sort %q resolved to %q, want %q", tt.raw, f.Sort, tt.want)
		}
	}
}

func TestResolveFiltersPageClamping(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"0", 1},
		{"-5", 1},
		{"abc", 1},
		{"1", 1},
		{"7", 7},
	}
	for _, tt := range tests {
		f := ResolveFilters(url.Values{"page": {tt.raw}})
		if f.Page != tt.want {
			t.Errorf("page %q resolved to %d, want %d", tt.raw, f.Page, tt.want)
		}
	}
}
