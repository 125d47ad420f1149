package database

import (
	"strings"
	"testing"

	"github.com/cybernetics669/nadlan-website/internal/catalog"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildCatalogWhereStatusOnly(t *testing.T) {
	where, args := buildCatalogWhere(catalog.Filters{Page: 1})

	if where != "status = $1" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 1 || args[0] != "Published" {
		t.Errorf("args = %v, catalog queries must always restrict to Published", args)
	}
}

func TestBuildCatalogWhereAllPredicates(t *testing.T) {
	f := catalog.Filters{
		City:         "Tel Aviv",
		PropertyType: "Apartment",
		MinPrice:     floatPtr(500000),
		MaxPrice:     floatPtr(1000000),
		MinBedrooms:  intPtr(3),
		Features:     []string{"Pool", "Sea View"},
		Page:         1,
	}
	where, args := buildCatalogWhere(f)

	for _, clause := range []string{
		"status = $1",
		"city = $2",
		"property_type = $3",
		"price >= $4",
		"price <= $5",
		"bedrooms >= $6",
		"features @> $7::jsonb",
	} {
		if !strings.Contains(where, clause) {
			t.Errorf("where %q missing clause %q", where, clause)
		}
	}
	if len(args) != 7 {
		t.Fatalf("args = %d, want 7", len(args))
	}
	if args[6] != `["Pool","Sea View"]` {
		t.Errorf("features arg = %v, want json array", args[6])
	}
}

func TestBuildCatalogWherePlaceholdersStayAligned(t *testing.T) {
	// With only some predicates present the positional numbers must still
	// be consecutive.
	f := catalog.Filters{
		MaxPrice: floatPtr(900000),
		Features: []string{"Parking"},
		Page:     1,
	}
	where, args := buildCatalogWhere(f)

	if !strings.Contains(where, "price <= $2") {
		t.Errorf("where = %q, want price bound at $2", where)
	}
	if !strings.Contains(where, "features @> $3::jsonb") {
		t.Errorf("where = %q, want features at $3", where)
	}
	if len(args) != 3 {
		t.Errorf("args = %d, want 3", len(args))
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{catalog.SortPriceAsc, "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price ASC"},
		{catalog.SortPriceDesc, "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price DESC"},
		{catalog.SortSizeDesc, "CASE WHEN size_sqm IS NULL THEN 1 ELSE 0 END, size_sqm DESC"},
		{catalog.SortDefault, "updated_at DESC"},
		{"unknown", "updated_at DESC"},
	}
	for _, tt := range tests {
		if got := orderClause(tt.sort); got != tt.want {
			t.Errorf("orderClause(%q) = %q, want %q", tt.sort, got, tt.want)
		}
	}
}

// tableDDL extracts one CREATE TABLE statement from the Postgres schema.
func tableDDL(t *testing.T, name string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + name
	i := strings.Index(postgresSchema, marker)
	if i < 0 {
		t.Fatalf("schema has no table %q", name)
	}
	rest := postgresSchema[i:]
	return rest[:strings.Index(rest, ";")]
}

func TestSchemaImagesCascadeWithProperty(t *testing.T) {
	ddl := tableDDL(t, "property_images")
	if !strings.Contains(ddl, "REFERENCES properties(id) ON DELETE CASCADE") {
		t.Errorf("image rows must be deleted with their property:\n%s", ddl)
	}
}

func TestSchemaLeadsSurvivePropertyDeletion(t *testing.T) {
	// Inquiries are append-only and must outlive their listing: a foreign
	// key here would make property deletion fail once a lead exists.
	ddl := tableDDL(t, "leads")
	if strings.Contains(ddl, "REFERENCES") {
		t.Errorf("leads must not reference properties:\n%s", ddl)
	}
	if !strings.Contains(postgresSchema, "idx_leads_property ON leads(property_id)") {
		t.Error("leads.property_id still needs its lookup index")
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		want  int
	}{
		{0, 0},
		{1, 1},
		{catalog.PageSize, 1},
		{catalog.PageSize + 1, 2},
		{5 * catalog.PageSize, 5},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total); got != tt.want {
			t.Errorf("totalPages(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
