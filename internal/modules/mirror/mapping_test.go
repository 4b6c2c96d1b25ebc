package mirror

import (
	"testing"

	"github.com/hakimbenali/mizan-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDefaultMappingsAreValid(t *testing.T) {
	if err := validateMappings(defaultMappings()); err != nil {
		t.Fatalf("validateMappings: %v", err)
	}
}

func TestDefaultMappingsCoverEveryCollection(t *testing.T) {
	mapped := make(map[string]bool)
	for _, m := range defaultMappings() {
		mapped[m.Collection] = true
	}
	for _, name := range storage.Collections {
		if !mapped[name] {
			t.Errorf("collection %q has no mirror mapping", name)
		}
	}
}

func TestValidateMappingsRejections(t *testing.T) {
	tests := []struct {
		name     string
		mappings []CollectionMapping
	}{
		{"empty set", nil},
		{
			"missing id field",
			[]CollectionMapping{{
				Collection: "products",
				MirrorName: "products",
				Fields:     []FieldMapping{{File: "name", Mirror: "name"}},
			}},
		},
		{
			"duplicate collection",
			[]CollectionMapping{
				{Collection: "products", MirrorName: "products", Fields: []FieldMapping{{File: "id", Mirror: "id"}}},
				{Collection: "products", MirrorName: "other", Fields: []FieldMapping{{File: "id", Mirror: "id"}}},
			},
		},
		{
			"duplicate mirror field",
			[]CollectionMapping{{
				Collection: "products",
				MirrorName: "products",
				Fields: []FieldMapping{
					{File: "id", Mirror: "id"},
					{File: "name", Mirror: "id"},
				},
			}},
		},
		{
			"empty field name",
			[]CollectionMapping{{
				Collection: "products",
				MirrorName: "products",
				Fields: []FieldMapping{
					{File: "id", Mirror: "id"},
					{File: "", Mirror: "name"},
				},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateMappings(tt.mappings); err == nil {
				t.Error("validateMappings accepted an invalid table")
			}
		})
	}
}

func TestFieldTranslationRoundTrip(t *testing.T) {
	var products CollectionMapping
	for _, m := range defaultMappings() {
		if m.Collection == storage.CollectionProducts {
			products = m
		}
	}

	record := storage.Record{
		"id":                  int64(3),
		"name":                "Sugar",
		"price_per_kg":        20.5,
		"current_stock_grams": int64(4000),
	}
	doc := products.toMirror(record)
	if doc["pricePerKg"] != 20.5 {
		t.Errorf("pricePerKg = %v", doc["pricePerKg"])
	}
	if doc["currentStockGrams"] != int64(4000) {
		t.Errorf("currentStockGrams = %v", doc["currentStockGrams"])
	}
	if _, leaked := doc["price_per_kg"]; leaked {
		t.Error("snake_case field leaked into mirror document")
	}

	back := products.toFile(bson.M(doc))
	if back["price_per_kg"] != 20.5 || back["name"] != "Sugar" {
		t.Errorf("round trip = %v", back)
	}
}

func TestToMirrorSkipsAbsentFields(t *testing.T) {
	m := defaultMappings()[0]
	doc := m.toMirror(storage.Record{"id": int64(1)})
	if len(doc) != 1 {
		t.Errorf("doc = %v, absent fields must not be invented", doc)
	}
}
