package mirror

import (
	"fmt"

	"github.com/hakimbenali/mizan-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
)

// FieldMapping pairs a file-store field name (snake_case) with its mirror
// document name (camelCase). One explicit table per collection replaces any
// per-record name guessing; the tables are validated once at service
// construction.
type FieldMapping struct {
	File   string
	Mirror string
}

// CollectionMapping describes how one file collection translates to its
// mirror collection.
type CollectionMapping struct {
	Collection string
	MirrorName string
	Fields     []FieldMapping
}

func defaultMappings() []CollectionMapping {
	return []CollectionMapping{
		{
			Collection: storage.CollectionProducts,
			MirrorName: "products",
			Fields: []FieldMapping{
				{File: "id", Mirror: "id"},
				{File: "name", Mirror: "name"},
				{File: "price_per_kg", Mirror: "pricePerKg"},
				{File: "current_stock_grams", Mirror: "currentStockGrams"},
				{File: "created_at", Mirror: "createdAt"},
				{File: "updated_at", Mirror: "updatedAt"},
			},
		},
		{
			Collection: storage.CollectionSales,
			MirrorName: "sales",
			Fields: []FieldMapping{
				{File: "id", Mirror: "id"},
				{File: "product_id", Mirror: "productId"},
				{File: "weight_grams", Mirror: "weightGrams"},
				{File: "price_per_kg", Mirror: "pricePerKg"},
				{File: "total_amount", Mirror: "totalAmount"},
				{File: "sale_date", Mirror: "saleDate"},
			},
		},
		{
			Collection: storage.CollectionExpenses,
			MirrorName: "expenses",
			Fields: []FieldMapping{
				{File: "id", Mirror: "id"},
				{File: "description", Mirror: "description"},
				{File: "amount", Mirror: "amount"},
				{File: "category", Mirror: "category"},
				{File: "expense_date", Mirror: "expenseDate"},
			},
		},
		{
			Collection: storage.CollectionAdjustments,
			MirrorName: "inventory_adjustments",
			Fields: []FieldMapping{
				{File: "id", Mirror: "id"},
				{File: "product_id", Mirror: "productId"},
				{File: "weight_grams", Mirror: "weightGrams"},
				{File: "adjustment_type", Mirror: "adjustmentType"},
				{File: "reason", Mirror: "reason"},
				{File: "adjustment_date", Mirror: "adjustmentDate"},
			},
		},
	}
}

// validateMappings rejects duplicate or empty names and requires every
// collection to carry an id field.
func validateMappings(mappings []CollectionMapping) error {
	if len(mappings) == 0 {
		return fmt.Errorf("no collection mappings defined")
	}
	seenCollections := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		if m.Collection == "" || m.MirrorName == "" {
			return fmt.Errorf("mapping with empty collection name")
		}
		if _, dup := seenCollections[m.Collection]; dup {
			return fmt.Errorf("duplicate mapping for collection %q", m.Collection)
		}
		seenCollections[m.Collection] = struct{}{}

		hasID := false
		seenFile := make(map[string]struct{}, len(m.Fields))
		seenMirror := make(map[string]struct{}, len(m.Fields))
		for _, f := range m.Fields {
			if f.File == "" || f.Mirror == "" {
				return fmt.Errorf("collection %q: mapping with empty field name", m.Collection)
			}
			if _, dup := seenFile[f.File]; dup {
				return fmt.Errorf("collection %q: duplicate file field %q", m.Collection, f.File)
			}
			if _, dup := seenMirror[f.Mirror]; dup {
				return fmt.Errorf("collection %q: duplicate mirror field %q", m.Collection, f.Mirror)
			}
			seenFile[f.File] = struct{}{}
			seenMirror[f.Mirror] = struct{}{}
			if f.File == "id" {
				hasID = true
			}
		}
		if !hasID {
			return fmt.Errorf("collection %q: mapping has no id field", m.Collection)
		}
	}
	return nil
}

// toMirror translates one file record into a mirror document. Fields absent
// from the record are skipped, not invented.
func (m CollectionMapping) toMirror(record storage.Record) bson.M {
	doc := bson.M{}
	for _, f := range m.Fields {
		if v, ok := record[f.File]; ok {
			doc[f.Mirror] = v
		}
	}
	return doc
}

// toFile is the inverse translation for the download path.
func (m CollectionMapping) toFile(doc bson.M) storage.Record {
	record := storage.Record{}
	for _, f := range m.Fields {
		if v, ok := doc[f.Mirror]; ok {
			record[f.File] = v
		}
	}
	return record
}
