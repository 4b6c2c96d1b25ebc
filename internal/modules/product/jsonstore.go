package product

import (
	"context"
	"sort"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

type jsonRepository struct {
	store *storage.Store
}

// NewJSONRepository creates a product repository over the record store.
func NewJSONRepository(store *storage.Store) Repository {
	return &jsonRepository{store: store}
}

func (r *jsonRepository) Create(ctx context.Context, fields storage.Record) (*Product, error) {
	record, err := r.store.Add(ctx, storage.CollectionProducts, fields)
	if err != nil {
		return nil, err
	}
	return decodeProduct(record)
}

func (r *jsonRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	record, err := r.store.FindByID(ctx, storage.CollectionProducts, id)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeProduct(record)
}

func (r *jsonRepository) List(ctx context.Context) ([]*Product, error) {
	records, err := r.store.GetAll(ctx, storage.CollectionProducts)
	if err != nil {
		return nil, err
	}
	products := make([]*Product, 0, len(records))
	for _, record := range records {
		p, err := decodeProduct(record)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *jsonRepository) Update(ctx context.Context, id int64, fields storage.Record) (*Product, error) {
	record, err := r.store.Update(ctx, storage.CollectionProducts, id, fields)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeProduct(record)
}

func decodeProduct(record storage.Record) (*Product, error) {
	var p Product
	if err := storage.Decode(record, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type jsonAdjustmentRepository struct {
	store *storage.Store
}

// NewJSONAdjustmentRepository creates the audit-trail repository over the
// record store.
func NewJSONAdjustmentRepository(store *storage.Store) AdjustmentRepository {
	return &jsonAdjustmentRepository{store: store}
}

func (r *jsonAdjustmentRepository) Record(ctx context.Context, productID, weightGrams int64, adjustmentType, reason string) (*Adjustment, error) {
	record, err := r.store.Add(ctx, storage.CollectionAdjustments, storage.Record{
		"product_id":      productID,
		"weight_grams":    weightGrams,
		"adjustment_type": adjustmentType,
		"reason":          reason,
		"adjustment_date": storage.Timestamp(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	var a Adjustment
	if err := storage.Decode(record, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *jsonAdjustmentRepository) List(ctx context.Context, productID int64) ([]*Adjustment, error) {
	var records []storage.Record
	var err error
	if productID > 0 {
		records, err = r.store.FindWhere(ctx, storage.CollectionAdjustments, storage.Record{"product_id": productID})
	} else {
		records, err = r.store.GetAll(ctx, storage.CollectionAdjustments)
	}
	if err != nil {
		return nil, err
	}
	adjustments := make([]*Adjustment, 0, len(records))
	for _, record := range records {
		var a Adjustment
		if err := storage.Decode(record, &a); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, &a)
	}
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].AdjustmentDate.After(adjustments[j].AdjustmentDate)
	})
	return adjustments, nil
}
