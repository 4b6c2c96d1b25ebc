package sale

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

type jsonRepository struct {
	store *storage.Store
}

// NewJSONRepository creates a sale repository over the record store.
func NewJSONRepository(store *storage.Store) Repository {
	return &jsonRepository{store: store}
}

func (r *jsonRepository) Create(ctx context.Context, fields storage.Record) (*Sale, error) {
	record, err := r.store.Add(ctx, storage.CollectionSales, fields)
	if err != nil {
		return nil, err
	}
	return decodeSale(record)
}

func (r *jsonRepository) List(ctx context.Context) ([]*Sale, error) {
	records, err := r.store.Run(ctx, storage.CollectionSales, storage.Query{
		OrderBy: &storage.OrderBy{Field: "sale_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return decodeSales(records)
}

func (r *jsonRepository) GetByID(ctx context.Context, id int64) (*Sale, error) {
	record, err := r.store.FindByID(ctx, storage.CollectionSales, id)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeSale(record)
}

func (r *jsonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.store.Delete(ctx, storage.CollectionSales, id)
}

func (r *jsonRepository) InRange(ctx context.Context, from, to string) ([]*Sale, error) {
	records, err := r.store.Run(ctx, storage.CollectionSales, storage.Query{
		Where: map[string]storage.Condition{
			"sale_date": {GTE: from, LTE: to},
		},
		OrderBy: &storage.OrderBy{Field: "sale_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return decodeSales(records)
}

func decodeSale(record storage.Record) (*Sale, error) {
	var s Sale
	if err := storage.Decode(record, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeSales(records []storage.Record) ([]*Sale, error) {
	sales := make([]*Sale, 0, len(records))
	for _, record := range records {
		s, err := decodeSale(record)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}
