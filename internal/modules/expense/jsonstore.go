package expense

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

type jsonRepository struct {
	store *storage.Store
}

// NewJSONRepository creates an expense repository over the record store.
func NewJSONRepository(store *storage.Store) Repository {
	return &jsonRepository{store: store}
}

func (r *jsonRepository) Create(ctx context.Context, fields storage.Record) (*Expense, error) {
	record, err := r.store.Add(ctx, storage.CollectionExpenses, fields)
	if err != nil {
		return nil, err
	}
	return decodeExpense(record)
}

func (r *jsonRepository) List(ctx context.Context) ([]*Expense, error) {
	records, err := r.store.Run(ctx, storage.CollectionExpenses, storage.Query{
		OrderBy: &storage.OrderBy{Field: "expense_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return decodeExpenses(records)
}

func (r *jsonRepository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	record, err := r.store.FindByID(ctx, storage.CollectionExpenses, id)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeExpense(record)
}

func (r *jsonRepository) Update(ctx context.Context, id int64, fields storage.Record) (*Expense, error) {
	record, err := r.store.Update(ctx, storage.CollectionExpenses, id, fields)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeExpense(record)
}

func (r *jsonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.store.Delete(ctx, storage.CollectionExpenses, id)
}

func (r *jsonRepository) ByCategory(ctx context.Context, category string) ([]*Expense, error) {
	records, err := r.store.Run(ctx, storage.CollectionExpenses, storage.Query{
		Where:   map[string]storage.Condition{"category": {Equals: category}},
		OrderBy: &storage.OrderBy{Field: "expense_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return decodeExpenses(records)
}

func (r *jsonRepository) InRange(ctx context.Context, from, to string) ([]*Expense, error) {
	records, err := r.store.Run(ctx, storage.CollectionExpenses, storage.Query{
		Where: map[string]storage.Condition{
			"expense_date": {GTE: from, LTE: to},
		},
		OrderBy: &storage.OrderBy{Field: "expense_date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return decodeExpenses(records)
}

func decodeExpense(record storage.Record) (*Expense, error) {
	var e Expense
	if err := storage.Decode(record, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func decodeExpenses(records []storage.Record) ([]*Expense, error) {
	expenses := make([]*Expense, 0, len(records))
	for _, record := range records {
		e, err := decodeExpense(record)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}
