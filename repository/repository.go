// Package repository is the only place that talks to the document store.
// Entities are plain structs; a Repository persists one entity type.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("record not found")

// Filter is an equality filter: column name -> required value.
type Filter map[string]any

// Expand asks for a reference field to be populated with a subset of the
// referenced document's columns. No columns means the whole document.
type Expand struct {
	Field   string
	Columns []string
}

// Populate builds an Expand for field restricted to columns.
func Populate(field string, columns ...string) Expand {
	return Expand{Field: field, Columns: columns}
}

type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

func (r *Repository[T]) query(ctx context.Context, expand []Expand) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, e := range expand {
		columns := e.Columns
		if len(columns) == 0 {
			q = q.Preload(e.Field)
			continue
		}
		q = q.Preload(e.Field, func(db *gorm.DB) *gorm.DB {
			return db.Select(columns)
		})
	}
	return q
}

// FindByID returns ErrNotFound when no document has that id.
func (r *Repository[T]) FindByID(ctx context.Context, id string, expand ...Expand) (*T, error) {
	var out T
	if err := r.query(ctx, expand).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
// Must be called on a repository bound with WithTx.
func (r *Repository[T]) FindByIDForUpdate(ctx context.Context, id string) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// FindOne returns (nil, nil) when nothing matches.
func (r *Repository[T]) FindOne(ctx context.Context, filter Filter, expand ...Expand) (*T, error) {
	var out T
	q := r.query(ctx, expand)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	if err := q.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// FindMany returns matches in insertion order. A nil filter matches all.
func (r *Repository[T]) FindMany(ctx context.Context, filter Filter, expand ...Expand) ([]T, error) {
	var out []T
	q := r.query(ctx, expand)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByIDs loads the documents with the given ids, keeping the order of ids
// and skipping ids that no longer resolve. T may be a summary read model of
// the table.
func (r *Repository[T]) FindByIDs(ctx context.Context, ids []string, key func(*T) string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	var found []T
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]T, len(found))
	for i := range found {
		byID[key(&found[i])] = found[i]
	}
	out := make([]T, 0, len(found))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *Repository[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// InsertIfAbsent inserts doc unless it collides with a unique key, and
// reports whether the row was written.
func (r *Repository[T]) InsertIfAbsent(ctx context.Context, doc *T) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(doc)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update writes every column of doc. References are never written through.
func (r *Repository[T]) Update(ctx context.Context, doc *T) (*T, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateColumns writes only the given columns of the row with that id.
func (r *Repository[T]) UpdateColumns(ctx context.Context, id string, columns map[string]any) error {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every row matching filter, reporting ErrNotFound when
// nothing matched.
func (r *Repository[T]) DeleteWhere(ctx context.Context, filter Filter) error {
	res := r.db.WithContext(ctx).Where(map[string]any(filter)).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
