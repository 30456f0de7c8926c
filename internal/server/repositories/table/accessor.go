// Package table implements a generic data accessor bound to one relation.
// Values are always bound positionally; only identifiers taken from the
// fixed Schema reach the query text.
package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/dbx"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes the relation an Accessor works with.
type Schema[T any] struct {
	Table  string
	Entity string // used in user-facing messages, e.g. "User"
	Key    string

	// Columns is the allowlist of writable columns.
	Columns []string
	// Immutable columns are silently dropped from updates.
	Immutable []string
	// Unique names a column checked for duplicates before insert and update.
	Unique string
	// UpdatedAt is set to NOW() on every update when non-empty.
	UpdatedAt string

	// Projection is the column list returned by every read; Scan must
	// consume it in the same order.
	Projection []string
	Scan       func(Scanner) (*T, error)
}

type Accessor[T any] struct {
	db     dbx.DBTX
	schema Schema[T]
}

func New[T any](db dbx.DBTX, schema Schema[T]) *Accessor[T] {
	return &Accessor[T]{db: db, schema: schema}
}

// Create inserts a row and returns it. A row already holding the same
// Unique value yields a Conflict error.
func (a *Accessor[T]) Create(ctx context.Context, fields Fields) (*T, error) {
	if len(fields) == 0 {
		return nil, common.NewError(common.ErrorBadRequest, "No fields to insert")
	}
	if err := a.checkColumns(fields, a.schema.Columns); err != nil {
		return nil, err
	}

	s := a.schema
	if s.Unique != "" {
		if v, ok := fields[s.Unique]; ok {
			_, found, err := a.FindOne(ctx, Fields{s.Unique: v})
			if err != nil {
				return nil, err
			}
			if found {
				return nil, a.conflict(v)
			}
		}
	}

	cols := fields.Columns()
	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
		marks[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.Table, strings.Join(cols, ", "), strings.Join(marks, ", "), a.projection())

	item, err := s.Scan(a.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if dbx.IsUniqueViolation(err) && s.Unique != "" {
			return nil, a.conflict(fields[s.Unique])
		}
		return nil, dbError(err)
	}
	return item, nil
}

// FindMany returns rows matching every filter column by equality, newest
// first. An empty filter matches all rows.
func (a *Accessor[T]) FindMany(ctx context.Context, filter Fields) ([]*T, error) {
	return a.find(ctx, filter, 0)
}

// FindOne returns the first row FindMany would return. The bool is false
// when nothing matched.
func (a *Accessor[T]) FindOne(ctx context.Context, filter Fields) (*T, bool, error) {
	items, err := a.find(ctx, filter, 1)
	if err != nil {
		return nil, false, err
	}
	if len(items) == 0 {
		return nil, false, nil
	}
	return items[0], true, nil
}

// UpdateByID sets the given columns on the row with the key id and returns
// the updated row. Immutable columns are dropped first. Moving the Unique
// value onto one another row already holds yields a Conflict error.
func (a *Accessor[T]) UpdateByID(ctx context.Context, data Fields, id int64) (*T, error) {
	s := a.schema
	data = data.Without(s.Immutable...)
	if err := a.checkColumns(data, a.schema.Columns); err != nil {
		return nil, err
	}

	if s.Unique != "" {
		if v, ok := data[s.Unique]; ok {
			taken, err := a.takenByOther(ctx, v, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, a.conflict(v)
			}
		}
	}

	cols := data.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
		args = append(args, data[c])
	}
	if s.UpdatedAt != "" {
		sets = append(sets, s.UpdatedAt+" = NOW()")
	}
	if len(sets) == 0 {
		item, found, err := a.FindOne(ctx, Fields{s.Key: id})
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, a.notFound(id)
		}
		return item, nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		s.Table, strings.Join(sets, ", "), s.Key, len(args), a.projection())

	item, err := s.Scan(a.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, a.notFound(id)
		}
		if dbx.IsUniqueViolation(err) && s.Unique != "" {
			return nil, a.conflict(data[s.Unique])
		}
		return nil, dbError(err)
	}
	return item, nil
}

// DeleteByID removes the row with the key id and returns it as it was.
func (a *Accessor[T]) DeleteByID(ctx context.Context, id int64) (*T, error) {
	s := a.schema
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 RETURNING %s", s.Table, s.Key, a.projection())

	item, err := s.Scan(a.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, a.notFound(id)
		}
		return nil, dbError(err)
	}
	return item, nil
}

// takenByOther reports whether a row other than id holds v in the Unique column.
func (a *Accessor[T]) takenByOther(ctx context.Context, v any, id int64) (bool, error) {
	s := a.schema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s <> $2 LIMIT 1", s.Key, s.Table, s.Unique, s.Key)

	var other int64
	if err := a.db.QueryRowContext(ctx, query, v, id).Scan(&other); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, dbError(err)
	}
	return true, nil
}

func (a *Accessor[T]) find(ctx context.Context, filter Fields, limit int) ([]*T, error) {
	s := a.schema
	if err := a.checkColumns(filter, append([]string{s.Key}, s.Columns...)); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", a.projection(), s.Table)

	cols := filter.Columns()
	args := make([]any, len(cols))
	for i, c := range cols {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = $%d", c, i+1)
		args[i] = filter[c]
	}
	fmt.Fprintf(&b, " ORDER BY %s DESC", s.Key)
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	rows, err := a.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := s.Scan(rows)
		if err != nil {
			return nil, dbError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return items, nil
}

func (a *Accessor[T]) checkColumns(fields Fields, allowed []string) error {
	for _, c := range fields.Columns() {
		if !slices.Contains(allowed, c) {
			return common.NewError(common.ErrorBadRequest, "Unknown column: %s", c)
		}
	}
	return nil
}

func (a *Accessor[T]) projection() string {
	return strings.Join(a.schema.Projection, ", ")
}

func (a *Accessor[T]) conflict(v any) error {
	return common.NewError(common.ErrorConflict, "%s with %s: %v already exists", a.schema.Entity, a.schema.Unique, v)
}

func (a *Accessor[T]) notFound(id int64) error {
	return common.NewError(common.ErrorNotFound, "%s with ID: %d not found", a.schema.Entity, id)
}

func dbError(err error) error {
	return common.Wrap(common.ErrorInternal, fmt.Errorf("db error: %w", err), "Something went wrong")
}
