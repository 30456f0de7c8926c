package table

import (
	"fmt"
	"reflect"
	"sort"
)

// Fields maps column names to the values bound for them.
type Fields map[string]any

// Columns returns the field names in sorted order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Without returns a copy of f lacking the given columns.
func (f Fields) Without(cols ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, c := range cols {
		delete(out, c)
	}
	return out
}

// Bind collects the db-tagged fields of a struct (or pointer to struct) into
// Fields. Nil pointer fields are skipped and non-nil ones are dereferenced,
// so a params struct with optional members yields only what was set.
func Bind(v any) (Fields, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("bind: nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind: expected struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	out := make(Fields, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		col := sf.Tag.Get("db")
		if col == "" || col == "-" {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		out[col] = fv.Interface()
	}
	return out, nil
}
