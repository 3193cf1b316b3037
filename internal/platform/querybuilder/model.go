package querybuilder

import (
	"errors"
	"reflect"
	"slices"
	"strings"
)

// UpsertModel builds a single-row INSERT from the model's db tags. Every
// column outside conflictCols is overwritten when the conflict target matches.
func UpsertModel(table string, model any, conflictCols []string, suffix string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	updateCols := slices.DeleteFunc(slices.Clone(cols), func(c string) bool {
		return slices.Contains(conflictCols, c)
	})

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		OnConflictUpdate(conflictCols, updateCols...).
		Suffix(suffix).
		ToSQL()
}

// modelColumns walks the exported fields of a struct (or pointer to one) and
// returns the db tag names with their values, in declaration order.
func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("model: nil pointer")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, errors.New("model: not a struct")
	}

	var (
		cols []string
		vals []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || len(field.Index) != 1 {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.Field(field.Index[0]).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("model: no db columns")
	}
	return cols, vals, nil
}
