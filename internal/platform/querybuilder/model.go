package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an insert statement from a struct's `db` tags. Fields
// tagged `db:"-"` or without a tag are skipped. The suffix, typically an ON
// CONFLICT clause, is appended verbatim.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := columnsAndValuesFromModel(model)
	if err != nil {
		return "", nil, err
	}
	builder := InsertInto(table).Columns(columns...).Values(values...)
	if suffix != "" {
		builder.Suffix(suffix)
	}
	return builder.ToSQL()
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model must not be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	modelType := value.Type()
	columns := make([]string, 0, modelType.NumField())
	values := make([]any, 0, modelType.NumField())
	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		column := strings.Split(tag, ",")[0]
		if column == "" {
			continue
		}
		columns = append(columns, column)
		values = append(values, value.Field(i).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model has no db-tagged fields")
	}
	return columns, values, nil
}
