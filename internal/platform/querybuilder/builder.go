package querybuilder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SelectBuilder renders postgres-style SELECT statements.
type SelectBuilder struct {
	columns []string
	table   string
	where   []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// WhereNull adds "<column> IS NULL" predicates joined with AND.
func (b *SelectBuilder) WhereNull(columns ...string) *SelectBuilder {
	for _, c := range columns {
		b.where = append(b.where, c+" IS NULL")
	}
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)
	if len(b.where) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), nil, nil
}

// InsertModel renders a single-row INSERT from the `db` tags of a struct.
// Fields tagged `db:"-"` or without a tag are skipped.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}

	cols, vals, err := columnsAndValues(model)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(cols, ", "))
	buf.WriteString(") VALUES (")
	buf.WriteString(strings.Join(placeholders, ", "))
	buf.WriteString(")")
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(suffix)
	}

	return buf.String(), vals, nil
}

// Columns lists the `db` column names of a struct type, in field order.
func Columns(model any) ([]string, error) {
	cols, _, err := columnsAndValues(model)
	return cols, err
}

func columnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
