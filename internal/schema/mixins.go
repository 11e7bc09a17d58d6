package schema

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// timeStampedColumns are appended to every mutable table.
func timeStampedColumns() []*schema.Column {
	return []*schema.Column{
		{Name: ColumnCreatedAt, Type: field.TypeTime},
		{Name: ColumnUpdatedAt, Type: field.TypeTime},
	}
}

// dateType stores a civil date without a time part.
var dateType = map[string]string{"postgres": "date"}
