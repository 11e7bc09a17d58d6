// Package schema declares the relational tables of the trial database in the
// form ent's migration engine consumes.
package schema

import "entgo.io/ent/dialect/sql/schema"

// Tables holds all the tables in the schema, parents first.
var Tables = []*schema.Table{
	PatientsTable,
	DailyRecordsTable,
}

func init() {
	DailyRecordsTable.ForeignKeys[0].RefTable = PatientsTable
}
