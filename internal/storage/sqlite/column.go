package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// ColumnType declares how a result column is extracted. The column types
// of a query are fixed at the call site, in column order, when the query
// is started.
type ColumnType int

const (
	// Int32 extracts a 32-bit integer column.
	Int32 ColumnType = iota

	// Int64 extracts a 64-bit integer column, typically a timestamp in
	// nanoseconds since the Unix epoch.
	Int64

	// Float64 extracts a double-precision float column.
	Float64

	// Text extracts a UTF-8 text column.
	Text

	// Blob extracts a binary column into a caller-owned byte slice.
	Blob
)

func (t ColumnType) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Text:
		return "text"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Row is one materialized result row. Values are converted according to
// the column types declared when the query was started; accessors assume
// the declared type and must only be used at matching indices. The row's
// values are stable until the cursor that produced it advances.
type Row []any

// Int32 returns column i of an Int32-declared column.
func (r Row) Int32(i int) int32 { return r[i].(int32) }

// Int64 returns column i of an Int64-declared column.
func (r Row) Int64(i int) int64 { return r[i].(int64) }

// Time returns column i of an Int64-declared column interpreted as
// nanoseconds since the Unix epoch.
func (r Row) Time(i int) time.Time { return time.Unix(0, r[i].(int64)) }

// Float64 returns column i of a Float64-declared column.
func (r Row) Float64(i int) float64 { return r[i].(float64) }

// Text returns column i of a Text-declared column.
func (r Row) Text(i int) string { return r[i].(string) }

// Blob returns column i of a Blob-declared column. The slice is owned by
// the row and valid independently of the statement.
func (r Row) Blob(i int) []byte { return r[i].([]byte) }

// scanRow reads the current row of rows into a Row, one destination per
// declared column type.
func scanRow(rows *sql.Rows, types []ColumnType) (Row, error) {
	dests := make([]any, len(types))
	for i, t := range types {
		switch t {
		case Int32:
			dests[i] = new(int32)
		case Int64:
			dests[i] = new(int64)
		case Float64:
			dests[i] = new(float64)
		case Text:
			dests[i] = new(string)
		case Blob:
			dests[i] = new([]byte)
		default:
			return nil, fmt.Errorf("unsupported column type %v at column %d", t, i)
		}
	}

	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}

	row := make(Row, len(types))
	for i, t := range types {
		switch t {
		case Int32:
			row[i] = *dests[i].(*int32)
		case Int64:
			row[i] = *dests[i].(*int64)
		case Float64:
			row[i] = *dests[i].(*float64)
		case Text:
			row[i] = *dests[i].(*string)
		case Blob:
			// Scan into *[]byte already allocates a copy owned by us.
			row[i] = *dests[i].(*[]byte)
		}
	}
	return row, nil
}
