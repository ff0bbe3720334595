package sqlite

// positionEnd is the canonical cursor position denoting "no more rows".
const positionEnd = -1

// QueryResult is a lazy, forward-only, single-pass view over a
// statement's result rows. It holds the statement alive for as long as
// iteration is in progress; it buffers at most one row at a time.
//
// Because stepping mutates the shared statement, only one cursor over a
// given statement should be advanced at a time. A second Begin on a
// partially consumed result continues from the current step position
// rather than restarting.
type QueryResult struct {
	stmt *Statement
}

// Begin returns a cursor positioned on the first remaining row. The
// first step happens eagerly, so an empty result set yields a cursor
// already equal to End.
func (q *QueryResult) Begin() (*Cursor, error) {
	c := &Cursor{stmt: q.stmt}
	if err := c.Advance(); err != nil {
		return nil, err
	}
	return c, nil
}

// End returns the end sentinel cursor for this result.
func (q *QueryResult) End() *Cursor {
	return &Cursor{stmt: q.stmt, pos: positionEnd}
}

// Cursor points at one row of a query result, or at the end sentinel.
// Its position counts the successful steps taken since the statement's
// pass started and never decreases.
type Cursor struct {
	stmt *Statement
	pos  int
}

// Advance steps the underlying statement. On success the position
// increases by one; on exhaustion the cursor becomes the end sentinel.
// Advancing a cursor already at the end sentinel returns ErrPastEnd.
func (c *Cursor) Advance() error {
	if c.pos == positionEnd {
		return ErrPastEnd
	}
	ok, err := c.stmt.step()
	if err != nil {
		c.pos = positionEnd
		return err
	}
	if ok {
		c.pos++
	} else {
		c.pos = positionEnd
	}
	return nil
}

// Row returns the current row without advancing. Repeated calls at the
// same position return the same values. Row must only be called on a
// cursor that is not equal to the end sentinel.
func (c *Cursor) Row() Row {
	return c.stmt.current
}

// Equal reports whether two cursors reference the same statement at the
// same position. The end sentinel is a single canonical position, so
// "iterate until Equal(End())" terminates correctly.
func (c *Cursor) Equal(other *Cursor) bool {
	return c.stmt == other.stmt && c.pos == other.pos
}
