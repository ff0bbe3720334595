package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// Statement wraps one prepared statement. Parameters are bound in
// declaration order through Bind, which advances a 1-based parameter
// index; the statement is then either executed to completion with
// ExecuteAndReset or stepped lazily through a QueryResult.
//
// A Statement is not safe for concurrent use: binding and stepping both
// mutate shared state (the parameter index, the retained blob cache and
// the step position).
type Statement struct {
	sql  string
	stmt *sql.Stmt

	// next is the 1-based index the next bind applies to.
	next int
	args []any

	// blobs retains copies of bound binary buffers until Reset, so the
	// engine can hold onto the backing memory for the whole execution.
	blobs [][]byte

	// rows is the in-flight result pass, nil when no query is active.
	// Stepping is shared statement state: every cursor derived from this
	// statement advances the same pass.
	rows    *sql.Rows
	types   []ColumnType
	current Row
}

// prepare compiles query against db.
func prepare(db *sql.DB, query string) (*Statement, error) {
	stmt, err := db.Prepare(query)
	if err != nil {
		return nil, &PrepareError{SQL: query, Err: err}
	}
	return &Statement{sql: query, stmt: stmt, next: 1}, nil
}

// SQL returns the statement's SQL text.
func (s *Statement) SQL() string { return s.sql }

// ParameterIndex returns the 1-based index the next bind applies to.
// After N successful binds on a fresh or reset statement it equals N+1.
func (s *Statement) ParameterIndex() int { return s.next }

// Bind binds each value in order at the current parameter index,
// advancing the index by one per value. Supported value types are
// int/int32 (32-bit integer), int64 and time.Time (64-bit nanosecond
// time value), float64, string and []byte; byte slices are copied into
// the statement's blob cache so the backing memory outlives the call.
//
// Bind returns the statement so calls can be chained. If the k-th value
// is rejected, binds 1..k-1 stay applied and the index stays advanced
// past them; callers wanting a clean sequence must Reset first.
func (s *Statement) Bind(values ...any) (*Statement, error) {
	for _, value := range values {
		if err := s.bindOne(value); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s *Statement) bindOne(value any) error {
	var arg any
	switch v := value.(type) {
	case int:
		arg = int64(v)
	case int32:
		arg = int64(v)
	case int64:
		arg = v
	case time.Time:
		arg = v.UnixNano()
	case float64:
		arg = v
	case string:
		arg = v
	case []byte:
		owned := make([]byte, len(v))
		copy(owned, v)
		s.blobs = append(s.blobs, owned)
		arg = owned
	default:
		return &BindError{
			Index: s.next,
			Value: fmt.Sprintf("%v", value),
			Err:   fmt.Errorf("unsupported parameter type %T", value),
		}
	}

	s.args = append(s.args, arg)
	s.next++
	return nil
}

// Reset returns the statement to its pre-execution state: the in-flight
// result pass is closed, bound parameters and the blob cache are cleared
// and the parameter index is back at 1. Reset is safe to call whether or
// not the previous execution ran to completion.
func (s *Statement) Reset() error {
	var err error
	if s.rows != nil {
		err = s.rows.Close()
		s.rows = nil
	}
	s.args = nil
	s.blobs = nil
	s.types = nil
	s.current = nil
	s.next = 1
	if err != nil {
		return fmt.Errorf("failed to reset statement: %w", err)
	}
	return nil
}

// ExecuteAndReset runs the statement to completion with the currently
// bound parameters, discarding any result rows, and then resets it.
// Intended for statements without row output (INSERT, UPDATE, DELETE).
// The reset happens on the failure path too: after an engine error the
// bound parameters and the index are already cleared, so recovery is
// re-binding from index 1, not inspecting the failed sequence.
func (s *Statement) ExecuteAndReset() (*Statement, error) {
	_, err := s.stmt.Exec(s.args...)
	if err != nil {
		_ = s.Reset()
		return s, &StepError{Err: err}
	}
	if err := s.Reset(); err != nil {
		return s, err
	}
	return s, nil
}

// Query starts a lazily stepped result pass whose columns are extracted
// as the given types, in column order. The pass is shared statement
// state: calling Query again while a pass is active does not restart
// iteration, it continues from the current step position.
func (s *Statement) Query(types ...ColumnType) (*QueryResult, error) {
	if s.rows == nil {
		rows, err := s.stmt.Query(s.args...)
		if err != nil {
			return nil, &StepError{Err: err}
		}
		s.rows = rows
		s.types = types
	}
	return &QueryResult{stmt: s}, nil
}

// step advances the result pass by one row. It reports true when a new
// row was materialized into s.current and false when the pass is
// exhausted. Any engine failure surfaces as a StepError.
func (s *Statement) step() (bool, error) {
	if s.rows == nil {
		return false, &StepError{Err: fmt.Errorf("no active query for statement %q", s.sql)}
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return false, &StepError{Err: err}
		}
		s.current = nil
		return false, nil
	}
	row, err := scanRow(s.rows, s.types)
	if err != nil {
		return false, &StepError{Err: err}
	}
	s.current = row
	return true, nil
}

// Close finalizes the prepared statement.
func (s *Statement) Close() error {
	if err := s.Reset(); err != nil {
		return err
	}
	if err := s.stmt.Close(); err != nil {
		return fmt.Errorf("failed to close statement %q: %w", s.sql, err)
	}
	return nil
}
