package table

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies the value class held by a Cell.
type Kind int

const (
	KindMissing Kind = iota
	KindFloat
	KindString
	KindBool
)

// Cell is a single table entry. The zero value is a missing cell.
type Cell struct {
	Kind  Kind
	Float float64
	Str   string
	Bool  bool
}

func Float(v float64) Cell { return Cell{Kind: KindFloat, Float: v} }
func Str(s string) Cell    { return Cell{Kind: KindString, Str: s} }
func Bool(b bool) Cell     { return Cell{Kind: KindBool, Bool: b} }
func Missing() Cell        { return Cell{Kind: KindMissing} }

// IsMissing reports whether the cell carries no usable value. Float NaNs
// count as missing.
func (c Cell) IsMissing() bool {
	if c.Kind == KindMissing {
		return true
	}
	return c.Kind == KindFloat && math.IsNaN(c.Float)
}

// IsNumeric reports whether the cell coerces to a float64. Booleans coerce
// to 0/1.
func (c Cell) IsNumeric() bool {
	switch c.Kind {
	case KindFloat:
		return !math.IsNaN(c.Float)
	case KindBool:
		return true
	default:
		return false
	}
}

// AsFloat returns the numeric value of the cell.
func (c Cell) AsFloat() (float64, bool) {
	switch c.Kind {
	case KindFloat:
		if math.IsNaN(c.Float) {
			return 0, false
		}
		return c.Float, true
	case KindBool:
		if c.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func (c Cell) equal(other Cell) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindFloat:
		if math.IsNaN(c.Float) && math.IsNaN(other.Float) {
			return true
		}
		return c.Float == other.Float
	case KindString:
		return c.Str == other.Str
	case KindBool:
		return c.Bool == other.Bool
	default:
		return true
	}
}

// Table is a column-ordered in-memory table. Columns keep their insertion
// order; all columns have the same length. Zero-row tables are valid.
type Table struct {
	names []string
	cols  map[string][]Cell
	rows  int
}

func New(names ...string) *Table {
	t := &Table{
		names: append([]string(nil), names...),
		cols:  make(map[string][]Cell, len(names)),
	}
	for _, name := range t.names {
		t.cols[name] = nil
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the cells of a column. The returned slice is shared with
// the table and must not be mutated by callers.
func (t *Table) Column(name string) ([]Cell, bool) {
	cells, ok := t.cols[name]
	return cells, ok
}

// AddColumn appends a new column filled with the given cell.
func (t *Table) AddColumn(name string, fill Cell) error {
	if _, exists := t.cols[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	cells := make([]Cell, t.rows)
	for i := range cells {
		cells[i] = fill
	}
	t.names = append(t.names, name)
	t.cols[name] = cells
	return nil
}

// SetColumn replaces every cell of an existing column with the given cell.
func (t *Table) SetColumn(name string, fill Cell) error {
	cells, ok := t.cols[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for i := range cells {
		cells[i] = fill
	}
	return nil
}

// AppendRow adds one row from a column-name-to-cell map. Columns absent from
// the map receive missing cells; unknown keys are an error.
func (t *Table) AppendRow(values map[string]Cell) error {
	for key := range values {
		if _, ok := t.cols[key]; !ok {
			return fmt.Errorf("column %q not found", key)
		}
	}
	for _, name := range t.names {
		cell, ok := values[name]
		if !ok {
			cell = Missing()
		}
		t.cols[name] = append(t.cols[name], cell)
	}
	t.rows++
	return nil
}

// Row returns one row as a column-name-to-cell map.
func (t *Table) Row(i int) (map[string]Cell, error) {
	if i < 0 || i >= t.rows {
		return nil, fmt.Errorf("row index %d out of range (rows=%d)", i, t.rows)
	}
	row := make(map[string]Cell, len(t.names))
	for _, name := range t.names {
		row[name] = t.cols[name][i]
	}
	return row, nil
}

// Cell returns a single entry by column name and row index.
func (t *Table) Cell(name string, i int) (Cell, error) {
	cells, ok := t.cols[name]
	if !ok {
		return Cell{}, fmt.Errorf("column %q not found", name)
	}
	if i < 0 || i >= len(cells) {
		return Cell{}, fmt.Errorf("row index %d out of range (rows=%d)", i, t.rows)
	}
	return cells[i], nil
}

// Set overwrites a single entry.
func (t *Table) Set(name string, i int, cell Cell) error {
	cells, ok := t.cols[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if i < 0 || i >= len(cells) {
		return fmt.Errorf("row index %d out of range (rows=%d)", i, t.rows)
	}
	cells[i] = cell
	return nil
}

// Append concatenates the rows of other onto t, order-preserving. The column
// sets must match exactly.
func (t *Table) Append(other *Table) error {
	if other == nil {
		return nil
	}
	if len(t.names) != len(other.names) {
		return fmt.Errorf("column mismatch: have %d columns, appending %d", len(t.names), len(other.names))
	}
	for _, name := range t.names {
		if !other.HasColumn(name) {
			return fmt.Errorf("column %q missing from appended table", name)
		}
	}
	for _, name := range t.names {
		t.cols[name] = append(t.cols[name], other.cols[name]...)
	}
	t.rows += other.rows
	return nil
}

// Copy returns a deep copy.
func (t *Table) Copy() *Table {
	if t == nil {
		return nil
	}
	out := New(t.names...)
	for _, name := range t.names {
		out.cols[name] = append([]Cell(nil), t.cols[name]...)
	}
	out.rows = t.rows
	return out
}

// Select returns a new table holding the given rows, in order.
func (t *Table) Select(indices []int) (*Table, error) {
	out := New(t.names...)
	for _, i := range indices {
		if i < 0 || i >= t.rows {
			return nil, fmt.Errorf("row index %d out of range (rows=%d)", i, t.rows)
		}
		for _, name := range t.names {
			out.cols[name] = append(out.cols[name], t.cols[name][i])
		}
		out.rows++
	}
	return out, nil
}

// Equal reports whether two tables have identical column order, length and
// cell contents.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t.Len() == 0 && other.Len() == 0
	}
	if t.rows != other.rows || len(t.names) != len(other.names) {
		return false
	}
	for i, name := range t.names {
		if other.names[i] != name {
			return false
		}
		a := t.cols[name]
		b := other.cols[name]
		for j := range a {
			if !a[j].equal(b[j]) {
				return false
			}
		}
	}
	return true
}

// ColumnHasMissing reports whether any cell of the column is missing.
func (t *Table) ColumnHasMissing(name string) (bool, error) {
	cells, ok := t.cols[name]
	if !ok {
		return false, fmt.Errorf("column %q not found", name)
	}
	for _, c := range cells {
		if c.IsMissing() {
			return true, nil
		}
	}
	return false, nil
}

// ColumnNumeric reports whether every cell of the column is numeric.
func (t *Table) ColumnNumeric(name string) (bool, error) {
	cells, ok := t.cols[name]
	if !ok {
		return false, fmt.Errorf("column %q not found", name)
	}
	for _, c := range cells {
		if !c.IsNumeric() {
			return false, nil
		}
	}
	return true, nil
}

// Floats extracts a column as float64 values, failing on the first
// non-numeric cell.
func (t *Table) Floats(name string) ([]float64, error) {
	cells, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, ok := c.AsFloat()
		if !ok {
			return nil, fmt.Errorf("column %q row %d is not numeric", name, i)
		}
		out[i] = v
	}
	return out, nil
}

// Matrix converts the table to a row-major float64 matrix across all
// columns, failing on the first non-numeric cell.
func (t *Table) Matrix() ([][]float64, error) {
	out := make([][]float64, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make([]float64, len(t.names))
		for j, name := range t.names {
			v, ok := t.cols[name][i].AsFloat()
			if !ok {
				return nil, fmt.Errorf("column %q row %d is not numeric", name, i)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// SortedColumns returns the column names in lexical order. Useful for
// deterministic dumps.
func (t *Table) SortedColumns() []string {
	names := t.Columns()
	sort.Strings(names)
	return names
}
