package starfile

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingColumn is returned when a required column is absent from a block.
var ErrMissingColumn = errors.New("missing column")

// ErrMissingBlock is returned when a named data block is absent.
var ErrMissingBlock = errors.New("missing data block")

// ParseError reports malformed input together with its 1-based line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("star: line %d: %s", e.Line, e.Msg)
}

// Block is one data block.
type Block struct {
	Name    string
	Loop    bool
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewLoop creates an empty loop block with the given columns.
func NewLoop(name string, columns ...string) *Block {
	b := &Block{Name: name, Loop: true}
	for _, c := range columns {
		b.addColumn(c)
	}
	return b
}

func (b *Block) addColumn(name string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	b.index[name] = len(b.Columns)
	b.Columns = append(b.Columns, name)
}

// Append adds a row. It must have one value per column, each of which Write can quote.
func (b *Block) Append(values ...string) error {
	if len(values) != len(b.Columns) {
		return fmt.Errorf("block %s: row has %d values, want %d", b.Name, len(values), len(b.Columns))
	}
	for i, v := range values {
		if _, err := quote(v); err != nil {
			return fmt.Errorf("block %s: column %s: %w", b.Name, b.Columns[i], err)
		}
	}
	b.Rows = append(b.Rows, append([]string(nil), values...))
	return nil
}

// Len returns the number of rows.
func (b *Block) Len() int { return len(b.Rows) }

// Has reports whether the block has column name.
func (b *Block) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Strings returns every value of column name.
func (b *Block) Strings(name string) ([]string, error) {
	col, ok := b.index[name]
	if !ok {
		return nil, fmt.Errorf("block %s: %w %s", b.Name, ErrMissingColumn, name)
	}
	out := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		out[i] = row[col]
	}
	return out, nil
}

// Floats returns every value of column name parsed as float64.
func (b *Block) Floats(name string) ([]float64, error) {
	vals, err := b.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("block %s: column %s row %d: %w", b.Name, name, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// File is a parsed STAR file.
type File struct {
	Blocks []*Block
}

// Block returns the block called name.
func (f *File) Block(name string) (*Block, error) {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: data_%s", ErrMissingBlock, name)
}

// Add appends a block.
func (f *File) Add(b *Block) { f.Blocks = append(f.Blocks, b) }
