package starfile

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ReadFile parses the STAR file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh)
}

// Read parses a STAR document.
func Read(r io.Reader) (*File, error) {
	p := &parser{file: &File{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p.file, nil
}

type parser struct {
	file  *File
	block *Block
	// inHeader is set between loop_ and the first data row.
	inHeader bool
	line     int
}

func (p *parser) fail(msg string) error {
	return &ParseError{Line: p.line, Msg: msg}
}

func (p *parser) parseLine(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "#") {
		return nil
	}

	switch {
	case strings.HasPrefix(s, "data_"):
		p.block = &Block{Name: strings.TrimPrefix(strings.Fields(s)[0], "data_")}
		p.file.Add(p.block)
		p.inHeader = false
		return nil

	case s == "loop_":
		if p.block == nil {
			return p.fail("loop_ outside a data block")
		}
		if len(p.block.Columns) > 0 {
			return p.fail("second loop_ in block data_" + p.block.Name)
		}
		p.block.Loop = true
		p.inHeader = true
		return nil
	}

	if p.block == nil {
		return p.fail("content before the first data block")
	}

	if strings.HasPrefix(s, "_") {
		fields, err := tokenize(s)
		if err != nil {
			return p.fail(err.Error())
		}
		name := strings.TrimPrefix(fields[0], "_")
		if p.block.Has(name) {
			return p.fail("duplicate column " + name)
		}
		if p.block.Loop {
			if !p.inHeader {
				return p.fail("column " + name + " after loop data")
			}
			p.block.addColumn(name)
			return nil
		}
		if len(fields) < 2 {
			return p.fail("missing value for " + name)
		}
		p.block.addColumn(name)
		if len(p.block.Rows) == 0 {
			p.block.Rows = append(p.block.Rows, nil)
		}
		p.block.Rows[0] = append(p.block.Rows[0], fields[1])
		return nil
	}

	if !p.block.Loop {
		return p.fail("unexpected data outside a loop")
	}
	p.inHeader = false
	fields, err := tokenize(s)
	if err != nil {
		return p.fail(err.Error())
	}
	if len(fields) != len(p.block.Columns) {
		return p.fail("row has " + itoa(len(fields)) + " values, want " + itoa(len(p.block.Columns)))
	}
	p.block.Rows = append(p.block.Rows, fields)
	return nil
}
