package starfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteFile writes f to path, replacing any existing file.
func WriteFile(path string, f *File) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(fh, f); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Write serialises f. Loop columns are numbered the way RELION writes them. A value that
// cannot be quoted fails the write with ErrUnquotable.
func Write(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)
	for _, b := range f.Blocks {
		fmt.Fprintf(bw, "\ndata_%s\n\n", b.Name)
		if !b.Loop {
			for i, c := range b.Columns {
				v := ""
				if len(b.Rows) > 0 {
					v = b.Rows[0][i]
				}
				q, err := quote(v)
				if err != nil {
					return fmt.Errorf("block %s: column %s: %w", b.Name, c, err)
				}
				fmt.Fprintf(bw, "_%s %s\n", c, q)
			}
			continue
		}
		bw.WriteString("loop_\n")
		for i, c := range b.Columns {
			fmt.Fprintf(bw, "_%s #%d\n", c, i+1)
		}
		for _, row := range b.Rows {
			for i, v := range row {
				if i > 0 {
					bw.WriteByte('\t')
				}
				q, err := quote(v)
				if err != nil {
					return fmt.Errorf("block %s: column %s: %w", b.Name, b.Columns[i], err)
				}
				bw.WriteString(q)
			}
			bw.WriteByte('\n')
		}
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// FormatFloat renders v with six decimals, the precision RELION uses for coordinates and
// angles.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
