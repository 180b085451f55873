// Package mrc reads the header of MRC2014 density maps. Only the fields needed to place a
// volume in voxel space are decoded; voxel data is never read.
package mrc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the length of the fixed MRC header in bytes.
const HeaderSize = 1024

var (
	// ErrShortHeader is returned when fewer than HeaderSize bytes are available.
	ErrShortHeader = errors.New("mrc: short header")
	// ErrInvalidDimensions is returned for a non-positive nx, ny or nz.
	ErrInvalidDimensions = errors.New("mrc: invalid dimensions")
)

// Header holds the decoded header fields.
type Header struct {
	NX, NY, NZ int
	Mode       int32
	MX, MY, MZ int

	// Cell is the unit cell size in Ångström.
	Cell [3]float32

	// MapC, MapR and MapS give the axis (1=x, 2=y, 3=z) of columns, rows and sections.
	MapC, MapR, MapS int

	Origin    [3]float32
	ByteOrder binary.ByteOrder
}

// raw mirrors the first 216 bytes of the header.
type raw struct {
	N         [3]int32
	Mode      int32
	NStart    [3]int32
	M         [3]int32
	Cell      [3]float32
	CellB     [3]float32
	Map       [3]int32
	DMin      float32
	DMax      float32
	DMean     float32
	ISPG      int32
	NSymBT    int32
	Extra     [100]byte
	Origin    [3]float32
	MapID     [4]byte
	MachStamp [4]byte
}

// ReadHeaderFile reads the header of the map at path.
func ReadHeaderFile(path string) (Header, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer fh.Close()
	h, err := ReadHeader(fh)
	if err != nil {
		return Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ReadHeader decodes an MRC header. The byte order comes from the machine stamp; files
// without a recognisable stamp are read little endian.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrShortHeader
		}
		return Header{}, err
	}

	order := byteOrder(buf[212:216])
	var h raw
	if err := binary.Read(bytes.NewReader(buf), order, &h); err != nil {
		return Header{}, err
	}

	out := Header{
		NX:        int(h.N[0]),
		NY:        int(h.N[1]),
		NZ:        int(h.N[2]),
		Mode:      h.Mode,
		MX:        int(h.M[0]),
		MY:        int(h.M[1]),
		MZ:        int(h.M[2]),
		Cell:      h.Cell,
		MapC:      int(h.Map[0]),
		MapR:      int(h.Map[1]),
		MapS:      int(h.Map[2]),
		Origin:    h.Origin,
		ByteOrder: order,
	}
	if out.NX <= 0 || out.NY <= 0 || out.NZ <= 0 {
		return Header{}, fmt.Errorf("%w: %d x %d x %d", ErrInvalidDimensions, out.NX, out.NY, out.NZ)
	}
	return out, nil
}

func byteOrder(stamp []byte) binary.ByteOrder {
	if stamp[0] == 0x11 && stamp[1] == 0x11 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Shape returns the map extent along x, y and z. Columns, rows and sections are placed on
// the axes named by MapC, MapR and MapS; an invalid mapping is treated as the standard one.
func (h Header) Shape() [3]int {
	var shape [3]int
	axes := [3]int{h.MapC, h.MapR, h.MapS}
	dims := [3]int{h.NX, h.NY, h.NZ}
	if !isPermutation(axes) {
		return dims
	}
	for i, a := range axes {
		shape[a-1] = dims[i]
	}
	return shape
}

// VoxelSize returns the pixel spacing along x, y and z in Ångström, or zero where the
// sampling is unset.
func (h Header) VoxelSize() [3]float64 {
	var out [3]float64
	for i, m := range [3]int{h.MX, h.MY, h.MZ} {
		if m > 0 {
			out[i] = float64(h.Cell[i]) / float64(m)
		}
	}
	return out
}

func isPermutation(a [3]int) bool {
	var seen [4]bool
	for _, v := range a {
		if v < 1 || v > 3 || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
