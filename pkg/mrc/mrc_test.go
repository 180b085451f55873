package mrc_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/subboxer/pkg/mrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fields struct {
	n     [3]int32
	m     [3]int32
	cell  [3]float32
	axes  [3]int32
	order binary.ByteOrder
}

func header(t *testing.T, f fields) []byte {
	t.Helper()
	buf := make([]byte, mrc.HeaderSize)
	put := func(off int, v any) {
		var b bytes.Buffer
		require.NoError(t, binary.Write(&b, f.order, v))
		copy(buf[off:], b.Bytes())
	}
	put(0, f.n)
	put(12, int32(2))
	put(28, f.m)
	put(40, f.cell)
	put(64, f.axes)
	copy(buf[208:], "MAP ")
	if f.order == binary.BigEndian {
		copy(buf[212:], []byte{0x11, 0x11, 0, 0})
	} else {
		copy(buf[212:], []byte{0x44, 0x44, 0, 0})
	}
	return buf
}

func TestReadHeader(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			raw := header(t, fields{
				n:     [3]int32{64, 48, 32},
				m:     [3]int32{64, 48, 32},
				cell:  [3]float32{160, 120, 80},
				axes:  [3]int32{1, 2, 3},
				order: order,
			})
			h, err := mrc.ReadHeader(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, [3]int{64, 48, 32}, h.Shape())
			assert.Equal(t, int32(2), h.Mode)
			assert.Equal(t, [3]float64{2.5, 2.5, 2.5}, h.VoxelSize())
			assert.Equal(t, order, h.ByteOrder)
		})
	}
}

func TestHeader_ShapeAxisMapping(t *testing.T) {
	raw := header(t, fields{
		n:     [3]int32{10, 20, 30},
		axes:  [3]int32{3, 1, 2},
		order: binary.LittleEndian,
	})
	h, err := mrc.ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	// Columns run along z, rows along x, sections along y.
	assert.Equal(t, [3]int{20, 30, 10}, h.Shape())
	assert.Equal(t, [3]float64{}, h.VoxelSize())

	h.MapC, h.MapR, h.MapS = 1, 1, 3
	assert.Equal(t, [3]int{10, 20, 30}, h.Shape())
}

func TestReadHeader_Errors(t *testing.T) {
	_, err := mrc.ReadHeader(bytes.NewReader(make([]byte, 100)))
	assert.ErrorIs(t, err, mrc.ErrShortHeader)

	_, err = mrc.ReadHeader(bytes.NewReader(header(t, fields{n: [3]int32{0, 4, 4}, order: binary.LittleEndian})))
	assert.ErrorIs(t, err, mrc.ErrInvalidDimensions)
}

func TestReadHeaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.mrc")
	raw := header(t, fields{n: [3]int32{8, 8, 8}, axes: [3]int32{1, 2, 3}, order: binary.LittleEndian})
	require.NoError(t, os.WriteFile(path, append(raw, make([]byte, 8*8*8*4)...), 0o644))

	h, err := mrc.ReadHeaderFile(path)
	require.NoError(t, err)
	assert.Equal(t, [3]int{8, 8, 8}, h.Shape())

	_, err = mrc.ReadHeaderFile(filepath.Join(t.TempDir(), "missing.mrc"))
	assert.Error(t, err)
}
