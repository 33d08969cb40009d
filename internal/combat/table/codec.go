package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrCorruptTableData indicates an encoded table whose header or payload
// does not describe a well-formed table.
var ErrCorruptTableData = errors.New("encoded table data is corrupt")

// ErrUnsupportedTableVersion indicates an encoded table written by an
// unknown format version.
var ErrUnsupportedTableVersion = errors.New("encoded table version is not supported")

// codecVersion tags the on-disk format so future rule changes cannot be
// silently misread as current tables.
const codecVersion uint16 = 1

var codecMagic = [4]byte{'C', 'Q', 'P', 'T'}

const headerSize = 4 + 2 + 4 + 4

// Encode serializes a table to its versioned binary form: magic,
// format version, both bounds, then the cells row-major as
// little-endian float64 bits.
func Encode(t *Table) ([]byte, error) {
	if t == nil {
		return nil, errors.New("table is required")
	}

	encoded := make([]byte, headerSize+8*len(t.cells))
	copy(encoded[0:4], codecMagic[:])
	binary.LittleEndian.PutUint16(encoded[4:6], codecVersion)
	binary.LittleEndian.PutUint32(encoded[6:10], uint32(t.maxAttack))
	binary.LittleEndian.PutUint32(encoded[10:14], uint32(t.maxDefend))
	for i, value := range t.cells {
		binary.LittleEndian.PutUint64(encoded[headerSize+8*i:], math.Float64bits(value))
	}
	return encoded, nil
}

// Decode reverses Encode. Every cell and both bounds round-trip
// exactly.
func Decode(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptTableData, len(data))
	}
	if [4]byte(data[0:4]) != codecMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptTableData)
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != codecVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedTableVersion, version)
	}

	maxAttack := int(binary.LittleEndian.Uint32(data[6:10]))
	maxDefend := int(binary.LittleEndian.Uint32(data[10:14]))
	wantBytes := int64(maxAttack+1) * int64(maxDefend+1) * 8
	if wantBytes != int64(len(data)-headerSize) {
		return nil, fmt.Errorf("%w: declared %dx%d bounds need %d payload bytes, got %d",
			ErrCorruptTableData, maxAttack, maxDefend, wantBytes, len(data)-headerSize)
	}
	cellCount := (maxAttack + 1) * (maxDefend + 1)

	t := &Table{
		maxAttack: maxAttack,
		maxDefend: maxDefend,
		cells:     make([]float64, cellCount),
	}
	for i := range t.cells {
		t.cells[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[headerSize+8*i:]))
	}
	return t, nil
}
