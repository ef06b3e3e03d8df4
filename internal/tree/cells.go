package tree

import "encoding/binary"

// CellsToUint64 decodes a run of 32-bit device-tree cells as one big-endian
// integer. With address_cells=2 the first two cells of a reg value form the
// start address and the remaining cells the size.
func CellsToUint64(cells []int64) uint64 {
	buf := make([]byte, 0, len(cells)*4)
	for _, c := range cells {
		buf = binary.BigEndian.AppendUint32(buf, uint32(c))
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v
}
