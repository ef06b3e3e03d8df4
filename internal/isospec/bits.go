package isospec

// BitIsSet reports whether bit k of mask is set, bit 0 being the LSB
func BitIsSet(mask uint64, k uint) bool {
	return mask&(1<<k) != 0
}

// SetBit returns mask with bit k set
func SetBit(mask uint64, k uint) uint64 {
	return mask | 1<<k
}

// ClearBit returns mask with bit k cleared
func ClearBit(mask uint64, k uint) uint64 {
	return mask &^ (1 << k)
}
