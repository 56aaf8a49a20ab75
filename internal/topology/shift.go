// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"math/bits"
)

// IndexShift returns the number of low APIC ID bits needed to index count
// distinct values, i.e. the smallest s with 1<<s >= count. Counts reported
// by CPUID are maximums of addressable IDs, so the result rounds up to the
// next power-of-two boundary inclusive of count itself.
//
// count must be at least 1.
func IndexShift(count uint32) uint32 {
	// The highest set bit of 2*count-1 is the bit position above count-1,
	// which is exactly the rounded-up index width.
	return uint32(bits.Len32(2*count-1)) - 1
}
