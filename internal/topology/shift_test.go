// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexShift(t *testing.T) {
	tests := []struct {
		count    uint32
		expected uint32
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{16, 4},
		{17, 5},
		{256, 8},
		{257, 9},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, IndexShift(test.count), "count %d", test.count)
	}
}

func TestIndexShiftIsSmallestSufficientWidth(t *testing.T) {
	for count := uint32(1); count <= 4096; count++ {
		shift := IndexShift(count)
		assert.GreaterOrEqual(t, uint32(1)<<shift, count, "count %d", count)
		if shift > 0 {
			assert.Less(t, uint32(1)<<(shift-1), count, "count %d", count)
		}
	}
}
