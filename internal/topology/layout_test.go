// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLevelLayout is a 2 threads per core, 4 logical processors per package
// hierarchy: bit 0 selects the thread, bits 2:1 select the core.
func twoLevelLayout() Layout {
	layout := Layout{
		ApicIDBits: 32,
		Levels: []Level{
			{Domain: DomainLogicalProcessor, Shift: 1},
			{Domain: DomainCore, Shift: 3},
		},
	}
	layout.BuildMasks()
	return layout
}

func TestBuildMasksValues(t *testing.T) {
	layout := twoLevelLayout()
	require.Len(t, layout.Masks, 3)
	require.Len(t, layout.Masks[0], 3)

	assert.Equal(t, uint32(0xFFFFFFFF), layout.Masks[0][0])
	assert.Equal(t, uint32(0xFFFFFFFE), layout.Masks[1][1])
	assert.Equal(t, uint32(0xFFFFFFF8), layout.Masks[2][2])

	assert.Equal(t, uint32(0x00000001), layout.Masks[0][1])
	assert.Equal(t, uint32(0x00000007), layout.Masks[0][2])
	assert.Equal(t, uint32(0x00000006), layout.Masks[1][2])
}

func TestBuildMasksPartitionTheAddressSpace(t *testing.T) {
	layouts := []Layout{
		twoLevelLayout(),
		{
			ApicIDBits: 32,
			Levels: []Level{
				{Domain: DomainLogicalProcessor, Shift: 2},
				{Domain: DomainCore, Shift: 6},
				{Domain: DomainDie, Shift: 9},
			},
		},
	}
	layouts[1].BuildMasks()

	for _, layout := range layouts {
		packageIndex := layout.PackageIndex()
		// Each level's mask within its immediate parent, plus the
		// package's global mask, must cover every bit exactly once.
		var union uint32
		for i := 0; i < packageIndex; i++ {
			assert.Zero(t, union&layout.Masks[i][i+1], "level %d overlaps", i)
			union |= layout.Masks[i][i+1]
		}
		assert.Zero(t, union&layout.Masks[packageIndex][packageIndex])
		union |= layout.Masks[packageIndex][packageIndex]
		assert.Equal(t, uint32(0xFFFFFFFF), union)

		// A global mask is its level's parent-relative bits plus the
		// parent's global mask: masks relative to a farther ancestor are
		// cumulative, not disjoint.
		for i := 0; i < packageIndex; i++ {
			assert.Equal(t, layout.Masks[i][i], layout.Masks[i][i+1]|layout.Masks[i+1][i+1], "level %d", i)
		}
	}
}

func TestGlobalAndRelativeIDs(t *testing.T) {
	layout := twoLevelLayout()
	packageIndex := layout.PackageIndex()

	// APIC ID 0b1101: thread 1 of core 2 of package 1.
	apicID := uint32(0xD)
	assert.Equal(t, uint32(1), layout.RelativeID(0, 1, apicID))
	assert.Equal(t, uint32(2), layout.RelativeID(1, packageIndex, apicID))
	assert.Equal(t, uint32(0x8), layout.GlobalID(packageIndex, apicID))
	assert.Equal(t, uint32(0xC), layout.GlobalID(1, apicID))
	assert.Equal(t, apicID, layout.GlobalID(0, apicID))
}
