// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cputopo/internal/cpuid"
)

const httBit = 1 << 28

func TestDecodeLegacyNoHTT(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafCache})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EDX: 0})

	layout := DecodeLegacy(src)
	require.Len(t, layout.Levels, 1)
	assert.Equal(t, DomainLogicalProcessor, layout.Levels[0].Domain)
	assert.Equal(t, uint32(0), layout.Levels[0].Shift)
	assert.Equal(t, uint32(8), layout.ApicIDBits)
}

func TestDecodeLegacyNoCacheLeaf(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafVersion})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EBX: 4 << 16, EDX: httBit})

	layout := DecodeLegacy(src)
	require.Len(t, layout.Levels, 1)
	assert.Equal(t, DomainLogicalProcessor, layout.Levels[0].Domain)
	assert.Equal(t, uint32(2), layout.Levels[0].Shift)
}

func TestDecodeLegacyWithCacheLeaf(t *testing.T) {
	// 4 addressable IDs per package, 2 addressable core IDs: 2 threads
	// per core, 2 cores per package.
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafCache})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EBX: 4 << 16, EDX: httBit})
	src.AddAPICID(0)
	src.SetProcessorLeaf(cpuid.LeafCache, 0, 0, cpuid.Registers{EAX: 1 << 26})

	layout := DecodeLegacy(src)
	require.Len(t, layout.Levels, 2)
	assert.Equal(t, DomainLogicalProcessor, layout.Levels[0].Domain)
	assert.Equal(t, uint32(1), layout.Levels[0].Shift)
	assert.Equal(t, DomainCore, layout.Levels[1].Domain)
	assert.Equal(t, uint32(2), layout.Levels[1].Shift)
}

// A machine that enumerates the same 2 cores x 2 threads hierarchy through
// both the legacy and the extended path must decode identically.
func TestLegacyAndExtendedAgree(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafExtTopology})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EBX: 4 << 16, EDX: httBit})
	src.SetLeaf(cpuid.LeafExtTopology, 0, cpuid.Registers{EAX: 1, EBX: 2, ECX: uint32(DomainLogicalProcessor) << 8})
	src.SetLeaf(cpuid.LeafExtTopology, 1, cpuid.Registers{EAX: 2, EBX: 4, ECX: uint32(DomainCore)<<8 | 1})
	src.SetLeaf(cpuid.LeafExtTopology, 2, cpuid.Registers{ECX: 2})
	for processor := uint32(0); processor < 8; processor++ {
		src.AddAPICID(processor)
		src.SetProcessorLeaf(cpuid.LeafCache, processor, 0, cpuid.Registers{EAX: 1 << 26})
	}

	leaf, ok := TopologyLeaf(src)
	require.True(t, ok)
	extPackageShift, extLPShift := DecodeThreeDomain(src, leaf)
	legacyPackageShift, legacyLPShift := DecodeLegacyThreeDomain(src)

	assert.Equal(t, extPackageShift, legacyPackageShift)
	assert.Equal(t, extLPShift, legacyLPShift)

	extended := DecodeManyDomain(src, leaf)
	legacy := DecodeLegacy(src)
	require.Len(t, legacy.Levels, len(extended.Levels))
	for i := range legacy.Levels {
		assert.Equal(t, extended.Levels[i].Domain, legacy.Levels[i].Domain)
		assert.Equal(t, extended.Levels[i].Shift, legacy.Levels[i].Shift)
	}
}
