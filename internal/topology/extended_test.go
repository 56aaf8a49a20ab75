// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cputopo/internal/cpuid"
)

// extendedSource builds a simulated source reporting the given extended
// topology subleafs on one leaf.
func extendedSource(leaf uint32, subleafs []cpuid.Registers, apicIDs []uint32) *cpuid.SimulatedSource {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafExtTopologyV2})
	for i, regs := range subleafs {
		src.SetLeaf(leaf, uint32(i), regs) // #nosec G115
	}
	for _, id := range apicIDs {
		src.AddAPICID(id)
	}
	return src
}

// smtCoreSubleafs enumerates 2 threads per core and 4 cores per package:
// cumulative shifts 1 and 3, followed by the terminating subleaf.
func smtCoreSubleafs() []cpuid.Registers {
	return []cpuid.Registers{
		{EAX: 1, EBX: 2, ECX: uint32(DomainLogicalProcessor) << 8},
		{EAX: 3, EBX: 8, ECX: uint32(DomainCore)<<8 | 1},
		{EAX: 0, EBX: 0, ECX: 2},
	}
}

func TestTopologyLeafPrefersV2(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopologyV2, smtCoreSubleafs(), nil)
	leaf, ok := TopologyLeaf(src)
	require.True(t, ok)
	assert.Equal(t, uint32(cpuid.LeafExtTopologyV2), leaf)
}

func TestTopologyLeafFallsBackToB(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), nil)
	leaf, ok := TopologyLeaf(src)
	require.True(t, ok)
	assert.Equal(t, uint32(cpuid.LeafExtTopology), leaf)
}

func TestTopologyLeafAbsent(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafVersion})
	_, ok := TopologyLeaf(src)
	assert.False(t, ok)
}

func TestDecodeThreeDomain(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), nil)
	packageShift, lpShift := DecodeThreeDomain(src, cpuid.LeafExtTopology)
	assert.Equal(t, uint32(3), packageShift)
	assert.Equal(t, uint32(1), lpShift)
}

// A domain enumerated above core must become the package boundary, not be
// mistaken for it.
func TestDecodeThreeDomainWithDieLevel(t *testing.T) {
	subleafs := []cpuid.Registers{
		{EAX: 1, EBX: 2, ECX: uint32(DomainLogicalProcessor) << 8},
		{EAX: 3, EBX: 8, ECX: uint32(DomainCore)<<8 | 1},
		{EAX: 5, EBX: 16, ECX: uint32(DomainDie)<<8 | 2},
		{EAX: 0, EBX: 0, ECX: 3},
	}
	src := extendedSource(cpuid.LeafExtTopologyV2, subleafs, nil)
	packageShift, lpShift := DecodeThreeDomain(src, cpuid.LeafExtTopologyV2)
	assert.Equal(t, uint32(5), packageShift)
	assert.Equal(t, uint32(1), lpShift)
}

func TestDecodeManyDomain(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), nil)
	layout := DecodeManyDomain(src, cpuid.LeafExtTopology)
	require.Len(t, layout.Levels, 2)
	assert.Equal(t, DomainLogicalProcessor, layout.Levels[0].Domain)
	assert.Equal(t, uint32(1), layout.Levels[0].Shift)
	assert.Equal(t, DomainCore, layout.Levels[1].Domain)
	assert.Equal(t, uint32(3), layout.Levels[1].Shift)
	assert.Equal(t, uint32(32), layout.ApicIDBits)
	require.Len(t, layout.Masks, 3)
}

func TestDecodeManyDomainCollapsesUnknown(t *testing.T) {
	subleafs := []cpuid.Registers{
		{EAX: 1, EBX: 2, ECX: uint32(DomainLogicalProcessor) << 8},
		{EAX: 3, EBX: 8, ECX: uint32(DomainCore)<<8 | 1},
		{EAX: 5, EBX: 16, ECX: 0x90<<8 | 2},
		{EAX: 0, EBX: 0, ECX: 3},
	}
	src := extendedSource(cpuid.LeafExtTopologyV2, subleafs, nil)
	layout := DecodeManyDomain(src, cpuid.LeafExtTopologyV2)

	// The unrecognized domain widens the core level instead of adding one.
	require.Len(t, layout.Levels, 2)
	assert.Equal(t, DomainCore, layout.Levels[1].Domain)
	assert.Equal(t, uint32(5), layout.Levels[1].Shift)
}

func TestDecodeFullWithoutUnknowns(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), nil)
	full, collapsed := DecodeFull(src, cpuid.LeafExtTopology)
	assert.Len(t, full.Levels, 2)
	assert.Nil(t, collapsed)
}

func TestDecodeFullWithUnknowns(t *testing.T) {
	subleafs := []cpuid.Registers{
		{EAX: 1, EBX: 2, ECX: uint32(DomainLogicalProcessor) << 8},
		{EAX: 3, EBX: 8, ECX: uint32(DomainCore)<<8 | 1},
		{EAX: 5, EBX: 16, ECX: 0x90<<8 | 2},
		{EAX: 0, EBX: 0, ECX: 3},
	}
	src := extendedSource(cpuid.LeafExtTopologyV2, subleafs, nil)
	full, collapsed := DecodeFull(src, cpuid.LeafExtTopologyV2)

	// The uncollapsed layout keeps the unrecognized level.
	require.Len(t, full.Levels, 3)
	assert.Equal(t, Domain(0x90), full.Levels[2].Domain)
	assert.Equal(t, uint32(5), full.Levels[2].Shift)

	require.NotNil(t, collapsed)
	require.Len(t, collapsed.Levels, 2)
	assert.Equal(t, uint32(5), collapsed.Levels[1].Shift)
}
