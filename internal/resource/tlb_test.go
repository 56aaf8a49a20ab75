// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cputopo/internal/cpuid"
)

// dataTLBRegs describes a 4-way, 64-set data TLB for 4K pages shared by
// maxSharing logical processors. maxSubleaf goes into EAX, which only
// subleaf 0 reports.
func dataTLBRegs(maxSubleaf uint32, maxSharing uint32) cpuid.Registers {
	return cpuid.Registers{
		EAX: maxSubleaf,
		EBX: 4<<16 | 1,
		ECX: 64,
		EDX: uint32(TLBData) | 1<<5 | (maxSharing-1)<<14,
	}
}

// tlbSource builds a source where processor i has APIC ID i and enumerates
// the given TLB subleafs.
func tlbSource(perProcessor [][]cpuid.Registers) *cpuid.SimulatedSource {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafTLB})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EBX: 2 << 16, EDX: 1 << 28})
	for processor, subleafs := range perProcessor {
		src.AddAPICID(uint32(processor)) // #nosec G115
		for i, regs := range subleafs {
			src.SetProcessorLeaf(cpuid.LeafTLB, uint32(processor), uint32(i), regs) // #nosec G115
		}
	}
	return src
}

func TestNewTLBDecodesGeometry(t *testing.T) {
	tlb := newTLB(0, ^uint32(1), dataTLBRegs(0, 2))
	assert.Equal(t, TLBData, tlb.Type)
	assert.Equal(t, uint32(1), tlb.Level)
	assert.Equal(t, uint32(4), tlb.Ways)
	assert.Equal(t, uint32(64), tlb.Sets)
	assert.True(t, tlb.Pages4K)
	assert.False(t, tlb.Pages2M)
	assert.False(t, tlb.FullyAssociative)
}

func TestEnumerateTLBsMergesSharedInstances(t *testing.T) {
	src := tlbSource([][]cpuid.Registers{
		{dataTLBRegs(0, 2)},
		{dataTLBRegs(0, 2)},
	})
	tlbs := EnumerateTLBs(src)
	require.Len(t, tlbs, 1)
	assert.Equal(t, uint32(0), tlbs[0].ID)
	assert.ElementsMatch(t, []uint32{0, 1}, tlbs[0].Members)
}

// The same TLB may appear at different subleaf indexes on different
// processors. Subleaf 0's EAX carries the maximum subleaf number rather
// than descriptive data, so it must not prevent the match.
func TestEnumerateTLBsIgnoresEAXWhenMatching(t *testing.T) {
	valid := dataTLBRegs(1, 2)
	invalid := cpuid.Registers{EAX: 1}
	src := tlbSource([][]cpuid.Registers{
		{valid, {}},
		{invalid, func() cpuid.Registers { r := valid; r.EAX = 0; return r }()},
	})
	tlbs := EnumerateTLBs(src)
	require.Len(t, tlbs, 1)
	assert.ElementsMatch(t, []uint32{0, 1}, tlbs[0].Members)
}

func TestEnumerateTLBsSkipsInvalidSubleafs(t *testing.T) {
	src := tlbSource([][]cpuid.Registers{
		{{EAX: 2}, dataTLBRegs(0, 1), {}},
	})
	tlbs := EnumerateTLBs(src)
	require.Len(t, tlbs, 1)
	assert.Equal(t, []uint32{0}, tlbs[0].Members)
}

func TestEnumerateTLBsIsIdempotent(t *testing.T) {
	src := tlbSource([][]cpuid.Registers{
		{dataTLBRegs(0, 2)},
		{dataTLBRegs(0, 2)},
	})
	first := EnumerateTLBs(src)
	second := EnumerateTLBs(src)
	assert.Equal(t, first, second)
}

func TestSupportsTLBLeaf(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafCache})
	assert.False(t, SupportsTLBLeaf(src))
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafTLB})
	assert.True(t, SupportsTLBLeaf(src))
}
