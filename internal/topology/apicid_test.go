// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cputopo/internal/cpuid"
)

func TestGatherPlatformIDsFromExtendedLeaf(t *testing.T) {
	apicIDs := []uint32{0, 1, 4, 5}
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), apicIDs)
	assert.Equal(t, apicIDs, GatherPlatformIDs(src, cpuid.MaxProcessors))
}

func TestGatherPlatformIDsFromV2Leaf(t *testing.T) {
	apicIDs := []uint32{0x10, 0x11}
	src := extendedSource(cpuid.LeafExtTopologyV2, smtCoreSubleafs(), apicIDs)
	assert.Equal(t, apicIDs, GatherPlatformIDs(src, cpuid.MaxProcessors))
}

func TestGatherPlatformIDsLegacyFallback(t *testing.T) {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafVersion})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EDX: httBit})
	src.AddAPICID(2)
	src.AddAPICID(3)

	// Without the extended leaves the 8-bit initial APIC ID from
	// CPUID.1.EBX[31:24] is all there is.
	assert.Equal(t, []uint32{2, 3}, GatherPlatformIDs(src, cpuid.MaxProcessors))
}

func TestGatherPlatformIDsHonorsCapacity(t *testing.T) {
	src := extendedSource(cpuid.LeafExtTopology, smtCoreSubleafs(), []uint32{0, 1, 4, 5})
	assert.Equal(t, []uint32{0, 1}, GatherPlatformIDs(src, 2))
}
