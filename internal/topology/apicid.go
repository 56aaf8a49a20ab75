// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"cputopo/internal/cpuid"
)

// GatherPlatformIDs collects the APIC ID of every logical processor, indexed
// by processor enumeration order (which is not necessarily APIC ID order).
// At most capacity IDs are returned.
//
// For each processor the widest available identifier wins: the 32-bit x2APIC
// ID from leaf 0x1F, then from leaf 0xB, then the legacy 8-bit APIC ID from
// CPUID.1.EBX[31:24], which every processor reports.
func GatherPlatformIDs(src cpuid.Source, capacity uint32) []uint32 {
	count := min(src.ProcessorCount(), cpuid.MaxProcessors, capacity)
	maxLeaf := cpuid.MaxLeaf(src)

	ids := make([]uint32, 0, count)
	for index := uint32(0); index < count; index++ {
		src.BindAffinity(index)
		ids = append(ids, readAPICID(src, maxLeaf))
	}
	return ids
}

func readAPICID(src cpuid.Source, maxLeaf uint32) uint32 {
	if maxLeaf >= cpuid.LeafExtTopologyV2 {
		if regs := src.Read(cpuid.LeafExtTopologyV2, 0); regs.EBX != 0 {
			return regs.EDX
		}
	}
	if maxLeaf >= cpuid.LeafExtTopology {
		if regs := src.Read(cpuid.LeafExtTopology, 0); regs.EBX != 0 {
			return regs.EDX
		}
	}
	return src.Read(cpuid.LeafVersion, 0).EBX >> 24
}
