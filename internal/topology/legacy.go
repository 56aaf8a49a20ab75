// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"cputopo/internal/cpuid"
)

// DecodeLegacy derives the topology from CPUID.1 and CPUID.4, the method
// that predates the extended topology leaves. Callers should only use it
// when TopologyLeaf finds neither 0x1F nor 0xB populated: APIC IDs here are
// 8 bits wide and large platforms overflow them.
//
// CPUID.1.EBX[23:16] is the maximum number of addressable IDs for logical
// processors in the package, valid only when CPUID.1.EDX[28] (HTT) is set.
// CPUID.4.0.EAX[31:26]+1 is the maximum number of addressable core IDs;
// dividing the two gives the logical processors per core.
func DecodeLegacy(src cpuid.Source) Layout {
	layout := Layout{ApicIDBits: 8}

	version := src.Read(cpuid.LeafVersion, 0)
	if version.EDX&(1<<28) == 0 {
		// No HTT means no enumeration at all: one logical processor per
		// package.
		layout.Levels = []Level{{Domain: DomainLogicalProcessor, Shift: IndexShift(1)}}
		layout.Description = "Legacy path where CPUID.HTT = 0"
		layout.BuildMasks()
		return layout
	}

	idsPerPackage := (version.EBX >> 16) & 0xFF
	packageShift := IndexShift(idsPerPackage)

	if cpuid.MaxLeaf(src) < cpuid.LeafCache {
		// Without leaf 4 cores cannot be reported; the package holds only
		// SMT logical processors.
		layout.Levels = []Level{{Domain: DomainLogicalProcessor, Shift: packageShift}}
		layout.Description = "Legacy path using CPUID.1 and CPUID.HTT = 1 but no CPUID.4"
		layout.BuildMasks()
		return layout
	}

	idsPerCore := (src.Read(cpuid.LeafCache, 0).EAX >> 26) + 1
	logicalPerCore := idsPerPackage / idsPerCore

	layout.Levels = []Level{
		{Domain: DomainLogicalProcessor, Shift: IndexShift(logicalPerCore)},
		{Domain: DomainCore, Shift: packageShift},
	}
	layout.Description = "Legacy path using CPUID.1 and CPUID.4 (may not be correct if leaf 0xB or 0x1F exists)"
	layout.BuildMasks()
	return layout
}

// DecodeLegacyThreeDomain reduces the legacy decode to the package and
// logical processor shifts used by the three-tier view.
func DecodeLegacyThreeDomain(src cpuid.Source) (packageShift uint32, logicalProcessorShift uint32) {
	layout := DecodeLegacy(src)
	logicalProcessorShift = layout.Levels[0].Shift
	packageShift = layout.Levels[len(layout.Levels)-1].Shift
	return packageShift, logicalProcessorShift
}
