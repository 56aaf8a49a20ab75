// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"cputopo/internal/cpuid"
)

// domainType returns the domain type from ECX[15:8] of an extended topology
// subleaf.
func domainType(regs cpuid.Registers) Domain {
	return Domain((regs.ECX >> 8) & 0xFF)
}

// domainShift returns the cumulative bit shift from EAX[4:0] of an extended
// topology subleaf.
func domainShift(regs cpuid.Registers) uint32 {
	return regs.EAX & 0x1F
}

// TopologyLeaf selects the best available extended topology leaf: 0x1F when
// the processor reports it with data, otherwise 0xB. ok is false when
// neither leaf is populated and the caller must fall back to legacy decoding.
func TopologyLeaf(src cpuid.Source) (leaf uint32, ok bool) {
	maxLeaf := cpuid.MaxLeaf(src)
	if maxLeaf >= cpuid.LeafExtTopologyV2 && src.Read(cpuid.LeafExtTopologyV2, 0).EBX != 0 {
		return cpuid.LeafExtTopologyV2, true
	}
	if maxLeaf >= cpuid.LeafExtTopology && src.Read(cpuid.LeafExtTopology, 0).EBX != 0 {
		return cpuid.LeafExtTopology, true
	}
	return 0, false
}

// DecodeThreeDomain decodes the extended topology leaf into the simplified
// three-tier view: logical processor, core, package. Only the logical
// processor shift is tracked explicitly; whatever the last enumerated level
// is becomes the package boundary, which in a three-tier view is also the
// core-to-package relationship. Checking specifically for the core domain
// would be wrong here: a domain enumerated above core would then be mistaken
// for the package boundary.
func DecodeThreeDomain(src cpuid.Source, leaf uint32) (packageShift uint32, logicalProcessorShift uint32) {
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		if regs.EBX == 0 {
			break
		}
		switch domainType(regs) {
		case DomainInvalid:
			slog.Warn("invalid domain type enumerated", slog.Int("leaf", int(leaf)), slog.Int("subleaf", int(subleaf)))
		case DomainLogicalProcessor:
			logicalProcessorShift = domainShift(regs)
		}
		packageShift = domainShift(regs)
	}
	return packageShift, logicalProcessorShift
}

// DecodeManyDomain decodes the extended topology leaf into a full N-level
// layout, collapsing unknown domain types into the preceding known level.
// The first enumerated subleaf is always the logical processor domain, so a
// preceding level always exists when a collapse is needed.
func DecodeManyDomain(src cpuid.Source, leaf uint32) Layout {
	layout := Layout{
		ApicIDBits:  32,
		Description: fmt.Sprintf("APIC ID bit layout from CPUID.0x%X with unknown domains collapsed", leaf),
	}
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		if regs.EBX == 0 {
			break
		}
		domain := domainType(regs)
		shift := domainShift(regs)
		if domain.Known() {
			if domain == DomainInvalid {
				slog.Warn("invalid domain type enumerated", slog.Int("leaf", int(leaf)), slog.Int("subleaf", int(subleaf)))
			}
			layout.Levels = append(layout.Levels, Level{Domain: domain, Shift: shift})
		} else {
			// An unrecognized domain extends the shift of the most
			// recently appended known level.
			layout.Levels[len(layout.Levels)-1].Shift = shift
		}
	}
	layout.BuildMasks()
	return layout
}

// DecodeFull decodes the extended topology leaf without collapsing,
// recording every enumerated level including unrecognized ones. When any
// unknown domain type was seen, a second collapsing pass produces the
// consolidated layout alongside the uncollapsed one; otherwise collapsed is
// nil.
func DecodeFull(src cpuid.Source, leaf uint32) (full Layout, collapsed *Layout) {
	full = Layout{
		ApicIDBits:  32,
		Description: fmt.Sprintf("APIC ID bit layout from CPUID.0x%X", leaf),
	}
	unknown := mapset.NewSet[uint32]()
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		if regs.EBX == 0 {
			break
		}
		domain := domainType(regs)
		full.Levels = append(full.Levels, Level{Domain: domain, Shift: domainShift(regs)})
		if !domain.Known() {
			unknown.Add(uint32(domain))
		}
	}
	full.BuildMasks()

	if unknown.Cardinality() == 0 {
		return full, nil
	}
	slog.Info("unknown domain types enumerated, consolidating", slog.Any("types", unknown.ToSlice()))
	consolidated := DecodeManyDomain(src, leaf)
	consolidated.Description = fmt.Sprintf("consolidated APIC ID bit layout from CPUID.0x%X, unknown domains folded into known levels", leaf)
	return full, &consolidated
}
