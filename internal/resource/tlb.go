// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"
	"log/slog"

	"cputopo/internal/cpuid"
	"cputopo/internal/topology"
)

// TLBType is the translation cache type from CPUID.18.n.EDX[4:0]. A value
// of TLBInvalid marks a subleaf with no data.
type TLBType uint32

const (
	TLBInvalid TLBType = iota
	TLBData
	TLBInstruction
	TLBUnified
	TLBLoadOnly
	TLBStoreOnly
)

func (t TLBType) String() string {
	switch t {
	case TLBData:
		return "Data"
	case TLBInstruction:
		return "Instruction"
	case TLBUnified:
		return "Unified"
	case TLBLoadOnly:
		return "Load Only"
	case TLBStoreOnly:
		return "Store Only"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// maxTLBsPerProcessor bounds the total number of distinct TLBs recorded in
// one enumeration pass, as maxCachesPerProcessor does for caches.
const maxTLBsPerProcessor = 25

// TLB is one translation cache instance described by CPUID.18, with the
// processors sharing it.
type TLB struct {
	Group
	Type             TLBType
	Level            uint32
	Ways             uint32
	Partitioning     uint32
	Sets             uint32
	FullyAssociative bool
	Pages4K          bool
	Pages2M          bool
	Pages4M          bool
	Pages1G          bool
}

func newTLB(id uint32, mask uint32, regs cpuid.Registers) TLB {
	return TLB{
		Group:            Group{Registers: regs, ID: id, Mask: mask},
		Type:             TLBType(regs.EDX & 0x1F),
		Level:            (regs.EDX >> 5) & 0x7, // EDX[7:5], level starts at 1
		Ways:             (regs.EBX >> 16) & 0xFF,
		Partitioning:     (regs.EBX >> 8) & 0x7,
		Sets:             regs.ECX,
		FullyAssociative: regs.EDX&(1<<8) != 0,
		Pages4K:          regs.EBX&1 != 0,
		Pages2M:          regs.EBX&2 != 0,
		Pages4M:          regs.EBX&4 != 0,
		Pages1G:          regs.EBX&8 != 0,
	}
}

// SupportsTLBLeaf reports whether the source enumerates deterministic
// address translation parameters.
func SupportsTLBLeaf(src cpuid.Source) bool {
	return cpuid.MaxLeaf(src) >= cpuid.LeafTLB
}

// EnumerateTLBs scans every logical processor's CPUID.18 subleafs and merges
// the descriptions into shared TLB instances, the same way EnumerateCaches
// does for CPUID.4.
//
// Unlike the cache leaf, subleaf 0's EAX carries the maximum subleaf number
// and no descriptive data, so EAX is zeroed on every subleaf before the
// description is stored or compared.
func EnumerateTLBs(src cpuid.Source) []TLB {
	apicIDs := topology.GatherPlatformIDs(src, cpuid.MaxProcessors)
	maxTLBs := len(apicIDs) * maxTLBsPerProcessor
	var tlbs []TLB

	for processor, apicID := range apicIDs {
		src.BindAffinity(uint32(processor)) // #nosec G115

		maxSubleaf := uint32(0)
		for subleaf := uint32(0); subleaf <= maxSubleaf; subleaf++ {
			regs := src.Read(cpuid.LeafTLB, subleaf)
			if subleaf == 0 {
				maxSubleaf = regs.EAX
			}
			regs.EAX = 0

			if TLBType(regs.EDX&0x1F) == TLBInvalid {
				continue
			}

			maxSharing := ((regs.EDX >> 14) & 0xFFF) + 1
			mask := shareMask(maxSharing)
			id := apicID & mask

			index := findTLB(tlbs, id, regs)
			if index < 0 {
				if len(tlbs) >= maxTLBs {
					slog.Warn("TLB list full, dropping membership", slog.Int("processor", processor), slog.Int("subleaf", int(subleaf)))
					continue
				}
				tlbs = append(tlbs, newTLB(id, mask, regs))
				index = len(tlbs) - 1
			}
			tlbs[index].Members = append(tlbs[index].Members, apicID)
		}
	}
	return tlbs
}

func findTLB(tlbs []TLB, id uint32, regs cpuid.Registers) int {
	for i := range tlbs {
		if tlbs[i].Matches(id, regs) {
			return i
		}
	}
	return -1
}
