// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"
	"log/slog"

	"cputopo/internal/cpuid"
	"cputopo/internal/topology"
)

// CacheType is the cache type from CPUID.4.n.EAX[4:0]. A value of
// CacheNone terminates subleaf enumeration.
type CacheType uint32

const (
	CacheNone CacheType = iota
	CacheData
	CacheInstruction
	CacheUnified
)

func (t CacheType) String() string {
	switch t {
	case CacheData:
		return "Data"
	case CacheInstruction:
		return "Instruction"
	case CacheUnified:
		return "Unified"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// maxCachesPerProcessor bounds the total number of distinct caches recorded
// in one enumeration pass. Membership beyond the bound is dropped, not an
// error.
const maxCachesPerProcessor = 10

// Cache is one physical cache instance described by CPUID.4, with the
// processors sharing it.
type Cache struct {
	Group
	Type             CacheType
	Level            uint32
	Ways             uint32
	Partitions       uint32
	LineSize         uint32
	Sets             uint32
	SizeBytes        uint64
	SelfInitializing bool
	FullyAssociative bool
	Inclusive        bool
	Complex          bool
	DirectMapped     bool
	// WbinvdFlushesLower reports whether WBINVD from this processor also
	// flushes lower cache levels shared by other processors.
	WbinvdFlushesLower bool
}

func newCache(id uint32, mask uint32, regs cpuid.Registers) Cache {
	c := Cache{
		Group: Group{Registers: regs, ID: id, Mask: mask},
		Type:  CacheType(regs.EAX & 0x1F),
		Level: (regs.EAX >> 5) & 0x7, // EAX[7:5], level starts at 1
	}
	c.Ways = (regs.EBX >> 22) + 1                 // EBX[31:22] + 1
	c.Partitions = ((regs.EBX >> 12) & 0x3FF) + 1 // EBX[21:12] + 1
	c.LineSize = (regs.EBX & 0xFFF) + 1           // EBX[11:0] + 1
	c.Sets = regs.ECX + 1
	c.SizeBytes = uint64(c.Ways) * uint64(c.LineSize) * uint64(c.Partitions) * uint64(c.Sets)
	c.SelfInitializing = regs.EAX&(1<<8) != 0
	c.FullyAssociative = regs.EAX&(1<<9) != 0
	c.WbinvdFlushesLower = regs.EDX&1 == 0
	c.Inclusive = regs.EDX&2 != 0
	c.Complex = regs.EDX&4 != 0
	c.DirectMapped = !c.Complex
	return c
}

// SupportsCacheLeaf reports whether the source enumerates deterministic
// cache parameters. Only processors older than roughly 2006 do not.
func SupportsCacheLeaf(src cpuid.Source) bool {
	return cpuid.MaxLeaf(src) >= cpuid.LeafCache
}

// EnumerateCaches scans every logical processor's CPUID.4 subleafs and
// merges the descriptions into shared cache instances.
//
// Nothing relates a subleaf number on one processor to the same cache on
// another, so every subleaf of every processor is matched against the caches
// found so far: the APIC ID masked by the cache's sharing domain must yield
// the same cache ID, and the full register description must be identical.
func EnumerateCaches(src cpuid.Source) []Cache {
	apicIDs := topology.GatherPlatformIDs(src, cpuid.MaxProcessors)
	maxCaches := len(apicIDs) * maxCachesPerProcessor
	var caches []Cache

	for processor, apicID := range apicIDs {
		src.BindAffinity(uint32(processor)) // #nosec G115

		for subleaf := uint32(0); ; subleaf++ {
			regs := src.Read(cpuid.LeafCache, subleaf)
			if CacheType(regs.EAX&0x1F) == CacheNone {
				break
			}

			// Maximum addressable IDs sharing this cache; maximum
			// because not every addressable ID has a processor behind it.
			maxSharing := ((regs.EAX >> 14) & 0xFFF) + 1
			mask := shareMask(maxSharing)
			id := apicID & mask

			index := findCache(caches, id, regs)
			if index < 0 {
				if len(caches) >= maxCaches {
					slog.Warn("cache list full, dropping membership", slog.Int("processor", processor), slog.Int("subleaf", int(subleaf)))
					continue
				}
				caches = append(caches, newCache(id, mask, regs))
				index = len(caches) - 1
			}
			caches[index].Members = append(caches[index].Members, apicID)
		}
	}
	return caches
}

func findCache(caches []Cache, id uint32, regs cpuid.Registers) int {
	for i := range caches {
		if caches[i].Matches(id, regs) {
			return i
		}
	}
	return -1
}
