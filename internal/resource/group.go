// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package resource aggregates logical processors into groups sharing a
// physical cache or TLB instance, discovered by scanning each processor's
// resource description leaves and comparing derived identifiers.
package resource

import (
	"cputopo/internal/cpuid"
	"cputopo/internal/topology"
)

// Group identifies one shared resource instance. ID is the owning
// processor's APIC ID with the low bits covered by the sharing domain masked
// off; Members are the APIC IDs of every processor that produced the same ID
// from the same register description, in enumeration order.
type Group struct {
	Registers cpuid.Registers
	ID        uint32
	Mask      uint32
	Members   []uint32
}

// shareMask converts a maximum-addressable-IDs-sharing count into the mask
// that strips the bits distinguishing processors within one instance.
func shareMask(maxSharing uint32) uint32 {
	shift := topology.IndexShift(maxSharing)
	return ^((uint32(1) << shift) - 1)
}

// Matches reports whether this group describes the same resource instance
// as the given derived ID and register description. IDs are generated
// independently per processor, possibly from different masks, so an equal ID
// alone does not prove it is the same resource; the full description must
// match too.
func (g *Group) Matches(id uint32, regs cpuid.Registers) bool {
	return g.ID == id && g.Registers == regs
}
