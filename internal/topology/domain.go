// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package topology decodes the x86 processor topology hierarchy from CPUID
// register values: which bits of an APIC ID identify the thread, core,
// module, tile, die, die group, and package a logical processor belongs to.
package topology

import (
	"fmt"
)

// Domain is a topology domain type as enumerated by CPUID.1F (and CPUID.B).
// The numeric values match the Intel SDM level type encoding.
type Domain uint32

const (
	DomainInvalid Domain = iota
	DomainLogicalProcessor
	DomainCore
	DomainModule
	DomainTile
	DomainDie
	DomainDieGroup
)

// Known reports whether d is a documented domain type. DomainInvalid counts
// as known; it is a recognized-but-erroneous value, distinct from a domain
// type introduced after this code was written.
func (d Domain) Known() bool {
	switch d {
	case DomainInvalid, DomainLogicalProcessor, DomainCore, DomainModule, DomainTile, DomainDie, DomainDieGroup:
		return true
	}
	return false
}

func (d Domain) String() string {
	switch d {
	case DomainInvalid:
		return "Invalid"
	case DomainLogicalProcessor:
		return "LogicalProcessor"
	case DomainCore:
		return "Core"
	case DomainModule:
		return "Module"
	case DomainTile:
		return "Tile"
	case DomainDie:
		return "Die"
	case DomainDieGroup:
		return "DieGroup"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(d))
}
