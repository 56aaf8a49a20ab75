// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cpuid provides access to x86 CPU identification registers, either
// directly from the hardware or from a recorded register table. All topology
// decoding is written against the Source interface so that a recorded trace
// behaves exactly like the machine it was captured on.
package cpuid

// Registers holds the four register values returned by one CPUID invocation.
// Snapshots are immutable and compared by value when two resource
// descriptions need to be checked for equality.
type Registers struct {
	EAX uint32
	EBX uint32
	ECX uint32
	EDX uint32
}

// Leaf and subleaf numbers used by the decoders.
const (
	LeafBasic          = 0x0  // EAX reports the maximum standard leaf
	LeafVersion        = 0x1  // legacy topology and 8-bit APIC ID
	LeafCache          = 0x4  // deterministic cache parameters
	LeafExtTopology    = 0xB  // extended topology, 3 domains max
	LeafTLB            = 0x18 // deterministic address translation parameters
	LeafExtTopologyV2  = 0x1F // V2 extended topology, many domains
	maxRecordedLeaf    = 0x20
	maxRecordedSubleaf = 10
)

// MaxProcessors is a soft sanity cap on the number of logical processors a
// recorded trace may describe. Live systems are never truncated.
const MaxProcessors = 1024

// Source supplies CPUID register values for the currently bound logical
// processor. Implementations are not safe for concurrent use; topology
// passes are strictly sequential because the answer to Read depends on
// which processor the caller is bound to.
type Source interface {
	// Read returns the register values for the given leaf and subleaf on
	// the currently bound logical processor.
	Read(leaf uint32, subleaf uint32) Registers

	// BindAffinity binds the calling thread to the logical processor with
	// the given enumeration index. Out-of-range indexes are ignored.
	BindAffinity(index uint32)

	// ProcessorCount returns the number of enumerable logical processors.
	ProcessorCount() uint32

	// IsNative reports whether register values come from the hardware this
	// process is running on rather than a recorded table.
	IsNative() bool
}

// MaxLeaf returns the maximum standard CPUID leaf reported by the source.
func MaxLeaf(src Source) uint32 {
	return src.Read(LeafBasic, 0).EAX
}
