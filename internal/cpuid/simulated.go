// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"
)

// SimulatedSource serves CPUID values from recorded register tables, letting
// the decoders run against a trace captured on another machine.
//
// Most leaves are symmetric across processors and stored once. Leaves 4 and
// 0x18 describe per-processor resources and are stored per processor. The
// recorded APIC IDs are substituted into the registers that carry them so
// that identifier gathering behaves as it would on the recorded machine:
// EDX on the extended topology leaves, EBX[31:24] on leaf 1.
type SimulatedSource struct {
	shared   map[uint32][]Registers // leaf -> subleaf -> registers
	perProc  map[uint32][][]Registers
	apicIDs  []uint32
	affinity uint32
}

// NewSimulatedSource returns an empty simulated source. Populate it with
// SetLeaf, SetProcessorLeaf, and AddAPICID before handing it to a decoder.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{
		shared: make(map[uint32][]Registers),
		perProc: map[uint32][][]Registers{
			LeafCache: nil,
			LeafTLB:   nil,
		},
	}
}

// SetLeaf records the registers for a symmetric leaf/subleaf.
func (s *SimulatedSource) SetLeaf(leaf uint32, subleaf uint32, regs Registers) {
	if leaf >= maxRecordedLeaf || subleaf >= maxRecordedSubleaf {
		slog.Warn("skipping recorded entry beyond supported maximums", slog.Int("leaf", int(leaf)), slog.Int("subleaf", int(subleaf)))
		return
	}
	s.shared[leaf] = growSubleafs(s.shared[leaf], subleaf)
	s.shared[leaf][subleaf] = regs
}

// SetProcessorLeaf records the registers for an asymmetric leaf (4 or 0x18)
// on a specific processor.
func (s *SimulatedSource) SetProcessorLeaf(leaf uint32, processor uint32, subleaf uint32, regs Registers) {
	table, ok := s.perProc[leaf]
	if !ok {
		slog.Warn("leaf is not recorded per processor", slog.Int("leaf", int(leaf)))
		return
	}
	if processor >= MaxProcessors || subleaf >= maxRecordedSubleaf {
		slog.Warn("skipping recorded entry beyond supported maximums", slog.Int("processor", int(processor)), slog.Int("subleaf", int(subleaf)))
		return
	}
	for uint32(len(table)) <= processor {
		table = append(table, nil)
	}
	table[processor] = growSubleafs(table[processor], subleaf)
	table[processor][subleaf] = regs
	s.perProc[leaf] = table
}

// AddAPICID appends the APIC ID of the next recorded logical processor.
func (s *SimulatedSource) AddAPICID(id uint32) {
	if len(s.apicIDs) >= MaxProcessors {
		slog.Warn("too many recorded processors, skipping APIC ID", slog.Int("apicID", int(id)))
		return
	}
	s.apicIDs = append(s.apicIDs, id)
}

// APICIDs returns the recorded APIC IDs in processor enumeration order.
func (s *SimulatedSource) APICIDs() []uint32 {
	return s.apicIDs
}

func (s *SimulatedSource) Read(leaf uint32, subleaf uint32) Registers {
	if table, ok := s.perProc[leaf]; ok {
		if s.affinity < uint32(len(table)) && subleaf < uint32(len(table[s.affinity])) {
			return table[s.affinity][subleaf]
		}
		return Registers{}
	}
	subleafs, ok := s.shared[leaf]
	if !ok || subleaf >= uint32(len(subleafs)) {
		return Registers{}
	}
	regs := subleafs[subleaf]
	switch leaf {
	case LeafExtTopology, LeafExtTopologyV2:
		if regs.EBX != 0 && s.affinity < uint32(len(s.apicIDs)) {
			regs.EDX = s.apicIDs[s.affinity]
		}
	case LeafVersion:
		if s.affinity < uint32(len(s.apicIDs)) {
			regs.EBX = regs.EBX&^(0xFF<<24) | s.apicIDs[s.affinity]<<24
		}
	}
	return regs
}

func (s *SimulatedSource) BindAffinity(index uint32) {
	if index < uint32(len(s.apicIDs)) {
		s.affinity = index
	}
}

func (s *SimulatedSource) ProcessorCount() uint32 {
	return uint32(len(s.apicIDs))
}

func (s *SimulatedSource) IsNative() bool {
	return false
}

func growSubleafs(subleafs []Registers, subleaf uint32) []Registers {
	for uint32(len(subleafs)) <= subleaf {
		subleafs = append(subleafs, Registers{})
	}
	return subleafs
}
