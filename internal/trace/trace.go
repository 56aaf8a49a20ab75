// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package trace reads and writes recorded CPUID register traces. A trace
// captures enough of a machine's identification registers to rerun every
// topology, cache, and TLB analysis against it on another machine.
//
// Two file formats are supported, selected by extension: a line-oriented
// text format and a YAML document (.yaml/.yml).
//
// The text format has three directives, one per line, values in decimal:
//
//	L <leaf>                           start describing a leaf
//	S <subleaf> <eax> <ebx> <ecx> <edx>  register values for the current leaf
//	A <apicid>                         APIC ID of the next logical processor
//
// Every leaf is recorded once except 4 and 0x18, which are asymmetric across
// processors: each repeated "L 4" or "L 24" block is associated with the
// next logical processor, tying it to the APIC ID list in order.
package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cputopo/internal/cpuid"
)

// IsYAML reports whether the path selects the YAML trace format.
func IsYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Read loads a trace file into a simulated register source.
func Read(path string) (*cpuid.SimulatedSource, error) {
	if IsYAML(path) {
		return readYAML(path)
	}
	return readText(path)
}

// Write records the source's registers into a trace file.
func Write(path string, src cpuid.Source) error {
	if IsYAML(path) {
		return writeYAML(path, src)
	}
	return writeText(path, src)
}

func readText(path string) (*cpuid.SimulatedSource, error) {
	file, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trace file")
	}
	defer file.Close()

	src := cpuid.NewSimulatedSource()
	var currentLeaf uint32
	// Repeated leaf 4 / leaf 0x18 blocks advance these per-processor
	// indexes; all other leaves are shared.
	var leaf4Count, leaf18Count uint32

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "L":
			if len(fields) < 2 {
				return nil, errors.Errorf("line %d: L directive requires a leaf number", lineNumber)
			}
			currentLeaf, err = parseValue(fields[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid leaf number", lineNumber)
			}
			switch currentLeaf {
			case cpuid.LeafCache:
				leaf4Count++
			case cpuid.LeafTLB:
				leaf18Count++
			}

		case "S":
			if len(fields) < 6 {
				return nil, errors.Errorf("line %d: S directive requires a subleaf and four register values", lineNumber)
			}
			values := make([]uint32, 5)
			for i, field := range fields[1:6] {
				values[i], err = parseValue(field)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: invalid subleaf value", lineNumber)
				}
			}
			regs := cpuid.Registers{EAX: values[1], EBX: values[2], ECX: values[3], EDX: values[4]}
			switch currentLeaf {
			case cpuid.LeafCache:
				src.SetProcessorLeaf(currentLeaf, leaf4Count-1, values[0], regs)
			case cpuid.LeafTLB:
				src.SetProcessorLeaf(currentLeaf, leaf18Count-1, values[0], regs)
			default:
				src.SetLeaf(currentLeaf, values[0], regs)
			}

		case "A":
			if len(fields) < 2 {
				return nil, errors.Errorf("line %d: A directive requires an APIC ID", lineNumber)
			}
			id, err := parseValue(fields[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid APIC ID", lineNumber)
			}
			src.AddAPICID(id)

		default:
			return nil, errors.Errorf("line %d: unrecognized directive %q", lineNumber, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read trace file")
	}
	if src.ProcessorCount() == 0 {
		return nil, errors.New("trace file contains no processors (no A directives)")
	}
	return src, nil
}

func parseValue(field string) (uint32, error) {
	// Base 0 accepts the decimal values the writer emits and 0x-prefixed
	// values from hand-edited traces.
	value, err := strconv.ParseUint(field, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}

func writeText(path string, src cpuid.Source) error {
	file, err := os.Create(path) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to create trace file")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	maxLeaf := cpuid.MaxLeaf(src)
	count := src.ProcessorCount()

	writeLeaf := func(leaf uint32) {
		fmt.Fprintf(writer, "L %d\n", leaf)
		for _, subleaf := range recordedSubleafs(src, leaf) {
			fmt.Fprintf(writer, "S %d %d %d %d %d\n", subleaf.Subleaf, subleaf.EAX, subleaf.EBX, subleaf.ECX, subleaf.EDX)
		}
	}
	writePerProcessorLeaf := func(leaf uint32) {
		for index := uint32(0); index < count; index++ {
			src.BindAffinity(index)
			writeLeaf(leaf)
		}
	}

	writeLeaf(cpuid.LeafBasic)
	if maxLeaf >= cpuid.LeafVersion {
		writeLeaf(cpuid.LeafVersion)
	}
	if maxLeaf >= cpuid.LeafCache {
		writePerProcessorLeaf(cpuid.LeafCache)
	}
	if maxLeaf >= cpuid.LeafExtTopology {
		writeLeaf(cpuid.LeafExtTopology)
	}
	if maxLeaf >= cpuid.LeafTLB {
		writePerProcessorLeaf(cpuid.LeafTLB)
	}
	if maxLeaf >= cpuid.LeafExtTopologyV2 {
		writeLeaf(cpuid.LeafExtTopologyV2)
	}
	for _, id := range gatherAPICIDs(src, maxLeaf) {
		fmt.Fprintf(writer, "A %d\n", id)
	}

	if err := writer.Flush(); err != nil {
		return errors.Wrap(err, "failed to write trace file")
	}
	return nil
}

// recordedSubleaf is one subleaf's registers as stored in a trace.
type recordedSubleaf struct {
	Subleaf uint32 `yaml:"subleaf"`
	EAX     uint32 `yaml:"eax"`
	EBX     uint32 `yaml:"ebx"`
	ECX     uint32 `yaml:"ecx"`
	EDX     uint32 `yaml:"edx"`
}

// recordedSubleafs reads a leaf's subleafs from the currently bound
// processor, applying the leaf's own termination rule. Leaves without
// subleaf enumeration record only subleaf 0.
func recordedSubleafs(src cpuid.Source, leaf uint32) []recordedSubleaf {
	var subleafs []recordedSubleaf
	first := src.Read(leaf, 0)
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		subleafs = append(subleafs, recordedSubleaf{Subleaf: subleaf, EAX: regs.EAX, EBX: regs.EBX, ECX: regs.ECX, EDX: regs.EDX})

		more := false
		switch leaf {
		case cpuid.LeafCache:
			more = regs.EAX&0x1F != 0
		case cpuid.LeafTLB:
			more = subleaf < first.EAX
		case cpuid.LeafExtTopology, cpuid.LeafExtTopologyV2:
			more = regs.EBX != 0
		}
		if !more {
			return subleafs
		}
	}
}

func gatherAPICIDs(src cpuid.Source, maxLeaf uint32) []uint32 {
	count := src.ProcessorCount()
	ids := make([]uint32, 0, count)
	for index := uint32(0); index < count; index++ {
		src.BindAffinity(index)
		if maxLeaf >= cpuid.LeafExtTopology {
			ids = append(ids, src.Read(cpuid.LeafExtTopology, 0).EDX)
		} else {
			ids = append(ids, src.Read(cpuid.LeafVersion, 0).EBX>>24)
		}
	}
	return ids
}
