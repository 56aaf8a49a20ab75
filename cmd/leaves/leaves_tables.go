// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package leaves

import (
	"fmt"

	"cputopo/internal/cpuid"
	"cputopo/internal/report"
)

type dumpedSubleaf struct {
	leaf    uint32
	subleaf uint32
	regs    cpuid.Registers
}

func buildTables(src cpuid.Source, processors []uint32) []report.TableValues {
	maxLeaf := cpuid.MaxLeaf(src)

	var shared []dumpedSubleaf
	for _, leaf := range []uint32{cpuid.LeafBasic, cpuid.LeafVersion, cpuid.LeafExtTopology, cpuid.LeafExtTopologyV2} {
		if leaf <= maxLeaf {
			shared = append(shared, dumpSubleafs(src, leaf)...)
		}
	}
	tables := []report.TableValues{leafTable("Shared CPUID Leaves", shared)}

	for _, index := range processors {
		src.BindAffinity(index)
		var perProcessor []dumpedSubleaf
		for _, leaf := range []uint32{cpuid.LeafCache, cpuid.LeafTLB} {
			if leaf <= maxLeaf {
				perProcessor = append(perProcessor, dumpSubleafs(src, leaf)...)
			}
		}
		tables = append(tables, leafTable(fmt.Sprintf("Processor %d CPUID Leaves", index), perProcessor))
	}
	return tables
}

// dumpSubleafs walks a leaf's subleafs using its termination rule,
// including the terminating subleaf so the dump shows the decoder's
// stopping point.
func dumpSubleafs(src cpuid.Source, leaf uint32) []dumpedSubleaf {
	var dumped []dumpedSubleaf
	for subleaf := uint32(0); ; subleaf++ {
		regs := src.Read(leaf, subleaf)
		dumped = append(dumped, dumpedSubleaf{leaf: leaf, subleaf: subleaf, regs: regs})
		switch leaf {
		case cpuid.LeafCache:
			if regs.EAX&0x1F == 0 {
				return dumped
			}
		case cpuid.LeafTLB:
			if subleaf >= src.Read(leaf, 0).EAX {
				return dumped
			}
		case cpuid.LeafExtTopology, cpuid.LeafExtTopologyV2:
			if regs.EBX == 0 {
				return dumped
			}
		default:
			return dumped
		}
	}
}

func leafTable(name string, dumped []dumpedSubleaf) report.TableValues {
	tableValues := report.TableValues{
		Name:        name,
		HasRows:     true,
		NoDataFound: "No leaves available.",
		Fields: []report.Field{
			{Name: "Leaf"},
			{Name: "Subleaf"},
			{Name: "EAX"},
			{Name: "EBX"},
			{Name: "ECX"},
			{Name: "EDX"},
		},
	}
	for _, d := range dumped {
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, fmt.Sprintf("0x%X", d.leaf))
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, fmt.Sprintf("%d", d.subleaf))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, fmt.Sprintf("0x%08X", d.regs.EAX))
		tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, fmt.Sprintf("0x%08X", d.regs.EBX))
		tableValues.Fields[4].Values = append(tableValues.Fields[4].Values, fmt.Sprintf("0x%08X", d.regs.ECX))
		tableValues.Fields[5].Values = append(tableValues.Fields[5].Values, fmt.Sprintf("0x%08X", d.regs.EDX))
	}
	return tableValues
}
