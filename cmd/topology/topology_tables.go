// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"fmt"

	"cputopo/internal/cpuid"
	"cputopo/internal/report"
	"cputopo/internal/topology"
)

// threeDomainLayout builds the simplified logical processor/core/package
// view from the two shifts the three-domain decoders return.
func threeDomainLayout(packageShift uint32, lpShift uint32, description string) topology.Layout {
	layout := topology.Layout{
		ApicIDBits: 32,
		Levels: []topology.Level{
			{Domain: topology.DomainLogicalProcessor, Shift: lpShift},
			{Domain: topology.DomainCore, Shift: packageShift},
		},
		Description: description,
	}
	layout.BuildMasks()
	return layout
}

func buildTables(src cpuid.Source, layouts []topology.Layout, apicIDs []uint32) []report.TableValues {
	tables := []report.TableValues{sourceTable(src, apicIDs)}
	for _, layout := range layouts {
		tables = append(tables, levelsTable(layout))
	}
	if len(layouts) > 0 {
		tables = append(tables, processorsTable(layouts[0], apicIDs))
	}
	return tables
}

func sourceTable(src cpuid.Source, apicIDs []uint32) report.TableValues {
	sourceKind := "recorded trace"
	if src.IsNative() {
		sourceKind = "native CPUID"
	}
	return report.TableValues{
		Name: "Register Source",
		Fields: []report.Field{
			{Name: "Source", Values: []string{sourceKind}},
			{Name: "Logical Processors", Values: []string{fmt.Sprintf("%d", len(apicIDs))}},
			{Name: "Maximum Standard Leaf", Values: []string{fmt.Sprintf("0x%X", cpuid.MaxLeaf(src))}},
		},
	}
}

func levelsTable(layout topology.Layout) report.TableValues {
	name := layout.Description
	if name == "" {
		name = "APIC ID Bit Layout"
	}
	tableValues := report.TableValues{
		Name:    name,
		HasRows: true,
		Fields: []report.Field{
			{Name: "Domain"},
			{Name: "Shift"},
			{Name: "Global Mask"},
			{Name: "Mask Within Parent"},
		},
	}
	packageIndex := layout.PackageIndex()
	for i, level := range layout.Levels {
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, level.Domain.String())
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, fmt.Sprintf("%d", level.Shift))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, maskString(layout.Masks[i][i], layout.ApicIDBits))
		tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, maskString(layout.Masks[i][i+1], layout.ApicIDBits))
	}
	// the package boundary is not an enumerated level but has a mask row
	tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, "Package")
	tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, "")
	tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, maskString(layout.Masks[packageIndex][packageIndex], layout.ApicIDBits))
	tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, "")
	return tableValues
}

func processorsTable(layout topology.Layout, apicIDs []uint32) report.TableValues {
	tableValues := report.TableValues{
		Name:    "Logical Processors",
		HasRows: true,
		Fields: []report.Field{
			{Name: "Index"},
			{Name: "APIC ID"},
		},
	}
	packageIndex := layout.PackageIndex()
	for i, level := range layout.Levels {
		upper := "Package"
		if i+1 < packageIndex {
			upper = layout.Levels[i+1].Domain.String()
		}
		tableValues.Fields = append(tableValues.Fields, report.Field{Name: fmt.Sprintf("%s in %s", level.Domain, upper)})
	}
	tableValues.Fields = append(tableValues.Fields, report.Field{Name: "Package ID"})

	for index, apicID := range apicIDs {
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, fmt.Sprintf("%d", index))
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, fmt.Sprintf("0x%X", apicID))
		for i := range layout.Levels {
			relative := layout.RelativeID(i, i+1, apicID)
			tableValues.Fields[2+i].Values = append(tableValues.Fields[2+i].Values, fmt.Sprintf("%d", relative))
		}
		packageID := layout.GlobalID(packageIndex, apicID)
		tableValues.Fields[2+len(layout.Levels)].Values = append(tableValues.Fields[2+len(layout.Levels)].Values, fmt.Sprintf("0x%X", packageID))
	}
	return tableValues
}

func maskString(mask uint32, bits uint32) string {
	if bits == 8 {
		return fmt.Sprintf("0x%02X", mask&0xFF)
	}
	return fmt.Sprintf("0x%08X", mask)
}
