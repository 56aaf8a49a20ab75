// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package tlb

import (
	"fmt"
	"strings"

	"cputopo/internal/report"
	"cputopo/internal/resource"
)

func buildTables(tlbs []resource.TLB) []report.TableValues {
	tableValues := report.TableValues{
		Name:        "TLB Instances",
		HasRows:     true,
		NoDataFound: "No TLBs enumerated.",
		Fields: []report.Field{
			{Name: "TLB"},
			{Name: "Page Sizes"},
			{Name: "Ways"},
			{Name: "Sets"},
			{Name: "Partitioning"},
			{Name: "Fully Associative"},
			{Name: "ID"},
			{Name: "Shared By"},
			{Name: "Members"},
		},
	}
	for _, tlb := range tlbs {
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, fmt.Sprintf("L%d %s", tlb.Level, tlb.Type))
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, pageSizes(tlb))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, fmt.Sprintf("%d", tlb.Ways))
		tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, fmt.Sprintf("%d", tlb.Sets))
		tableValues.Fields[4].Values = append(tableValues.Fields[4].Values, fmt.Sprintf("%d", tlb.Partitioning))
		tableValues.Fields[5].Values = append(tableValues.Fields[5].Values, yesNo(tlb.FullyAssociative))
		tableValues.Fields[6].Values = append(tableValues.Fields[6].Values, fmt.Sprintf("0x%X", tlb.ID))
		tableValues.Fields[7].Values = append(tableValues.Fields[7].Values, fmt.Sprintf("%d", len(tlb.Members)))
		tableValues.Fields[8].Values = append(tableValues.Fields[8].Values, memberList(tlb.Members))
	}
	return []report.TableValues{tableValues}
}

func pageSizes(tlb resource.TLB) string {
	var sizes []string
	if tlb.Pages4K {
		sizes = append(sizes, "4K")
	}
	if tlb.Pages2M {
		sizes = append(sizes, "2M")
	}
	if tlb.Pages4M {
		sizes = append(sizes, "4M")
	}
	if tlb.Pages1G {
		sizes = append(sizes, "1G")
	}
	return strings.Join(sizes, "+")
}

func memberList(members []uint32) string {
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, fmt.Sprintf("0x%X", member))
	}
	return strings.Join(ids, ",")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
