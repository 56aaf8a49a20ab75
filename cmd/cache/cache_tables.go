// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"fmt"
	"strings"

	"cputopo/internal/report"
	"cputopo/internal/resource"
)

func buildTables(caches []resource.Cache) []report.TableValues {
	return []report.TableValues{
		cacheInstancesTable(caches),
		cacheAttributesTable(caches),
	}
}

func cacheInstancesTable(caches []resource.Cache) report.TableValues {
	tableValues := report.TableValues{
		Name:        "Cache Instances",
		HasRows:     true,
		NoDataFound: "No caches enumerated.",
		Fields: []report.Field{
			{Name: "Cache"},
			{Name: "Size"},
			{Name: "Ways"},
			{Name: "Sets"},
			{Name: "Line Size"},
			{Name: "ID"},
			{Name: "Shared By"},
			{Name: "Members"},
		},
	}
	for _, cache := range caches {
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, fmt.Sprintf("L%d %s", cache.Level, cache.Type))
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, report.FormatBytes(cache.SizeBytes))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, fmt.Sprintf("%d", cache.Ways))
		tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, fmt.Sprintf("%d", cache.Sets))
		tableValues.Fields[4].Values = append(tableValues.Fields[4].Values, fmt.Sprintf("%d B", cache.LineSize))
		tableValues.Fields[5].Values = append(tableValues.Fields[5].Values, fmt.Sprintf("0x%X", cache.ID))
		tableValues.Fields[6].Values = append(tableValues.Fields[6].Values, fmt.Sprintf("%d", len(cache.Members)))
		tableValues.Fields[7].Values = append(tableValues.Fields[7].Values, memberList(cache.Members))
	}
	return tableValues
}

func cacheAttributesTable(caches []resource.Cache) report.TableValues {
	tableValues := report.TableValues{
		Name:        "Cache Attributes",
		HasRows:     true,
		NoDataFound: "No caches enumerated.",
		Fields: []report.Field{
			{Name: "Cache"},
			{Name: "ID"},
			{Name: "Partitions"},
			{Name: "Self Initializing"},
			{Name: "Fully Associative"},
			{Name: "Inclusive"},
			{Name: "Indexing"},
			{Name: "WBINVD Flushes Lower Levels"},
		},
	}
	for _, cache := range caches {
		indexing := "direct mapped"
		if cache.Complex {
			indexing = "complex"
		}
		tableValues.Fields[0].Values = append(tableValues.Fields[0].Values, fmt.Sprintf("L%d %s", cache.Level, cache.Type))
		tableValues.Fields[1].Values = append(tableValues.Fields[1].Values, fmt.Sprintf("0x%X", cache.ID))
		tableValues.Fields[2].Values = append(tableValues.Fields[2].Values, fmt.Sprintf("%d", cache.Partitions))
		tableValues.Fields[3].Values = append(tableValues.Fields[3].Values, yesNo(cache.SelfInitializing))
		tableValues.Fields[4].Values = append(tableValues.Fields[4].Values, yesNo(cache.FullyAssociative))
		tableValues.Fields[5].Values = append(tableValues.Fields[5].Values, yesNo(cache.Inclusive))
		tableValues.Fields[6].Values = append(tableValues.Fields[6].Values, indexing)
		tableValues.Fields[7].Values = append(tableValues.Fields[7].Values, yesNo(cache.WbinvdFlushesLower))
	}
	return tableValues
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
