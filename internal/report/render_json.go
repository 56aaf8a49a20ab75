package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "encoding/json"

// jsonRecord maps field names to one row's values, e.g. one cache instance
// or one logical processor.
type jsonRecord map[string]string

// createJsonReport renders the tables as a single JSON object keyed by table
// name. Every table becomes an array of records so that the per-processor
// tables and the single-row summary tables share a shape. A table with
// fields but no values emits one record with blank values to keep the field
// names visible in the output.
func createJsonReport(allTableValues []TableValues) (out []byte, err error) {
	tables := make(map[string][]jsonRecord)
	for _, tableValues := range allTableValues {
		records := []jsonRecord{}
		if len(tableValues.Fields) > 0 {
			numRecords := len(tableValues.Fields[0].Values)
			if numRecords == 0 {
				blank := make(jsonRecord, len(tableValues.Fields))
				for _, field := range tableValues.Fields {
					blank[field.Name] = ""
				}
				records = append(records, blank)
			}
			for row := 0; row < numRecords; row++ {
				record := make(jsonRecord, len(tableValues.Fields))
				for _, field := range tableValues.Fields {
					record[field.Name] = field.Values[row]
				}
				records = append(records, record)
			}
		}
		tables[tableValues.Name] = records
	}
	return json.MarshalIndent(tables, "", " ")
}
