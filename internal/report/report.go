// Package report provides functions to generate topology reports in various
// formats such as txt, json, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

const (
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatXlsx}

// Field represents the values for a field in a table
type Field struct {
	Name   string
	Values []string
}

// TableValues is one table of a report: its fields and their values.
type TableValues struct {
	Name   string
	Fields []Field
	// HasRows marks tables displayed in row form, i.e., a field may have
	// multiple values.
	HasRows bool
	// NoDataFound overrides the message displayed when the table is empty.
	NoDataFound string
}

// Create generates a report in the specified format from the provided
// tables. It supports txt, json, and xlsx; any other format panics.
func Create(format string, allTableValues []TableValues) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, tableValues := range allTableValues {
		numRows := -1
		for _, fieldValues := range tableValues.Fields {
			if numRows == -1 {
				numRows = len(fieldValues.Values)
				continue
			}
			if len(fieldValues.Values) != numRows {
				return nil, fmt.Errorf("expected %d value(s) for field, found %d", numRows, len(fieldValues.Values))
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	panic(fmt.Sprintf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format))
}
