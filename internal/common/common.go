// Package common defines data structures and functions that are used by
// multiple application commands, e.g., topology, cache, tlb, record.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cputopo/internal/cpuid"
	"cputopo/internal/report"
	"cputopo/internal/trace"
	"cputopo/internal/util"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	OutputDir string // OutputDir is the directory where the application will write output files.
	Version   string // Version is the version of the application.
	Debug     bool
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

var (
	FlagInput  string
	FlagFormat []string
)

const (
	FlagInputName  = "input"
	FlagFormatName = "format"
)

// AddSourceFlags adds the flags shared by every command that reads CPUID:
// the recorded trace input and the report format selection.
func AddSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&FlagInput, FlagInputName, "", "")
	cmd.Flags().StringSliceVar(&FlagFormat, FlagFormatName, []string{report.FormatAll}, "")
}

func SourceFlagGroup() FlagGroup {
	return FlagGroup{
		GroupName: "Input Options",
		Flags: []Flag{
			{Name: FlagInputName, Help: "path to a recorded CPUID trace file to analyze instead of this machine"},
			{Name: FlagFormatName, Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))},
		},
	}
}

// ValidateFormatFlag confirms every requested report format is supported.
func ValidateFormatFlag() error {
	for _, format := range FlagFormat {
		if format != report.FormatAll && !slices.Contains(report.FormatOptions, format) {
			return fmt.Errorf("format options are %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))
		}
	}
	return nil
}

// Formats expands the format flag into the list of formats to render,
// dropping duplicates.
func Formats() []string {
	if slices.Contains(FlagFormat, report.FormatAll) {
		return report.FormatOptions
	}
	var formats []string
	for _, format := range FlagFormat {
		formats = util.UniqueAppend(formats, format)
	}
	return formats
}

// NewSource opens the register source selected by the --input flag: a
// simulated source when a trace file was given, otherwise the hardware this
// process runs on.
func NewSource() (cpuid.Source, error) {
	if FlagInput != "" {
		input, err := util.AbsPath(FlagInput)
		if err != nil {
			return nil, err
		}
		exists, err := util.FileExists(input)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("trace file %s does not exist", input)
		}
		src, err := trace.Read(input)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded CPUID trace", slog.String("file", input), slog.Int("processors", int(src.ProcessorCount())))
		return src, nil
	}
	return cpuid.NewNativeSource(), nil
}

// CloseSource releases any resources the source took; native sources pin an
// OS thread for affinity binding.
func CloseSource(src cpuid.Source) {
	if native, ok := src.(*cpuid.NativeSource); ok {
		native.Close()
	}
}

// WriteReports renders the tables in the requested formats into the output
// directory and echoes the text report to stdout when it is a terminal.
func WriteReports(appContext AppContext, baseName string, formats []string, tables []report.TableValues) error {
	if err := util.EnsureDirectory(appContext.OutputDir); err != nil {
		return err
	}
	for _, format := range formats {
		out, err := report.Create(format, tables)
		if err != nil {
			return fmt.Errorf("failed to create %s report: %w", format, err)
		}
		reportPath := filepath.Join(appContext.OutputDir, baseName+"."+format)
		if err := os.WriteFile(reportPath, out, 0644); err != nil { // #nosec G306
			return fmt.Errorf("failed to write report file: %w", err)
		}
		fmt.Printf("%s report written to %s\n", format, reportPath)
		if format == report.FormatTxt && term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println()
			fmt.Print(string(out))
		}
	}
	return nil
}
