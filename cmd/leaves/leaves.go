// Package leaves is a subcommand of the root command. It dumps the raw
// register values of the CPUID leaves the decoders consume.
package leaves

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cputopo/internal/common"
	"cputopo/internal/cpuid"
)

const cmdName = "leaves"

var examples = []string{
	fmt.Sprintf("  Dump the leaves read on processor 0:   $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Dump the leaves of every processor:    $ %s %s --all", common.AppName, cmdName),
	fmt.Sprintf("  Dump leaves from a recorded trace:     $ %s %s --input registers.txt", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Dump the raw CPUID register values used for topology decoding",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagProcessor uint32
	flagAll       bool
)

const (
	flagProcessorName = "processor"
	flagAllName       = "all"
)

func init() {
	common.AddSourceFlags(Cmd)
	Cmd.Flags().Uint32Var(&flagProcessor, flagProcessorName, 0, "")
	Cmd.Flags().BoolVar(&flagAll, flagAllName, false, "")

	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if cmd.Parent().PersistentFlags().Lookup(pf.Name).DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(pf.Name).DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Options",
		Flags: []common.Flag{
			{
				Name: flagProcessorName,
				Help: "enumeration index of the logical processor to dump",
			},
			{
				Name: flagAllName,
				Help: "dump the per-processor leaves of every logical processor",
			},
		},
	})
	groups = append(groups, common.SourceFlagGroup())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateFormatFlag(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	src, err := common.NewSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer common.CloseSource(src)

	if flagProcessor >= src.ProcessorCount() {
		err := fmt.Errorf("processor index %d out of range, source has %d logical processors", flagProcessor, src.ProcessorCount())
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	processors := []uint32{flagProcessor}
	if flagAll {
		count := min(src.ProcessorCount(), cpuid.MaxProcessors)
		processors = processors[:0]
		for index := uint32(0); index < count; index++ {
			processors = append(processors, index)
		}
	}
	tables := buildTables(src, processors)
	return common.WriteReports(appContext, cmdName, common.Formats(), tables)
}
