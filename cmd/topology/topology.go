// Package topology is a subcommand of the root command. It decodes and
// reports the processor topology enumerated by the CPUID instruction.
package topology

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
	"cputopo/internal/topology"
)

const cmdName = "topology"

var examples = []string{
	fmt.Sprintf("  Topology of the local host:      $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Topology from a recorded trace:  $ %s %s --input registers.txt", common.AppName, cmdName),
	fmt.Sprintf("  Legacy decode only:              $ %s %s --legacy", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Decode the processor topology from the CPUID topology leaves",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagLegacy bool

const flagLegacyName = "legacy"

func init() {
	common.AddSourceFlags(Cmd)
	Cmd.Flags().BoolVar(&flagLegacy, flagLegacyName, false, "")

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
				Name: flagLegacyName,
				Help: "decode with CPUID.1 and CPUID.4 even when the extended topology leaves exist",
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

	var layouts []topology.Layout
	leaf, extended := topology.TopologyLeaf(src)
	if extended && !flagLegacy {
		full, collapsed := topology.DecodeFull(src, leaf)
		layouts = append(layouts, full)
		if collapsed != nil {
			layouts = append(layouts, *collapsed)
		}
		packageShift, lpShift := topology.DecodeThreeDomain(src, leaf)
		layouts = append(layouts, threeDomainLayout(packageShift, lpShift, fmt.Sprintf("three-domain view of CPUID.0x%X", leaf)))
	} else {
		layouts = append(layouts, topology.DecodeLegacy(src))
	}
	apicIDs := topology.GatherPlatformIDs(src, cpuid.MaxProcessors)

	tables := buildTables(src, layouts, apicIDs)
	return common.WriteReports(appContext, cmdName, common.Formats(), tables)
}
