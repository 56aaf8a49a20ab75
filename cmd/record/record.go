// Package record is a subcommand of the root command. It records the CPUID
// register values of every logical processor to a trace file that the other
// commands can later analyze in place of live hardware.
package record

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cputopo/internal/common"
	"cputopo/internal/trace"
	"cputopo/internal/util"
)

const cmdName = "record"

var examples = []string{
	fmt.Sprintf("  Record this machine to a text trace:  $ %s %s --trace registers.txt", common.AppName, cmdName),
	fmt.Sprintf("  Record this machine to a YAML trace:  $ %s %s --trace registers.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Convert a trace between formats:      $ %s %s --input registers.txt --trace registers.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Record CPUID register values to a trace file",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagTrace string

const flagTraceName = "trace"

func init() {
	Cmd.Flags().StringVar(&common.FlagInput, common.FlagInputName, "", "")
	Cmd.Flags().StringVar(&flagTrace, flagTraceName, "registers.txt", "")

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
	return []common.FlagGroup{
		{
			GroupName: "Options",
			Flags: []common.Flag{
				{
					Name: flagTraceName,
					Help: "path of the trace file to write, a .yaml or .yml suffix selects the YAML format",
				},
				{
					Name: common.FlagInputName,
					Help: "record from an existing trace file instead of this machine",
				},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagTrace == "" {
		err := fmt.Errorf("a trace file path is required")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	src, err := common.NewSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer common.CloseSource(src)

	tracePath, err := util.AbsPath(flagTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := trace.Write(tracePath, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	fmt.Printf("CPUID trace written to %s\n", tracePath)
	return nil
}
