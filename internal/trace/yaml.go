// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"cputopo/internal/cpuid"
)

// document is the YAML trace layout: shared leaves once, the asymmetric
// cache and TLB leaves per processor next to the processor's APIC ID.
type document struct {
	Leaves     []recordedLeaf      `yaml:"leaves"`
	Processors []recordedProcessor `yaml:"processors"`
}

type recordedLeaf struct {
	Leaf     uint32            `yaml:"leaf"`
	Subleafs []recordedSubleaf `yaml:"subleafs"`
}

type recordedProcessor struct {
	APICID uint32            `yaml:"apicid"`
	Cache  []recordedSubleaf `yaml:"cache,omitempty"`
	TLB    []recordedSubleaf `yaml:"tlb,omitempty"`
}

func readYAML(path string) (*cpuid.SimulatedSource, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read trace file")
	}
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML trace")
	}
	if len(doc.Processors) == 0 {
		return nil, errors.New("trace contains no processors")
	}

	src := cpuid.NewSimulatedSource()
	for _, leaf := range doc.Leaves {
		for _, subleaf := range leaf.Subleafs {
			src.SetLeaf(leaf.Leaf, subleaf.Subleaf, subleaf.registers())
		}
	}
	for index, processor := range doc.Processors {
		src.AddAPICID(processor.APICID)
		for _, subleaf := range processor.Cache {
			src.SetProcessorLeaf(cpuid.LeafCache, uint32(index), subleaf.Subleaf, subleaf.registers()) // #nosec G115
		}
		for _, subleaf := range processor.TLB {
			src.SetProcessorLeaf(cpuid.LeafTLB, uint32(index), subleaf.Subleaf, subleaf.registers()) // #nosec G115
		}
	}
	return src, nil
}

func writeYAML(path string, src cpuid.Source) error {
	var doc document
	maxLeaf := cpuid.MaxLeaf(src)
	count := src.ProcessorCount()

	sharedLeaves := []uint32{cpuid.LeafBasic}
	if maxLeaf >= cpuid.LeafVersion {
		sharedLeaves = append(sharedLeaves, cpuid.LeafVersion)
	}
	if maxLeaf >= cpuid.LeafExtTopology {
		sharedLeaves = append(sharedLeaves, cpuid.LeafExtTopology)
	}
	if maxLeaf >= cpuid.LeafExtTopologyV2 {
		sharedLeaves = append(sharedLeaves, cpuid.LeafExtTopologyV2)
	}
	for _, leaf := range sharedLeaves {
		doc.Leaves = append(doc.Leaves, recordedLeaf{Leaf: leaf, Subleafs: recordedSubleafs(src, leaf)})
	}

	apicIDs := gatherAPICIDs(src, maxLeaf)
	for index := uint32(0); index < count; index++ {
		src.BindAffinity(index)
		processor := recordedProcessor{APICID: apicIDs[index]}
		if maxLeaf >= cpuid.LeafCache {
			processor.Cache = recordedSubleafs(src, cpuid.LeafCache)
		}
		if maxLeaf >= cpuid.LeafTLB {
			processor.TLB = recordedSubleafs(src, cpuid.LeafTLB)
		}
		doc.Processors = append(doc.Processors, processor)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal YAML trace")
	}
	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306
		return errors.Wrap(err, "failed to write trace file")
	}
	return nil
}

func (s recordedSubleaf) registers() cpuid.Registers {
	return cpuid.Registers{EAX: s.EAX, EBX: s.EBX, ECX: s.ECX, EDX: s.EDX}
}
