// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cputopo/internal/cpuid"
)

// recordedMachine builds a 2-thread machine with extended topology, one
// shared L1-style cache description, and one TLB description.
func recordedMachine() *cpuid.SimulatedSource {
	src := cpuid.NewSimulatedSource()
	src.SetLeaf(cpuid.LeafBasic, 0, cpuid.Registers{EAX: cpuid.LeafTLB})
	src.SetLeaf(cpuid.LeafVersion, 0, cpuid.Registers{EAX: 0x806C1, EBX: 2 << 16, EDX: 1 << 28})
	src.SetLeaf(cpuid.LeafExtTopology, 0, cpuid.Registers{EAX: 1, EBX: 2, ECX: 1 << 8})
	src.SetLeaf(cpuid.LeafExtTopology, 1, cpuid.Registers{ECX: 1})
	for processor := uint32(0); processor < 2; processor++ {
		src.AddAPICID(processor)
		src.SetProcessorLeaf(cpuid.LeafCache, processor, 0, cpuid.Registers{EAX: 1 | 1<<5 | 1<<8 | 1<<14, EBX: 7<<22 | 63, ECX: 63})
		src.SetProcessorLeaf(cpuid.LeafCache, processor, 1, cpuid.Registers{})
		src.SetProcessorLeaf(cpuid.LeafTLB, processor, 0, cpuid.Registers{EAX: 1})
		src.SetProcessorLeaf(cpuid.LeafTLB, processor, 1, cpuid.Registers{EBX: 4<<16 | 1, ECX: 64, EDX: 1 | 1<<5 | 1<<14})
	}
	return src
}

func assertSameSource(t *testing.T, want cpuid.Source, got *cpuid.SimulatedSource) {
	t.Helper()
	require.Equal(t, want.ProcessorCount(), got.ProcessorCount())
	assert.Equal(t, cpuid.MaxLeaf(want), cpuid.MaxLeaf(got))
	for index := uint32(0); index < want.ProcessorCount(); index++ {
		want.BindAffinity(index)
		got.BindAffinity(index)
		for _, leaf := range []uint32{cpuid.LeafBasic, cpuid.LeafVersion, cpuid.LeafCache, cpuid.LeafExtTopology, cpuid.LeafTLB} {
			for subleaf := uint32(0); subleaf < 2; subleaf++ {
				assert.Equal(t, want.Read(leaf, subleaf), got.Read(leaf, subleaf), "leaf 0x%X subleaf %d processor %d", leaf, subleaf, index)
			}
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	src := recordedMachine()
	path := filepath.Join(t.TempDir(), "registers.txt")
	require.NoError(t, Write(path, src))

	loaded, err := Read(path)
	require.NoError(t, err)
	assertSameSource(t, src, loaded)
	assert.Equal(t, []uint32{0, 1}, loaded.APICIDs())
	assert.False(t, loaded.IsNative())
}

func TestYAMLRoundTrip(t *testing.T) {
	src := recordedMachine()
	path := filepath.Join(t.TempDir(), "registers.yaml")
	require.NoError(t, Write(path, src))

	loaded, err := Read(path)
	require.NoError(t, err)
	assertSameSource(t, src, loaded)
	assert.Equal(t, []uint32{0, 1}, loaded.APICIDs())
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("trace.yaml"))
	assert.True(t, IsYAML("trace.YML"))
	assert.False(t, IsYAML("trace.txt"))
	assert.False(t, IsYAML("trace"))
}

func TestReadTextParsesHexValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.txt")
	content := "L 0\nS 0 0x18 0 0 0\nL 1\nS 0 0 0x20000 0 0x10000000\nA 0x1F\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	src, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x18), cpuid.MaxLeaf(src))
	assert.Equal(t, []uint32{0x1F}, src.APICIDs())
}

func TestReadTextRejectsUnknownDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.txt")
	require.NoError(t, os.WriteFile(path, []byte("L 0\nX 1 2 3\n"), 0644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadTextRejectsTruncatedSubleaf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.txt")
	require.NoError(t, os.WriteFile(path, []byte("L 4\nS 0 1 2\n"), 0644))

	_, err := Read(path)
	require.Error(t, err)
}

func TestReadTextRequiresProcessors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.txt")
	require.NoError(t, os.WriteFile(path, []byte("L 0\nS 0 24 0 0 0\n"), 0644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no processors")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
