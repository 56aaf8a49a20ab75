// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"runtime"
)

// NativeSource reads CPUID directly from the hardware. BindAffinity pins the
// calling goroutine's OS thread to the requested logical processor so that
// subsequent reads observe that processor's registers.
type NativeSource struct {
	lockedThread bool
}

// NewNativeSource returns a Source backed by the CPUID instruction.
func NewNativeSource() *NativeSource {
	return &NativeSource{}
}

func (s *NativeSource) Read(leaf uint32, subleaf uint32) Registers {
	return nativeRead(leaf, subleaf)
}

// BindAffinity pins the current OS thread to the given logical processor.
// Binding is best effort; if the OS rejects the request the thread keeps its
// previous affinity and subsequent reads reflect whichever processor the
// scheduler selects.
func (s *NativeSource) BindAffinity(index uint32) {
	if index >= s.ProcessorCount() {
		return
	}
	if !s.lockedThread {
		runtime.LockOSThread()
		s.lockedThread = true
	}
	setThreadAffinity(index)
}

func (s *NativeSource) ProcessorCount() uint32 {
	return uint32(runtime.NumCPU()) // #nosec G115
}

func (s *NativeSource) IsNative() bool {
	return true
}

// Close releases the OS thread pin taken by BindAffinity.
func (s *NativeSource) Close() {
	if s.lockedThread {
		runtime.UnlockOSThread()
		s.lockedThread = false
	}
}
