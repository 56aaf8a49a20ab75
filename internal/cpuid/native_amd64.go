// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build amd64

package cpuid

// cpuid executes the CPUID instruction with the given leaf in EAX and
// subleaf in ECX. Implemented in cpuid_amd64.s.
func cpuid(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)

func nativeRead(leaf, subleaf uint32) Registers {
	eax, ebx, ecx, edx := cpuid(leaf, subleaf)
	return Registers{EAX: eax, EBX: ebx, ECX: ecx, EDX: edx}
}
