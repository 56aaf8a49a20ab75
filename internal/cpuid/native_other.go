// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !amd64

package cpuid

// CPUID is an x86 instruction. On other architectures a native source
// reports no identification data; recorded traces still work everywhere.
func nativeRead(leaf, subleaf uint32) Registers {
	return Registers{}
}
