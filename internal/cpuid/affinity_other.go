// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux && !windows

package cpuid

// Affinity binding is unsupported on this platform; native reads observe
// whichever processor the scheduler selects.
func setThreadAffinity(index uint32) {
}
