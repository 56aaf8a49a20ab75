// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// setThreadAffinity binds the current thread to a single logical processor
// using sched_setaffinity(2) with a one-CPU mask.
func setThreadAffinity(index uint32) {
	var set unix.CPUSet
	set.Zero()
	set.Set(int(index))
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		slog.Warn("failed to set processor affinity", slog.Int("processor", int(index)), slog.String("error", err.Error()))
	}
}
