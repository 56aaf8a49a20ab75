// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// setThreadAffinity binds the current thread to a single logical processor.
// Only the first 64 processors are addressable through the thread affinity
// mask; larger systems need processor groups which this tool does not model.
func setThreadAffinity(index uint32) {
	if index >= 64 {
		slog.Warn("processor index beyond affinity mask range", slog.Int("processor", int(index)))
		return
	}
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), uintptr(1)<<index)
	if ret == 0 {
		slog.Warn("failed to set processor affinity", slog.Int("processor", int(index)), slog.String("error", err.Error()))
	}
}
