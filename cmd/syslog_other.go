// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !unix

package cmd

import (
	"fmt"
	"log/slog"
)

func newSyslogHandler(logOpts *slog.HandlerOptions) (slog.Handler, error) {
	return nil, fmt.Errorf("syslog logging is not supported on this platform")
}
