// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

// Level is one tier of the decoded hierarchy. Shift is cumulative: the
// number of low APIC ID bits that identify this domain and everything below
// it. Levels are always ordered by increasing shift.
type Level struct {
	Domain Domain
	Shift  uint32
}

// Layout is a decoded APIC ID bit layout: the enumerated levels plus the
// mask matrix derived from their cumulative shifts. The package itself is
// not an enumerated level; the last level's shift is the package boundary,
// and the mask matrix has one extra row/column for it at PackageIndex.
type Layout struct {
	// ApicIDBits is the width of the identifiers this layout applies to:
	// 8 for the legacy decode path, 32 for extended topology leaves.
	ApicIDBits uint32

	Levels []Level

	// Masks[i][j], i <= j, isolates level i's identifier bits relative to
	// level j's boundary. Diagonal entries are global masks: Masks[i][i]
	// strips all bits belonging to levels below i, so two APIC IDs with
	// equal masked values share the same instance of domain i.
	Masks [][]uint32

	// Description records how this layout was derived, for display only.
	Description string
}

// PackageIndex returns the mask matrix index of the package boundary.
func (l *Layout) PackageIndex() int {
	return len(l.Levels)
}

// BuildMasks derives the domain mask matrix from the levels' cumulative
// shifts. Levels must already be in ascending shift order.
func (l *Layout) BuildMasks() {
	n := len(l.Levels)
	masks := make([][]uint32, n+1)
	for i := range masks {
		masks[i] = make([]uint32, n+1)
	}

	// Global masks: each level's mask removes the bits of every level
	// below it. The extra row at index n is the package boundary.
	prev := uint32(0)
	for i := 0; i <= n; i++ {
		masks[i][i] = ^((uint32(1) << prev) - 1)
		if i < n {
			prev = l.Levels[i].Shift
		}
	}

	// Relative masks: level i's ID relative to a higher level j keeps the
	// bits of i's global mask that are not part of j's global mask.
	for i := 0; i < n; i++ {
		for j := i + 1; j <= n; j++ {
			masks[i][j] = ^masks[j][j] & masks[i][i]
		}
	}
	l.Masks = masks
}

// GlobalID extracts the system-wide identifier of the given level from an
// APIC ID. Two processors with the same GlobalID share that domain instance.
func (l *Layout) GlobalID(level int, apicID uint32) uint32 {
	return apicID & l.Masks[level][level]
}

// RelativeID extracts the identifier of level within one instance of the
// higher level upper, shifted down to a zero-based value.
func (l *Layout) RelativeID(level int, upper int, apicID uint32) uint32 {
	return (apicID & l.Masks[level][upper]) >> l.lowShift(level)
}

// lowShift returns the cumulative shift of the level below the given one,
// i.e. the bit position where this level's ID field starts.
func (l *Layout) lowShift(level int) uint32 {
	if level == 0 {
		return 0
	}
	return l.Levels[level-1].Shift
}
