// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainKnown(t *testing.T) {
	assert.True(t, DomainInvalid.Known())
	assert.True(t, DomainLogicalProcessor.Known())
	assert.True(t, DomainCore.Known())
	assert.True(t, DomainModule.Known())
	assert.True(t, DomainTile.Known())
	assert.True(t, DomainDie.Known())
	assert.True(t, DomainDieGroup.Known())
	assert.False(t, Domain(7).Known())
	assert.False(t, Domain(0x90).Known())
}

func TestDomainString(t *testing.T) {
	assert.Equal(t, "LogicalProcessor", DomainLogicalProcessor.String())
	assert.Equal(t, "Core", DomainCore.String())
	assert.Equal(t, "Die", DomainDie.String())
	assert.Equal(t, "Unknown(42)", Domain(42).String())
}
