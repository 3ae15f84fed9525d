package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageBinFreeSpace(t *testing.T) {
	bin := StorageBin{Capacity: 100, CurrentLoad: 30}
	assert.Equal(t, uint(70), bin.FreeSpace())

	bin.CurrentLoad = 100
	assert.Equal(t, uint(0), bin.FreeSpace())

	// Bozulmuş veri: yük kapasiteyi aşsa bile negatife taşmaz
	bin.CurrentLoad = 120
	assert.Equal(t, uint(0), bin.FreeSpace())
}

func TestStorageBinUsagePercentage(t *testing.T) {
	bin := StorageBin{Capacity: 200, CurrentLoad: 50}
	assert.InDelta(t, 25.0, bin.UsagePercentage(), 0.001)

	bin.CurrentLoad = 0
	assert.Equal(t, 0.0, bin.UsagePercentage())

	// Sıfır kapasite sıfıra bölme üretmez
	zero := StorageBin{Capacity: 0, CurrentLoad: 10}
	assert.Equal(t, 0.0, zero.UsagePercentage())
}
