package devicehistory

import (
	"context"
	"fmt"
	"testing"

	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	require.NoError(t, store.Append(ctx, "dev1", device.Observation{Network: "corp-wifi"}))
	require.NoError(t, store.Append(ctx, "dev1", device.Observation{Network: "home"}))

	history, err := store.Load(ctx, "dev1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "corp-wifi", history[0].Network)
}

func TestMemoryStore_BoundEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "dev1", device.Observation{Network: fmt.Sprintf("net-%d", i)}))
	}

	history, err := store.Load(ctx, "dev1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "net-2", history[0].Network)
	assert.Equal(t, "net-4", history[2].Network)
}

func TestMemoryStore_UnknownDeviceIsEmpty(t *testing.T) {
	store := NewMemoryStore(10)

	history, err := store.Load(context.Background(), "ghost")

	require.NoError(t, err)
	assert.Empty(t, history)
}
