package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exoplanet-lab/internal/domain"
	"exoplanet-lab/internal/storage"
)

func testObject(name, host string, period float64) *domain.DiscoveredObject {
	return &domain.DiscoveredObject{
		Name:         name,
		Host:         host,
		PeriodDays:   period,
		RadiusEarth:  1.4,
		DepthPPM:     4800,
		Label:        domain.LabelCandidate,
		Probability:  0.72,
		Dataset:      domain.DatasetTESS,
		DiscoveredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestDiscoveryStore_InsertAndGetByName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	obj := testObject("TIC 100 b", "TIC 100", 3.49)
	require.NoError(t, store.Insert(ctx, obj))

	retrieved, err := store.GetByName(ctx, "TIC 100 b")
	require.NoError(t, err)

	assert.Equal(t, obj.Name, retrieved.Name)
	assert.Equal(t, obj.Host, retrieved.Host)
	assert.Equal(t, obj.PeriodDays, retrieved.PeriodDays)
	assert.Equal(t, obj.RadiusEarth, retrieved.RadiusEarth)
	assert.Equal(t, obj.DepthPPM, retrieved.DepthPPM)
	assert.Equal(t, obj.Label, retrieved.Label)
	assert.Equal(t, obj.Probability, retrieved.Probability)
	assert.Equal(t, obj.Dataset, retrieved.Dataset)
	assert.NotZero(t, retrieved.CreatedAt)
}

func TestDiscoveryStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testObject("TIC 200 b", "TIC 200", 5.0)))

	err := store.Insert(ctx, testObject("TIC 200 b", "TIC 200", 5.0))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDiscoveryStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.DiscoveredObject{}), storage.ErrInvalidInput)

	bad := testObject("TIC 201 b", "TIC 201", 5.0)
	bad.Label = "Maybe"
	assert.ErrorIs(t, store.Insert(ctx, bad), storage.ErrInvalidInput)
}

func TestDiscoveryStore_GetByNameNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)

	_, err := store.GetByName(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiscoveryStore_GetByHost(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testObject("TIC 300 b", "TIC 300", 3.0)))
	require.NoError(t, store.Insert(ctx, testObject("TIC 300 c", "TIC 300", 7.0)))
	require.NoError(t, store.Insert(ctx, testObject("TIC 999 b", "TIC 999", 3.0)))

	objects, err := store.GetByHost(ctx, "TIC 300")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "TIC 300 b", objects[0].Name)
	assert.Equal(t, "TIC 300 c", objects[1].Name)
}

func TestDiscoveryStore_ExistsByName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testObject("TIC 400 b", "TIC 400", 2.2)))

	exists, err := store.ExistsByName(ctx, "TIC 400 b")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByName(ctx, "TIC 400 c")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiscoveryStore_ExistsByHostPeriod(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testObject("TIC 500 b", "TIC 500", 10.0)))

	// 0.5% away: inside a 1% tolerance.
	exists, err := store.ExistsByHostPeriod(ctx, "TIC 500", 10.05, 0.01)
	require.NoError(t, err)
	assert.True(t, exists)

	// 2% away: outside.
	exists, err = store.ExistsByHostPeriod(ctx, "TIC 500", 10.2, 0.01)
	require.NoError(t, err)
	assert.False(t, exists)

	// Different host.
	exists, err = store.ExistsByHostPeriod(ctx, "TIC 501", 10.0, 0.01)
	require.NoError(t, err)
	assert.False(t, exists)

	// Invalid period.
	_, err = store.ExistsByHostPeriod(ctx, "TIC 500", 0, 0.01)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestDiscoveryStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDiscoveryStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		obj := testObject(fmt.Sprintf("TIC 60%d b", i), fmt.Sprintf("TIC 60%d", i), float64(i+2))
		obj.DiscoveredAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Insert(ctx, obj))
	}

	objects, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, objects, 3)
	// Newest first.
	assert.Equal(t, "TIC 602 b", objects[0].Name)
	assert.Equal(t, "TIC 600 b", objects[2].Name)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
