package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("search.mode", "hybrid"))

	val, ok := store.Get("search.mode")
	assert.True(t, ok)
	assert.Equal(t, "hybrid", val)

	// Updates overwrite.
	require.NoError(t, store.Set("search.mode", "keyword_only"))
	val, _ = store.Get("search.mode")
	assert.Equal(t, "keyword_only", val)

	_, ok = store.Get("nonexistent")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("string", "value")
	_ = store.Set("int", 42)
	_ = store.Set("int64", int64(43))
	_ = store.Set("float", 0.6)
	_ = store.Set("bool", true)
	_ = store.Set("slice", []string{"a", "b"})
	_ = store.Set("anyslice", []any{"c", "d", 5})

	// GetString
	assert.Equal(t, "value", store.GetString("string"))
	assert.Equal(t, "", store.GetString("int"))
	assert.Equal(t, "", store.GetString("missing"))

	// GetInt converts from int64 and float64
	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 43, store.GetInt("int64"))
	assert.Equal(t, 0, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("string"))

	// GetFloat64 converts from integral types
	assert.InDelta(t, 0.6, store.GetFloat64("float"), 1e-12)
	assert.InDelta(t, 42.0, store.GetFloat64("int"), 1e-12)
	assert.InDelta(t, 43.0, store.GetFloat64("int64"), 1e-12)
	assert.Zero(t, store.GetFloat64("string"))
	assert.Zero(t, store.GetFloat64("missing"))

	// GetBool
	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("string"))
	assert.False(t, store.GetBool("missing"))

	// GetStringSlice handles both []string and []any, skipping
	// non-string elements.
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice"))
	assert.Equal(t, []string{"c", "d"}, store.GetStringSlice("anyslice"))
	assert.Nil(t, store.GetStringSlice("int"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("key", "value")
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, "value", store.GetString("key"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key-%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key-%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("key-%d", i)))
	}
}
