package cache

import (
	"context"
	"testing"
	"time"

	"github.com/aivory/fitstudio/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryProvider(t *testing.T) Provider {
	provider, err := New(Config{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return provider
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(Config{Type: "memcached"})
	assert.Error(t, err)
}

func TestMemoryProvider_SetGetDelete(t *testing.T) {
	provider := newMemoryProvider(t)
	ctx := context.Background()

	type payload struct {
		Value string `json:"value"`
	}

	require.NoError(t, provider.Set(ctx, "k", payload{Value: "v"}, time.Minute))

	var got payload
	require.NoError(t, provider.Get(ctx, "k", &got))
	assert.Equal(t, "v", got.Value)

	require.NoError(t, provider.Delete(ctx, "k"))
	err := provider.Get(ctx, "k", &got)
	assert.True(t, IsCacheMiss(err))
}

func TestHelper_UserRoundTrip(t *testing.T) {
	helper := NewHelper(newMemoryProvider(t), time.Minute)
	ctx := context.Background()

	user := &models.User{ID: "usr_1", Name: "Alice", Email: "alice@example.com", Credits: 10}
	require.NoError(t, helper.CacheUser(ctx, user))

	got, err := helper.GetUser(ctx, "usr_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 10, got.Credits)

	require.NoError(t, helper.InvalidateUser(ctx, "usr_1"))
	got, err = helper.GetUser(ctx, "usr_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHelper_NilProvider(t *testing.T) {
	helper := NewHelper(nil, 0)
	ctx := context.Background()

	assert.NoError(t, helper.CacheUser(ctx, &models.User{ID: "usr_1"}))
	got, err := helper.GetUser(ctx, "usr_1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
