package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "cart:s1", "value"))

	got, err := store.Read(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, store.Remove(ctx, "cart:s1"))
	_, err = store.Read(ctx, "cart:s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_ReadMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Read(context.Background(), "absent")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_RemoveMissingIsNoOp(t *testing.T) {
	store := NewStore()

	assert.NoError(t, store.Remove(context.Background(), "absent"))
}
