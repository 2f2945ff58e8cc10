package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository/memory"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCartService(store repository.KeyValueStore) *CartService {
	return NewCartService(store, nil, newTestLogger())
}

func TestCartService_GetCartEmpty(t *testing.T) {
	svc := newTestCartService(memory.NewStore())

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems())
}

func TestCartService_AddItem(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "sess-1", AddItemInput{
		ProductID: 7,
		Name:      "Invertor sudura MMA 200A",
		Price:     64900,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, int64(64900), cart.TotalPrice())
}

func TestCartService_AddItemMergesExistingLine(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	input := AddItemInput{ProductID: 7, Name: "Invertor sudura MMA 200A", Price: 64900}
	_, err := svc.AddItem(ctx, "sess-1", input)
	require.NoError(t, err)

	cart, err := svc.AddItem(ctx, "sess-1", input)
	require.NoError(t, err)

	// Same product stays one line with quantity bumped by one.
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.TotalItems())
	assert.Equal(t, int64(2*64900), cart.TotalPrice())
}

func TestCartService_MergeKeepsStoredLineFields(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{
		ProductID: 7,
		Name:      "Invertor sudura MMA 200A",
		Price:     64900,
		ImageURL:  "/img/invertor.jpg",
	})
	require.NoError(t, err)

	// A repeat add with a doctored payload must not re-price the line.
	cart, err := svc.AddItem(ctx, "sess-1", AddItemInput{
		ProductID: 7,
		Name:      "Invertor sudura (reduced)",
		Price:     100,
		ImageURL:  "/img/other.jpg",
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Invertor sudura MMA 200A", cart.Items[0].Name)
	assert.Equal(t, int64(64900), cart.Items[0].Price)
	assert.Equal(t, "/img/invertor.jpg", cart.Items[0].ImageURL)
	assert.Equal(t, int64(2*64900), cart.TotalPrice())
}

func TestCartService_AddDistinctProducts(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Name: "A", Price: 100})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Name: "B", Price: 250})
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(350), cart.TotalPrice())
}

func TestCartService_RehydratesFromStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	svc := newTestCartService(store)
	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 7, Name: "A", Price: 100})
	require.NoError(t, err)

	// A fresh service over the same store sees the same cart.
	again := newTestCartService(store)
	cart, err := again.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(7), cart.Items[0].ID)
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 7, Name: "A", Price: 100})
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(ctx, "sess-1", 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_UpdateQuantityToZeroRemovesLine(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 7, Name: "A", Price: 100})
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(ctx, "sess-1", 7, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_UpdateMissingItem(t *testing.T) {
	svc := newTestCartService(memory.NewStore())

	_, err := svc.UpdateItemQuantity(context.Background(), "sess-1", 99, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Name: "A", Price: 100})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Name: "B", Price: 200})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ID)
}

func TestCartService_RemoveMissingItemIsNoOp(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Name: "A", Price: 100})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "sess-1", 99)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_ClearCart(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Name: "A", Price: 100})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "sess-1"))

	cart, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	svc := newTestCartService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Name: "A", Price: 100})
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_RequiresSessionID(t *testing.T) {
	svc := newTestCartService(memory.NewStore())

	_, err := svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
