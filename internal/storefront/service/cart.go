package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/event"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in a cart.
	MaxItemsPerCart = 50
	// MaxPriceBani is the maximum price in bani (100,000.00 RON) allowed per item.
	MaxPriceBani = 100_000_00
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID int64  `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
}

// UpdateQuantityInput holds the parameters for setting an item quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartService implements the business logic for session carts.
//
// The cart is persisted as JSON in the key-value store under the session's
// cart key, so a returning session rehydrates the exact cart it left behind.
type CartService struct {
	store    repository.KeyValueStore
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store repository.KeyValueStore, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session. If no cart exists, returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	raw, err := s.store.Read(ctx, repository.KeyPrefixCart+sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Cart{Items: []domain.CartItem{}}, nil
		}
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// A corrupt cart entry is unrecoverable; start the session fresh.
		s.logger.WarnContext(ctx, "discarding corrupt cart entry",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return &domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return &cart, nil
}

// AddItem adds a product to the session's cart. If the product is already in
// the cart, its line quantity is increased by one instead of adding a second line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Price > MaxPriceBani {
		return nil, apperrors.InvalidInput(fmt.Sprintf("price must not exceed %d bani", MaxPriceBani))
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindItemIndex(input.ProductID); i >= 0 {
		if cart.Items[i].Quantity+1 > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
		}
		// The stored line keeps the name, price, and image it was added with.
		// A repeat add only bumps the quantity, so request payloads cannot
		// re-price a line mid-session.
		cart.Items[i].Quantity++
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID:       input.ProductID,
			Name:     input.Name,
			Price:    input.Price,
			Quantity: 1,
			ImageURL: input.ImageURL,
		})
	}

	if err := s.saveCart(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, sessionID, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", input.ProductID),
	)

	return cart, nil
}

// UpdateItemQuantity sets the quantity of a cart line. A quantity of 0 removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItemIndex(productID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", fmt.Sprintf("%d", productID))
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}

	if err := s.saveCart(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, sessionID, cart)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes every line for the given product from the cart.
// Removing a product that is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	cart.Items = kept

	if !removed {
		return cart, nil
	}

	if err := s.saveCart(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, sessionID, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", productID),
	)

	return cart, nil
}

// ClearCart removes the session's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.store.Remove(ctx, repository.KeyPrefixCart+sessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("remove cart: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", sessionID))

	return nil
}

func (s *CartService) saveCart(ctx context.Context, sessionID string, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyPrefixCart+sessionID, string(raw)); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

func (s *CartService) publishUpdated(ctx context.Context, sessionID string, cart *domain.Cart) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishCartUpdated(ctx, sessionID, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
