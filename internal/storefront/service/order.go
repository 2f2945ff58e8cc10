package service

import (
	"context"
	"fmt"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// OrderService exposes the session's order history from the backend.
type OrderService struct {
	backend *backend.Client
	auth    *AuthService
}

// NewOrderService creates a new order service.
func NewOrderService(backend *backend.Client, auth *AuthService) *OrderService {
	return &OrderService{
		backend: backend,
		auth:    auth,
	}
}

// ListOrders returns the authenticated session's orders.
func (s *OrderService) ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.Unauthorized("login required")
	}

	orders, err := s.backend.Orders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

// GetOrderByCode returns one of the session's orders by its public code.
func (s *OrderService) GetOrderByCode(ctx context.Context, sessionID, code string) (*domain.Order, error) {
	if code == "" {
		return nil, apperrors.InvalidInput("order code is required")
	}

	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.Unauthorized("login required")
	}

	order, err := s.backend.OrderByCode(ctx, token, code)
	if err != nil {
		return nil, fmt.Errorf("get order by code: %w", err)
	}

	return order, nil
}
