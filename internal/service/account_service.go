package service

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// accountStore is the persistence surface the marketplace needs
type accountStore interface {
	CreateAccountListing(ctx context.Context, listing *models.AccountListing) error
	GetAvailableAccountListings(ctx context.Context) ([]models.AccountListing, error)
}

// AccountService handles the game-account marketplace
type AccountService struct {
	store  accountStore
	logger *zap.Logger
}

// NewAccountService creates a new account marketplace service
func NewAccountService(store accountStore) *AccountService {
	return &AccountService{store: store, logger: util.GetLogger()}
}

// ListAccounts retrieves listings still for sale
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.AccountListing, error) {
	return s.store.GetAvailableAccountListings(ctx)
}

// CreateAccountRequest represents a new marketplace listing
type CreateAccountRequest struct {
	Title       string `json:"title" binding:"required"`
	Game        string `json:"game" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
}

// CreateAccount lists a game account for sale
func (s *AccountService) CreateAccount(ctx context.Context, sellerID int64, req *CreateAccountRequest) (*models.AccountListing, error) {
	if req.Price <= 0 {
		return nil, invalidField("price", "must be positive")
	}

	listing := &models.AccountListing{
		SellerID:    sellerID,
		Title:       req.Title,
		Game:        req.Game,
		Description: req.Description,
		Price:       req.Price,
		Status:      models.ListingStatusAvailable,
	}
	if err := s.store.CreateAccountListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("Account listed",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("seller_id", sellerID))
	return listing, nil
}
