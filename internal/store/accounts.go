package store

import (
	"context"

	"storefront/internal/models"
)

// CreateAccountListing inserts a marketplace listing
func (s *Store) CreateAccountListing(ctx context.Context, listing *models.AccountListing) error {
	query := `
		INSERT INTO account_listings (seller_id, title, game, description, price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, listing, query,
		listing.SellerID, listing.Title, listing.Game,
		listing.Description, listing.Price, listing.Status)
}

// GetAvailableAccountListings retrieves listings still for sale
func (s *Store) GetAvailableAccountListings(ctx context.Context) ([]models.AccountListing, error) {
	var listings []models.AccountListing
	err := s.db.SelectContext(ctx, &listings,
		"SELECT * FROM account_listings WHERE status = $1 ORDER BY created_at DESC",
		models.ListingStatusAvailable)
	return listings, err
}
