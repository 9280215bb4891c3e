package store

import (
	"context"

	"storefront/internal/models"
)

// CreateHwidLog appends one activation log row
func (s *Store) CreateHwidLog(ctx context.Context, log *models.HwidLog) error {
	query := `
		INSERT INTO hwid_logs (user_id, product_id, hwid, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, log, query,
		log.UserID, log.ProductID, log.Hwid, log.Status)
}

// HasActiveHwidLog reports whether at least one active activation row
// exists for the user/product pair
func (s *Store) HasActiveHwidLog(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM hwid_logs
			WHERE user_id = $1 AND product_id = $2 AND status = $3
		)`, userID, productID, models.HwidStatusActive)
	return exists, err
}

// GetHwidLogsByUserID retrieves the activation history for a user
func (s *Store) GetHwidLogsByUserID(ctx context.Context, userID int64) ([]models.HwidLog, error) {
	var logs []models.HwidLog
	err := s.db.SelectContext(ctx, &logs,
		"SELECT * FROM hwid_logs WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return logs, err
}
