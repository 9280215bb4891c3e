package service

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// reviewStore is the persistence surface reviews need
type reviewStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewsByProductID(ctx context.Context, productID int64) ([]models.Review, error)
}

// ReviewService handles product reviews
type ReviewService struct {
	store  reviewStore
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store reviewStore) *ReviewService {
	return &ReviewService{store: store, logger: util.GetLogger()}
}

// ListReviews retrieves reviews for a product, newest first
func (s *ReviewService) ListReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.GetReviewsByProductID(ctx, productID)
}

// CreateReviewRequest represents a review submission
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Body      string `json:"body" binding:"required"`
}

// CreateReview validates and stores a review for an existing product
func (s *ReviewService) CreateReview(ctx context.Context, userID int64, req *CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, invalidField("rating", "must be between 1 and 5")
	}

	if _, err := s.store.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Body:      req.Body,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review created",
		zap.Int64("product_id", req.ProductID),
		zap.Int64("user_id", userID))
	return review, nil
}
