package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// catalogStore is the persistence surface the catalog needs
type catalogStore interface {
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

// productCache caches product-by-slug lookups. A nil product with nil
// error means a cache miss.
type productCache interface {
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	InvalidateProduct(ctx context.Context, slug string) error
}

// CatalogService serves catalog reads and admin catalog writes
type CatalogService struct {
	store    catalogStore
	cache    productCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store catalogStore, cache productCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListProducts retrieves active catalog products
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetActiveProducts(ctx)
}

// GetProduct retrieves a product by slug, read-through cached
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	cached, err := s.cache.GetProduct(ctx, slug)
	if err != nil {
		s.logger.Warn("Product cache read failed", zap.String("slug", slug), zap.Error(err))
	}
	if cached != nil {
		util.ProductCacheHitsTotal.Inc()
		return cached, nil
	}

	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product, s.cacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.String("slug", slug), zap.Error(err))
	}

	return product, nil
}

// ListCategories retrieves all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// ListCategoryProducts retrieves active products in the category named
// by slug
func (s *CatalogService) ListCategoryProducts(ctx context.Context, slug string) ([]models.Product, error) {
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.GetProductsByCategory(ctx, category.ID)
}

// CreateProductRequest represents an admin product-creation request
type CreateProductRequest struct {
	CategoryID  int64  `json:"category_id" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Active      bool   `json:"active"`
}

// CreateProduct inserts a catalog product (admin)
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		CategoryID:  req.CategoryID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      req.Active,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("slug", product.Slug))
	return product, nil
}

// UpdateProductRequest represents an admin product update
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Active      bool   `json:"active"`
}

// UpdateProduct updates a product and drops its cache entry so the
// next read sees the new values
func (s *CatalogService) UpdateProduct(ctx context.Context, productID int64, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Active = req.Active

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateProduct(ctx, product.Slug); err != nil {
		s.logger.Warn("Product cache invalidation failed",
			zap.String("slug", product.Slug), zap.Error(err))
	}

	s.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	return product, nil
}

// CreateCategoryRequest represents an admin category-creation request
type CreateCategoryRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateCategory inserts a category (admin)
func (s *CatalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{Slug: req.Slug, Name: req.Name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}
