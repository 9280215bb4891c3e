package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
)

// fakeStore is an in-memory stand-in for store.Store used across the
// service tests
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	products   map[int64]*models.Product
	categories map[string]*models.Category
	orders     map[int64]*models.Order
	orderItems []models.OrderItem
	hwidLogs   []models.HwidLog
	reviews    []models.Review
	listings   []models.AccountListing
	processed  map[string]bool
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int64]*models.User),
		products:   make(map[int64]*models.Product),
		categories: make(map[string]*models.Category),
		orders:     make(map[int64]*models.Order),
		processed:  make(map[string]bool),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addUser(hwid string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{
		ID:    f.id(),
		Email: fmt.Sprintf("user%d@example.com", f.nextID),
		Role:  models.RoleUser,
		Hwid:  hwid,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) addProduct(slug string, price int64, active bool) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	product := &models.Product{
		ID:     f.id(),
		Slug:   slug,
		Name:   slug,
		Price:  price,
		Active: active,
	}
	f.products[product.ID] = product
	return product
}

// addPurchase records an order with one item so ownership checks pass
func (f *fakeStore) addPurchase(userID, productID, price int64) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := &models.Order{
		ID:     f.id(),
		UserID: userID,
		Status: models.OrderStatusPending,
	}
	f.orders[order.ID] = order
	f.orderItems = append(f.orderItems, models.OrderItem{
		ID:        f.id(),
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: price,
	})
	return order
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) UpdateUserHwid(_ context.Context, userID int64, hwid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, store.ErrNotFound)
	}
	user.Hwid = hwid
	copied := *user
	return &copied, nil
}

func (f *fakeStore) UserOwnsProduct(_ context.Context, userID, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.orderItems {
		order, ok := f.orders[item.OrderID]
		if !ok || order.UserID != userID || order.Status == models.OrderStatusCancelled {
			continue
		}
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateHwidLog(_ context.Context, log *models.HwidLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = f.id()
	log.CreatedAt = time.Now()
	f.hwidLogs = append(f.hwidLogs, *log)
	return nil
}

func (f *fakeStore) HasActiveHwidLog(_ context.Context, userID, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, log := range f.hwidLogs {
		if log.UserID == userID && log.ProductID == productID && log.Status == models.HwidStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetHwidLogsByUserID(_ context.Context, userID int64) ([]models.HwidLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []models.HwidLog
	for _, log := range f.hwidLogs {
		if log.UserID == userID {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

func (f *fakeStore) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []models.Product
	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if product, ok := f.products[id]; ok {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (f *fakeStore) CreateOrderWithItems(_ context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = f.id()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	copied := *order
	f.orders[order.ID] = &copied
	for i := range items {
		items[i].ID = f.id()
		items[i].OrderID = order.ID
		f.orderItems = append(f.orderItems, items[i])
	}
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) GetOrdersByUserID(_ context.Context, userID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeStore) GetOrderItemsByOrderID(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.OrderItem
	for _, item := range f.orderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeStore) GetActiveProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []models.Product
	for _, product := range f.products {
		if product.Active {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeStore) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.products {
		if product.Slug == slug {
			copied := *product
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", slug, store.ErrNotFound)
}

func (f *fakeStore) CreateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = f.id()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, store.ErrNotFound)
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeStore) GetCategories(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var categories []models.Category
	for _, category := range f.categories {
		categories = append(categories, *category)
	}
	return categories, nil
}

func (f *fakeStore) GetCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[slug]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", slug, store.ErrNotFound)
	}
	copied := *category
	return &copied, nil
}

func (f *fakeStore) GetProductsByCategory(_ context.Context, categoryID int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []models.Product
	for _, product := range f.products {
		if product.CategoryID == categoryID && product.Active {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	category.ID = f.id()
	copied := *category
	f.categories[category.Slug] = &copied
	return nil
}

func (f *fakeStore) CreateReview(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = f.id()
	review.CreatedAt = time.Now()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeStore) GetReviewsByProductID(_ context.Context, productID int64) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reviews []models.Review
	for _, review := range f.reviews {
		if review.ProductID == productID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func (f *fakeStore) CreateAccountListing(_ context.Context, listing *models.AccountListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.ID = f.id()
	listing.CreatedAt = time.Now()
	f.listings = append(f.listings, *listing)
	return nil
}

func (f *fakeStore) GetAvailableAccountListings(_ context.Context) ([]models.AccountListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var listings []models.AccountListing
	for _, listing := range f.listings {
		if listing.Status == models.ListingStatusAvailable {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func (f *fakeStore) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processed[eventID], nil
}

func (f *fakeStore) MarkEventProcessed(_ context.Context, eventID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[eventID] = true
	return nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	order.Status = status
	return nil
}

// fakePublisher records published events instead of writing to Kafka
type fakePublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (f *fakePublisher) publish(event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	return f.publish(event)
}

func (f *fakePublisher) PublishOrderPaid(_ context.Context, event *models.OrderPaidEvent) error {
	return f.publish(event)
}

func (f *fakePublisher) PublishLicenseActivated(_ context.Context, event *models.LicenseActivatedEvent) error {
	return f.publish(event)
}

func (f *fakePublisher) PublishLicenseValidationFailed(_ context.Context, event *models.LicenseValidationFailedEvent) error {
	return f.publish(event)
}

// fakeCache is a map-backed product cache
type fakeCache struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: make(map[string]*models.Product)}
}

func (f *fakeCache) GetProduct(_ context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[slug]
	if !ok {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCache) SetProduct(_ context.Context, product *models.Product, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *product
	f.products[product.Slug] = &copied
	return nil
}

func (f *fakeCache) InvalidateProduct(_ context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, slug)
	return nil
}
