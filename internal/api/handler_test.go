package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore backs every service interface the handlers need
type stubStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	sessions   map[string]int64
	products   map[int64]*models.Product
	orders     map[int64]*models.Order
	orderItems []models.OrderItem
	hwidLogs   []models.HwidLog
	nextID     int64
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    make(map[int64]*models.User),
		sessions: make(map[string]int64),
		products: make(map[int64]*models.Product),
		orders:   make(map[int64]*models.Order),
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) addUser(role, hwid string) (*models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &models.User{
		ID:    s.id(),
		Email: fmt.Sprintf("user%d@example.com", s.nextID),
		Role:  role,
		Hwid:  hwid,
	}
	s.users[user.ID] = user
	token := fmt.Sprintf("token-%d", user.ID)
	s.sessions[token] = user.ID
	return user, token
}

func (s *stubStore) addProduct(slug string, price int64) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product := &models.Product{ID: s.id(), Slug: slug, Name: slug, Price: price, Active: true}
	s.products[product.ID] = product
	return product
}

func (s *stubStore) addPurchase(userID, productID int64) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := &models.Order{ID: s.id(), UserID: userID, Status: models.OrderStatusPending}
	s.orders[order.ID] = order
	s.orderItems = append(s.orderItems, models.OrderItem{
		ID: s.id(), OrderID: order.ID, ProductID: productID, Quantity: 1, UnitPrice: 9900,
	})
	return order
}

// auth.userStore

func (s *stubStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id()
	s.users[user.ID] = user
	return nil
}

func (s *stubStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
}

// auth.sessionStore

func (s *stubStore) SetSession(_ context.Context, token string, userID int64, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return nil
}

func (s *stubStore) GetSession(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[token]
	if !ok {
		return 0, fmt.Errorf("session not found")
	}
	return userID, nil
}

func (s *stubStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// service.licenseStore

func (s *stubStore) UpdateUserHwid(_ context.Context, userID int64, hwid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, store.ErrNotFound)
	}
	user.Hwid = hwid
	copied := *user
	return &copied, nil
}

func (s *stubStore) UserOwnsProduct(_ context.Context, userID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.orderItems {
		order, ok := s.orders[item.OrderID]
		if ok && order.UserID == userID && item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) CreateHwidLog(_ context.Context, log *models.HwidLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = s.id()
	s.hwidLogs = append(s.hwidLogs, *log)
	return nil
}

func (s *stubStore) HasActiveHwidLog(_ context.Context, userID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, log := range s.hwidLogs {
		if log.UserID == userID && log.ProductID == productID && log.Status == models.HwidStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) GetHwidLogsByUserID(_ context.Context, userID int64) ([]models.HwidLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var logs []models.HwidLog
	for _, log := range s.hwidLogs {
		if log.UserID == userID {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

// service.orderStore

func (s *stubStore) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var products []models.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (s *stubStore) CreateOrderWithItems(_ context.Context, order *models.Order, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.id()
	copied := *order
	s.orders[order.ID] = &copied
	for i := range items {
		items[i].ID = s.id()
		items[i].OrderID = order.ID
		s.orderItems = append(s.orderItems, items[i])
	}
	return nil
}

func (s *stubStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (s *stubStore) GetOrdersByUserID(_ context.Context, userID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *stubStore) GetOrderItemsByOrderID(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.OrderItem
	for _, item := range s.orderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

// service.catalogStore

func (s *stubStore) GetActiveProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var products []models.Product
	for _, product := range s.products {
		if product.Active {
			products = append(products, *product)
		}
	}
	return products, nil
}

func (s *stubStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (s *stubStore) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, product := range s.products {
		if product.Slug == slug {
			copied := *product
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", slug, store.ErrNotFound)
}

func (s *stubStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = s.id()
	copied := *product
	s.products[product.ID] = &copied
	return nil
}

func (s *stubStore) UpdateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *product
	s.products[product.ID] = &copied
	return nil
}

func (s *stubStore) GetCategories(_ context.Context) ([]models.Category, error) {
	return nil, nil
}

func (s *stubStore) GetCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	return nil, fmt.Errorf("category %q: %w", slug, store.ErrNotFound)
}

func (s *stubStore) GetProductsByCategory(_ context.Context, _ int64) ([]models.Product, error) {
	return nil, nil
}

func (s *stubStore) CreateCategory(_ context.Context, category *models.Category) error {
	category.ID = s.id()
	return nil
}

// service.reviewStore / accountStore

func (s *stubStore) CreateReview(_ context.Context, review *models.Review) error {
	review.ID = s.id()
	return nil
}

func (s *stubStore) GetReviewsByProductID(_ context.Context, _ int64) ([]models.Review, error) {
	return nil, nil
}

func (s *stubStore) CreateAccountListing(_ context.Context, listing *models.AccountListing) error {
	listing.ID = s.id()
	return nil
}

func (s *stubStore) GetAvailableAccountListings(_ context.Context) ([]models.AccountListing, error) {
	return nil, nil
}

// stubCache never hits
type stubCache struct{}

func (stubCache) GetProduct(_ context.Context, _ string) (*models.Product, error) { return nil, nil }
func (stubCache) SetProduct(_ context.Context, _ *models.Product, _ time.Duration) error {
	return nil
}
func (stubCache) InvalidateProduct(_ context.Context, _ string) error { return nil }

// stubPublisher drops events
type stubPublisher struct{}

func (stubPublisher) PublishOrderCreated(_ context.Context, _ *models.OrderCreatedEvent) error {
	return nil
}
func (stubPublisher) PublishLicenseActivated(_ context.Context, _ *models.LicenseActivatedEvent) error {
	return nil
}
func (stubPublisher) PublishLicenseValidationFailed(_ context.Context, _ *models.LicenseValidationFailedEvent) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := newStubStore()
	pub := stubPublisher{}

	authService := auth.NewService(st, st, time.Hour, 4)
	handler := NewHandler(
		authService,
		service.NewCatalogService(st, stubCache{}, time.Minute),
		service.NewOrderService(st, pub),
		service.NewLicenseService(st, pub),
		service.NewReviewService(st),
		service.NewAccountService(st),
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, st
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListProductsPublic(t *testing.T) {
	router, st := newTestRouter(t)
	st.addProduct("aim-assist", 9900)

	w := doJSON(router, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHwidRegisterRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/hwid/register", "", gin.H{"hwid": "ABC123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHwidRegisterValidatesBody(t *testing.T) {
	router, st := newTestRouter(t)
	_, token := st.addUser(models.RoleUser, "")

	w := doJSON(router, http.MethodPost, "/api/hwid/register", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/hwid/register", token, gin.H{"hwid": "ABC123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHwidActivateUnownedProduct(t *testing.T) {
	router, st := newTestRouter(t)
	_, token := st.addUser(models.RoleUser, "ABC123")
	product := st.addProduct("aim-assist", 9900)

	w := doJSON(router, http.MethodPost, "/api/hwid/activate", token,
		gin.H{"product_id": product.ID, "hwid": "ABC123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHwidActivateAndValidate(t *testing.T) {
	router, st := newTestRouter(t)
	user, token := st.addUser(models.RoleUser, "ABC123")
	product := st.addProduct("aim-assist", 9900)
	st.addPurchase(user.ID, product.ID)

	w := doJSON(router, http.MethodPost, "/api/hwid/activate", token,
		gin.H{"product_id": product.ID, "hwid": "ABC123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/hwid/validate", token,
		gin.H{"product_id": product.ID, "hwid": "ABC123"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)

	w = doJSON(router, http.MethodPost, "/api/hwid/validate", token,
		gin.H{"product_id": product.ID, "hwid": "WRONG"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
}

func TestGetOrderOfAnotherUser(t *testing.T) {
	router, st := newTestRouter(t)
	owner, _ := st.addUser(models.RoleUser, "")
	_, otherToken := st.addUser(models.RoleUser, "")
	product := st.addProduct("aim-assist", 9900)
	order := st.addPurchase(owner.ID, product.ID)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRouteRequiresAdminRole(t *testing.T) {
	router, st := newTestRouter(t)
	_, userToken := st.addUser(models.RoleUser, "")
	_, adminToken := st.addUser(models.RoleAdmin, "")

	body := gin.H{
		"category_id": 1,
		"slug":        "new-cheat",
		"name":        "New Cheat",
		"price":       5900,
		"active":      true,
	}

	w := doJSON(router, http.MethodPost, "/api/admin/products", userToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/products", adminToken, body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	router, st := newTestRouter(t)
	_, token := st.addUser(models.RoleUser, "")

	// empty items rejected by binding
	w := doJSON(router, http.MethodPost, "/api/orders", token,
		gin.H{"items": []gin.H{}, "payment_method": "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown product rejected by the service
	w = doJSON(router, http.MethodPost, "/api/orders", token,
		gin.H{"items": []gin.H{{"product_id": 999, "quantity": 1}}, "payment_method": "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
