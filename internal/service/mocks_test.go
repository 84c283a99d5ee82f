package service

import (
	"context"
	"time"

	"savra-store/internal/domain"
	"savra-store/internal/repository"

	"github.com/google/uuid"
)

// Map-backed mock repositories for service tests

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.IsActive = false
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, category string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, p)
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, "", page, pageSize, "created_at", repository.SortOrderDesc)
}

func (m *mockProductRepository) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, p := range m.products {
		if p.IsActive {
			count++
		}
	}
	return count, nil
}

type mockPromoRepository struct {
	promos map[string]*domain.PromoCode
}

func newMockPromoRepository() *mockPromoRepository {
	return &mockPromoRepository{promos: make(map[string]*domain.PromoCode)}
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	code := domain.CanonicalPromoCode(promo.Code)
	if _, ok := m.promos[code]; ok {
		return repository.ErrPromoCodeAlreadyExists
	}
	m.promos[code] = promo
	return nil
}

func (m *mockPromoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for code, promo := range m.promos {
		if promo.ID == id {
			delete(m.promos, code)
			return nil
		}
	}
	return repository.ErrPromoCodeNotFound
}

func (m *mockPromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, ok := m.promos[domain.CanonicalPromoCode(code)]
	if !ok {
		return nil, repository.ErrPromoCodeNotFound
	}
	copy := *promo
	return &copy, nil
}

func (m *mockPromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	promos := []*domain.PromoCode{}
	for _, promo := range m.promos {
		promos = append(promos, promo)
	}
	return promos, nil
}

func (m *mockPromoRepository) IncrementUsage(ctx context.Context, code string) error {
	promo, ok := m.promos[domain.CanonicalPromoCode(code)]
	if !ok {
		return repository.ErrPromoCodeNotFound
	}
	if promo.MaxUsage != nil && promo.UsageCount >= *promo.MaxUsage {
		return repository.ErrPromoCodeExhausted
	}
	promo.UsageCount++
	return nil
}

type mockCartRepository struct {
	carts map[uuid.UUID]*repository.StoredCart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[uuid.UUID]*repository.StoredCart)}
}

func (m *mockCartRepository) Get(ctx context.Context, userID uuid.UUID) (*repository.StoredCart, error) {
	cart, ok := m.carts[userID]
	if !ok {
		return &repository.StoredCart{}, nil
	}
	copy := *cart
	copy.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copy, nil
}

func (m *mockCartRepository) Save(ctx context.Context, userID uuid.UUID, cart *repository.StoredCart) error {
	stored := *cart
	stored.Items = append([]domain.CartItem(nil), cart.Items...)
	m.carts[userID] = &stored
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(m.carts, userID)
	return nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) List(ctx context.Context, limit int) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func (m *mockOrderRepository) Count(ctx context.Context) (int, error) {
	return len(m.orders), nil
}

func (m *mockOrderRepository) Revenue(ctx context.Context) (int64, error) {
	var revenue int64
	for _, order := range m.orders {
		if order.Status != domain.StatusCancelled {
			revenue += order.Total
		}
	}
	return revenue, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			m.users[email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockFavoriteRepository struct {
	favorites map[uuid.UUID]map[uuid.UUID]bool
}

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{favorites: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (m *mockFavoriteRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[uuid.UUID]bool)
	}
	m.favorites[userID][productID] = true
	return nil
}

func (m *mockFavoriteRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	delete(m.favorites[userID], productID)
	return nil
}

func (m *mockFavoriteRepository) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return m.favorites[userID][productID], nil
}

func (m *mockFavoriteRepository) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for id := range m.favorites[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockFavoriteRepository) ClearAll(ctx context.Context, userID uuid.UUID) error {
	delete(m.favorites, userID)
	return nil
}

type mockMailer struct {
	sent []uuid.UUID
}

func (m *mockMailer) SendOrderConfirmation(ctx context.Context, to string, order *domain.Order) error {
	m.sent = append(m.sent, order.ID)
	return nil
}
