package service

import (
	"context"
	"strings"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
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

func (m *mockUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	stored, err := m.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	delete(m.users, stored.Email)
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) UpdateRoles(ctx context.Context, id uuid.UUID, roles []domain.Role) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Roles = roles
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	delete(m.users, user.Email)
	return nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	inUse      map[uuid.UUID]bool
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[uuid.UUID]*domain.Category),
		inUse:      make(map[uuid.UUID]bool),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, category := range m.categories {
		categories = append(categories, category)
	}
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	for _, existing := range m.categories {
		if existing.ID != category.ID && existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	if m.inUse[id] {
		return repository.ErrCategoryInUse
	}
	delete(m.categories, id)
	return nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	ledger   map[uuid.UUID][]*domain.ProductPrice
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		ledger:   make(map[uuid.UUID][]*domain.ProductPrice),
	}
}

func copyProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product, initialPrice *domain.ProductPrice) error {
	m.products[product.ID] = copyProduct(product)
	if initialPrice != nil {
		m.ledger[product.ID] = []*domain.ProductPrice{initialPrice}
	}
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return copyProduct(product), nil
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, product := range m.products {
		products = append(products, copyProduct(product))
	}
	return products, nil
}

func (m *mockProductRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, product := range m.products {
		if product.OwnerID == ownerID {
			products = append(products, copyProduct(product))
		}
	}
	return products, nil
}

func (m *mockProductRepository) Filter(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, product := range m.products {
		if filter.Matches(product) {
			products = append(products, copyProduct(product))
		}
	}
	return products, nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product, newPrice *domain.ProductPrice) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = copyProduct(product)
	if newPrice != nil {
		// Newest first, matching the read order of the real ledger
		m.ledger[product.ID] = append([]*domain.ProductPrice{newPrice}, m.ledger[product.ID]...)
	}
	return nil
}

func (m *mockProductRepository) AssignOwner(ctx context.Context, productID, ownerID uuid.UUID) error {
	product, exists := m.products[productID]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.OwnerID = ownerID
	return nil
}

func (m *mockProductRepository) MarkSold(ctx context.Context, productID, sellerID uuid.UUID, commission decimal.Decimal, saleDate time.Time) error {
	product, exists := m.products[productID]
	if !exists {
		return repository.ErrProductNotFound
	}
	if product.Sold {
		return repository.ErrProductAlreadySold
	}
	product.Sold = true
	product.SellerID = &sellerID
	product.SellerCommissionAmount = &commission
	product.SaleDate = &saleDate
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	delete(m.ledger, id)
	return nil
}

func (m *mockProductRepository) PriceHistory(ctx context.Context, productID uuid.UUID) ([]*domain.ProductPrice, error) {
	return m.ledger[productID], nil
}

// Fixture helpers

func seedUser(repo *mockUserRepository, email string, roles ...domain.Role) *domain.User {
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Roles:        roles,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.users[email] = user
	return user
}

func seedCategory(repo *mockCategoryRepository, name string) *domain.Category {
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	repo.categories[category.ID] = category
	return category
}
