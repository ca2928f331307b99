package service

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrSellViaUpdate rejects attempts to flip a product to sold through the
// partial-update path; the sale transition belongs to MarkSold, which sets
// seller, sale date and commission together.
var ErrSellViaUpdate = errors.New("products are sold through the mark-sold operation")

// ProductCreateInput carries the fields for a new listing. CurrentPrice is
// optional: when present it becomes the first record of the price ledger.
type ProductCreateInput struct {
	OwnerID       uuid.UUID
	CategoryID    uuid.UUID
	Description   string
	Size          string
	Brand         string
	Composition   string
	Gender        domain.Gender
	CurrentPrice  *decimal.Decimal
	InsertionDate *time.Time
}

// ProductUpdateInput is the partial-update payload: every field is optional
// and only non-nil fields are applied.
type ProductUpdateInput struct {
	Description  *string
	Size         *string
	Brand        *string
	Composition  *string
	Gender       *domain.Gender
	CurrentPrice *decimal.Decimal
	OwnerID      *uuid.UUID
	CategoryID   *uuid.UUID
	Sold         *bool
}

// ProductService implements the product lifecycle, filtering, the price
// ledger reads and statistics.
type ProductService interface {
	Create(ctx context.Context, input ProductCreateInput) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Filter(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductUpdateInput) (*domain.Product, error)
	AssignOwner(ctx context.Context, productID, newOwnerID uuid.UUID) (*domain.Product, error)
	MarkSold(ctx context.Context, productID, sellerID uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PriceHistory(ctx context.Context, productID uuid.UUID) ([]*domain.ProductPrice, error)
	Statistics(ctx context.Context, ownerID *uuid.UUID) (*domain.ProductStatistics, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

// Create lists a new product. Owner and category must resolve; the sold flag
// is forced false; when a price is supplied the ledger is seeded with
// exactly one record in the same transaction as the product row.
func (s *productService) Create(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	if _, err := s.userRepo.FindByID(ctx, input.OwnerID); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	insertionDate := time.Now()
	if input.InsertionDate != nil {
		insertionDate = *input.InsertionDate
	}

	product := &domain.Product{
		ID:            uuid.New(),
		OwnerID:       input.OwnerID,
		CategoryID:    input.CategoryID,
		Description:   input.Description,
		Size:          input.Size,
		Brand:         input.Brand,
		Composition:   input.Composition,
		Gender:        input.Gender,
		InsertionDate: insertionDate,
		Sold:          false,
	}

	var initialPrice *domain.ProductPrice
	if input.CurrentPrice != nil {
		product.CurrentPrice = *input.CurrentPrice
		initialPrice = s.newPriceRecord(product.ID, *input.CurrentPrice)
	}

	if err := s.productRepo.Create(ctx, product, initialPrice); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) newPriceRecord(productID uuid.UUID, price decimal.Decimal) *domain.ProductPrice {
	return &domain.ProductPrice{
		ID:         uuid.New(),
		ProductID:  productID,
		Price:      price,
		RecordedAt: time.Now(),
	}
}

// GetByID retrieves a product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves all products.
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// Filter retrieves the products matching the given criteria conjunction.
func (s *productService) Filter(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	return s.productRepo.Filter(ctx, filter)
}

// Update applies a partial update. A supplied price appends a ledger record
// only when it differs from the current price, so resubmitting the same
// value never duplicates history. Explicitly setting sold=false on a sold
// product clears seller and sale date but leaves the commission amount and
// the ledger untouched.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductUpdateInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Size != nil {
		product.Size = *input.Size
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Composition != nil {
		product.Composition = *input.Composition
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}

	if input.OwnerID != nil {
		if _, err := s.userRepo.FindByID(ctx, *input.OwnerID); err != nil {
			return nil, err
		}
		product.OwnerID = *input.OwnerID
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}

	var newPrice *domain.ProductPrice
	if input.CurrentPrice != nil && !product.CurrentPrice.Equal(*input.CurrentPrice) {
		product.CurrentPrice = *input.CurrentPrice
		newPrice = s.newPriceRecord(product.ID, *input.CurrentPrice)
	}

	if input.Sold != nil {
		if *input.Sold && !product.Sold {
			return nil, ErrSellViaUpdate
		}
		if !*input.Sold && product.Sold {
			// Manual unsell: the commission amount deliberately survives.
			product.Sold = false
			product.SellerID = nil
			product.SaleDate = nil
		}
	}

	if err := s.productRepo.Update(ctx, product, newPrice); err != nil {
		return nil, err
	}

	return product, nil
}

// AssignOwner reassigns the product's owner, independent of the sold state.
func (s *productService) AssignOwner(ctx context.Context, productID, newOwnerID uuid.UUID) (*domain.Product, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, newOwnerID); err != nil {
		return nil, err
	}

	if err := s.productRepo.AssignOwner(ctx, productID, newOwnerID); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, productID)
}

// MarkSold performs the available→sold transition: seller resolved,
// commission computed as 10% of the current price at ledger precision, and
// sold flag, sale date, seller and commission committed as one atomic write.
// A product already sold fails with repository.ErrProductAlreadySold and is
// left unchanged.
func (s *productService) MarkSold(ctx context.Context, productID, sellerID uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Sold {
		return nil, repository.ErrProductAlreadySold
	}

	if _, err := s.userRepo.FindByID(ctx, sellerID); err != nil {
		return nil, err
	}

	commission := domain.SellerCommission(product.CurrentPrice)
	saleDate := time.Now()

	if err := s.productRepo.MarkSold(ctx, productID, sellerID, commission, saleDate); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, productID)
}

// Delete removes a product and its entire price history.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// PriceHistory returns the product's price ledger newest-first.
func (s *productService) PriceHistory(ctx context.Context, productID uuid.UUID) ([]*domain.ProductPrice, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.productRepo.PriceHistory(ctx, productID)
}

// Statistics aggregates counts and revenue over all products, or over one
// owner's products when ownerID is given. Sums are exact decimal additions
// starting from zero; an empty set yields all-zero statistics.
func (s *productService) Statistics(ctx context.Context, ownerID *uuid.UUID) (*domain.ProductStatistics, error) {
	var (
		products []*domain.Product
		err      error
	)
	if ownerID != nil {
		products, err = s.productRepo.FindByOwnerID(ctx, *ownerID)
	} else {
		products, err = s.productRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	stats := &domain.ProductStatistics{
		TotalItems:       len(products),
		TotalRevenue:     decimal.Zero,
		PotentialRevenue: decimal.Zero,
	}

	for _, p := range products {
		if p.Sold {
			stats.SoldItems++
			stats.TotalRevenue = stats.TotalRevenue.Add(p.CurrentPrice)
		} else {
			stats.PotentialRevenue = stats.PotentialRevenue.Add(p.CurrentPrice)
		}
	}
	stats.AvailableItems = stats.TotalItems - stats.SoldItems

	return stats, nil
}
