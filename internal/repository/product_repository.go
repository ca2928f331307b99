package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductAlreadySold = errors.New("product has already been sold")
)

// ProductRepository defines the interface for product data access. Every
// mutating method is a single transaction: a failure leaves the product and
// its price ledger untouched.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, initialPrice *domain.ProductPrice) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Product, error)
	Filter(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product, newPrice *domain.ProductPrice) error
	AssignOwner(ctx context.Context, productID, ownerID uuid.UUID) error
	MarkSold(ctx context.Context, productID, sellerID uuid.UUID, commission decimal.Decimal, saleDate time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	PriceHistory(ctx context.Context, productID uuid.UUID) ([]*domain.ProductPrice, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a product and, when an initial price is given, seeds the
// price ledger in the same transaction. The ledger is never created with a
// current price absent a matching first record.
func (r *productRepository) Create(ctx context.Context, product *domain.Product, initialPrice *domain.ProductPrice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, owner_id, seller_id, seller_commission_amount, category_id,
		                      description, size, brand, composition, gender,
		                      current_price, insertion_date, sale_date, sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.OwnerID,
		product.SellerID,
		commissionValue(product.SellerCommissionAmount),
		product.CategoryID,
		product.Description,
		nullString(product.Size),
		nullString(product.Brand),
		nullString(product.Composition),
		string(product.Gender),
		product.CurrentPrice,
		product.InsertionDate,
		product.SaleDate,
		product.Sold,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if initialPrice != nil {
		if err := insertPriceRecord(ctx, tx, initialPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertPriceRecord(ctx context.Context, tx *sql.Tx, record *domain.ProductPrice) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO product_prices (id, product_id, price, recorded_at) VALUES ($1, $2, $3, $4)`,
		record.ID, record.ProductID, record.Price, record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append price record: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func commissionValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

const productColumns = `
	id, owner_id, seller_id, seller_commission_amount, category_id,
	description, size, brand, composition, gender,
	current_price, insertion_date, sale_date, sold
`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var (
		sellerID    uuid.NullUUID
		commission  decimal.NullDecimal
		size        sql.NullString
		brand       sql.NullString
		composition sql.NullString
		gender      string
		saleDate    sql.NullTime
	)

	err := row.Scan(
		&product.ID,
		&product.OwnerID,
		&sellerID,
		&commission,
		&product.CategoryID,
		&product.Description,
		&size,
		&brand,
		&composition,
		&gender,
		&product.CurrentPrice,
		&product.InsertionDate,
		&saleDate,
		&product.Sold,
	)
	if err != nil {
		return nil, err
	}

	if sellerID.Valid {
		product.SellerID = &sellerID.UUID
	}
	if commission.Valid {
		product.SellerCommissionAmount = &commission.Decimal
	}
	product.Size = size.String
	product.Brand = brand.String
	product.Composition = composition.String
	product.Gender = domain.Gender(gender)
	if saleDate.Valid {
		product.SaleDate = &saleDate.Time
	}

	return product, nil
}

// FindByID retrieves a product by ID.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindAll retrieves every product.
func (r *productRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.Filter(ctx, ProductFilter{})
}

// FindByOwnerID retrieves the products owned by one user.
func (r *productRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Product, error) {
	return r.Filter(ctx, ProductFilter{OwnerID: &ownerID})
}

// Filter retrieves the products matching the conjunction of the filter's
// present criteria. An empty filter returns the full set.
func (r *productRepository) Filter(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	whereClause, args := filter.WhereClause()

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY insertion_date DESC, id
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update writes the product row and, when a new price record is supplied,
// appends it to the ledger in the same transaction. The current-price
// projection and its matching history record commit together; a concurrent
// reader never observes one without the other.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, newPrice *domain.ProductPrice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET owner_id = $2, seller_id = $3, seller_commission_amount = $4, category_id = $5,
		    description = $6, size = $7, brand = $8, composition = $9, gender = $10,
		    current_price = $11, sale_date = $12, sold = $13
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.OwnerID,
		product.SellerID,
		commissionValue(product.SellerCommissionAmount),
		product.CategoryID,
		product.Description,
		nullString(product.Size),
		nullString(product.Brand),
		nullString(product.Composition),
		string(product.Gender),
		product.CurrentPrice,
		product.SaleDate,
		product.Sold,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if newPrice != nil {
		if err := insertPriceRecord(ctx, tx, newPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AssignOwner reassigns the owner only, independent of the sold state.
func (r *productRepository) AssignOwner(ctx context.Context, productID, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET owner_id = $2 WHERE id = $1`,
		productID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign owner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// MarkSold performs the sale transition as one conditional write: sold flag,
// sale date, seller and commission change together, and the `sold = FALSE`
// guard serializes concurrent attempts so that exactly one succeeds.
func (r *productRepository) MarkSold(ctx context.Context, productID, sellerID uuid.UUID, commission decimal.Decimal, saleDate time.Time) error {
	query := `
		UPDATE products
		SET sold = TRUE, sale_date = $2, seller_id = $3, seller_commission_amount = $4
		WHERE id = $1 AND sold = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, productID, saleDate, sellerID, commission)
	if err != nil {
		return fmt.Errorf("failed to mark product as sold: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var sold bool
		err := r.db.QueryRowContext(ctx, `SELECT sold FROM products WHERE id = $1`, productID).Scan(&sold)
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check product state: %w", err)
		}
		return ErrProductAlreadySold
	}

	return nil
}

// Delete removes a product and cascades removal of its price history in one
// transaction.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_prices WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete price history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return tx.Commit()
}

// PriceHistory returns the product's ledger newest-first. The ordering is a
// contract: index 0 is always the record backing the current price.
func (r *productRepository) PriceHistory(ctx context.Context, productID uuid.UUID) ([]*domain.ProductPrice, error) {
	query := `
		SELECT id, product_id, price, recorded_at
		FROM product_prices
		WHERE product_id = $1
		ORDER BY recorded_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	defer rows.Close()

	records := []*domain.ProductPrice{}
	for rows.Next() {
		record := &domain.ProductPrice{}
		if err := rows.Scan(&record.ID, &record.ProductID, &record.Price, &record.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price records: %w", err)
	}

	return records, nil
}
