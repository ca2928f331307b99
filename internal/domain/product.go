package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gender is the target gender of a listed item
type Gender string

const (
	GenderMan    Gender = "MAN"
	GenderWoman  Gender = "WOMAN"
	GenderUnisex Gender = "UNISEX"
)

// MoneyPlaces is the ledger precision: all prices and commissions are
// rounded to two decimal places.
const MoneyPlaces = 2

// CommissionRate is the seller's share of the sale price (10%).
var CommissionRate = decimal.NewFromFloat(0.10)

// SellerCommission computes the commission owed to the seller for a sale at
// the given price, rounded to the ledger precision.
func SellerCommission(price decimal.Decimal) decimal.Decimal {
	return price.Mul(CommissionRate).Round(MoneyPlaces)
}

// Category groups products. Names are unique.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product is a secondhand item listed by its owner. Seller, sale date and
// commission are set only when the product is sold; sold, seller and sale
// date always change together. One exception: deleting a selling account
// detaches the seller reference, so a sold product may carry a nil SellerID
// while keeping its sale date and commission.
type Product struct {
	ID                     uuid.UUID        `json:"id" db:"id"`
	OwnerID                uuid.UUID        `json:"owner_id" db:"owner_id"`
	SellerID               *uuid.UUID       `json:"seller_id,omitempty" db:"seller_id"`
	SellerCommissionAmount *decimal.Decimal `json:"seller_commission_amount,omitempty" db:"seller_commission_amount"`
	CategoryID             uuid.UUID        `json:"category_id" db:"category_id"`
	Description            string           `json:"description" db:"description"`
	Size                   string           `json:"size,omitempty" db:"size"`
	Brand                  string           `json:"brand,omitempty" db:"brand"`
	Composition            string           `json:"composition,omitempty" db:"composition"`
	Gender                 Gender           `json:"gender" db:"gender"`
	CurrentPrice           decimal.Decimal  `json:"current_price" db:"current_price"`
	InsertionDate          time.Time        `json:"insertion_date" db:"insertion_date"`
	SaleDate               *time.Time       `json:"sale_date,omitempty" db:"sale_date"`
	Sold                   bool             `json:"sold" db:"sold"`
}

// ProductPrice is one record in a product's append-only price ledger.
// Records are never updated or deleted individually; they are removed only
// when the owning product is deleted.
type ProductPrice struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Price      decimal.Decimal `json:"price" db:"price"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}

// ProductStatistics summarizes a product set. Revenue sums are exact decimal
// additions over current prices; an empty set yields all zeros.
type ProductStatistics struct {
	TotalItems       int             `json:"total_items"`
	SoldItems        int             `json:"sold_items"`
	AvailableItems   int             `json:"available_items"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
}
