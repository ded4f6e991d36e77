package catalog

import (
	"strings"

	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes accessories (masks, tubing) from spare parts
type ProductType string

const (
	ProductTypeAccessory ProductType = "ACCESSORY"
	ProductTypeSparePart ProductType = "SPARE_PART"
)

// Product is a stock-tracked, non-serialized article
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Type          ProductType     `gorm:"type:varchar(20);not null;default:'ACCESSORY'"`
	Brand         string          `gorm:"type:varchar(100)"`
	Model         string          `gorm:"type:varchar(100)"`
	SerialNumber  string          `gorm:"type:varchar(100)"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product
func NewProduct(name string, productType ProductType) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name is required")
	}
	switch productType {
	case "":
		productType = ProductTypeAccessory
	case ProductTypeAccessory, ProductTypeSparePart:
	default:
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Invalid product type")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Type:              productType,
		PurchasePrice:     decimal.Zero,
		SellingPrice:      decimal.Zero,
	}, nil
}

// SetPrices updates purchase and selling prices; both must be non-negative
func (p *Product) SetPrices(purchase, selling decimal.Decimal) error {
	if purchase.IsNegative() || selling.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.PurchasePrice = purchase
	p.SellingPrice = selling
	p.MarkModified()
	return nil
}
