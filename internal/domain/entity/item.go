package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a sellable product or service in a tenant catalog
type Item struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	SKU             *string          `gorm:"size:100;column:sku" json:"sku,omitempty"`
	Type            enum.ItemType    `gorm:"size:20;not null" json:"type"`
	Price           decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"price"`
	DiscountedPrice *decimal.Decimal `gorm:"type:numeric(14,2)" json:"discounted_price,omitempty"`
	// Stock is only meaningful for product-type items
	Stock     int            `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Item model
func (Item) TableName() string {
	return "items"
}
