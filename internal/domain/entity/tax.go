package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxType is a tenant VAT definition. A tenant points at exactly one
// through Tenant.TaxTypeID.
type TaxType struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Percentage decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"percentage"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tax type
func (t *TaxType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TaxType model
func (TaxType) TableName() string {
	return "tax_types"
}

// WithholdingTaxType is an opt-in deduction applied on the taxable base of an order
type WithholdingTaxType struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Percentage decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"percentage"`
	AppliesTo  string          `gorm:"size:50;not null;default:'sales'" json:"applies_to"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new withholding tax type
func (w *WithholdingTaxType) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the WithholdingTaxType model
func (WithholdingTaxType) TableName() string {
	return "withholding_tax_types"
}
