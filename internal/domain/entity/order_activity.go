package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderActivity is an append-only audit entry attached to an order
type OrderActivity struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_order_activities_order_created" json:"order_id"`
	ActorID       *uuid.UUID        `gorm:"type:uuid" json:"actor_id,omitempty"`
	ActionType    enum.ActivityType `gorm:"size:50;not null" json:"action_type"`
	Title         string            `gorm:"size:255;not null" json:"title"`
	Description   *string           `gorm:"type:text" json:"description,omitempty"`
	ChangedFields datatypes.JSONMap `gorm:"type:jsonb" json:"changed_fields,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"index:idx_order_activities_order_created" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new activity
func (a *OrderActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderActivity model
func (OrderActivity) TableName() string {
	return "order_activities"
}
