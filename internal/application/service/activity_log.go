package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"gorm.io/datatypes"
)

// ActivityEvent describes one audit entry produced by an order write
type ActivityEvent struct {
	ActionType    enum.ActivityType
	Title         string
	Description   string
	ChangedFields map[string]interface{}
	Metadata      map[string]interface{}
}

// ActivityLogWriter appends events to an order's audit trail
type ActivityLogWriter struct {
	activityRepo repository.OrderActivityRepository
	now          func() time.Time
}

// NewActivityLogWriter creates a new activity log writer
func NewActivityLogWriter(activityRepo repository.OrderActivityRepository) *ActivityLogWriter {
	return &ActivityLogWriter{
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

// Append persists events in the given order. Timestamps are spaced one
// microsecond apart so a chronological listing keeps that order.
func (w *ActivityLogWriter) Append(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, events []ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	base := w.now().UTC().Truncate(time.Microsecond)
	activities := make([]entity.OrderActivity, len(events))
	for i, e := range events {
		activities[i] = entity.OrderActivity{
			TenantID:   tenantID,
			OrderID:    orderID,
			ActorID:    actorID,
			ActionType: e.ActionType,
			Title:      e.Title,
			CreatedAt:  base.Add(time.Duration(i) * time.Microsecond),
		}
		if e.Description != "" {
			desc := e.Description
			activities[i].Description = &desc
		}
		if len(e.ChangedFields) > 0 {
			activities[i].ChangedFields = datatypes.JSONMap(e.ChangedFields)
		}
		if len(e.Metadata) > 0 {
			activities[i].Metadata = datatypes.JSONMap(e.Metadata)
		}
	}

	return w.activityRepo.CreateBatch(ctx, activities)
}
