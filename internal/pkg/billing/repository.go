package billing

import (
	"context"
	"time"

	"github.com/ManuelReschke/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
	// UpdateUserPlanByCustomerID writes plan unless the user already holds a
	// plan from an event that occurred after occurredAt.
	UpdateUserPlanByCustomerID(ctx context.Context, customerID, plan string, occurredAt time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) UpdateUserPlanByCustomerID(ctx context.Context, customerID, plan string, occurredAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"plan":            plan,
		"plan_updated_at": occurredAt.UTC(),
	}
	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Where("billing_customer_id = ? AND (plan_updated_at IS NULL OR plan_updated_at <= ?)", customerID, occurredAt.UTC()).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}
