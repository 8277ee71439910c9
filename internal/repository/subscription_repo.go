package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

// SubscriptionRepository reads plan state synchronised by the billing service.
type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID uint) (models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository instantiates the repository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUser(ctx context.Context, userID uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&subscription).Error; err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}
