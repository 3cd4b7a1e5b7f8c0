package repository

import (
	"context"
	"errors"

	"learnplatform/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// FindCompleted returns the completed purchase for (user, course), or nil
// when no such row exists. Absence is not an error.
func (r *PurchaseRepository) FindCompleted(ctx context.Context, userID, courseID uuid.UUID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, domain.PurchaseCompleted).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// Create inserts the purchase. A violation of the completed-scoped unique
// index surfaces as domain.ErrAlreadyPurchased so the ledger can re-fetch
// the row that won the race.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	result := r.db.WithContext(ctx).Create(purchase)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyPurchased
		}
		return result.Error
	}
	return nil
}

func (r *PurchaseRepository) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND status = ?", userID, domain.PurchaseCompleted).
		Order("purchased_at asc").
		Find(&purchases).Error
	return purchases, err
}
