package repository

import (
	"fasalbajar-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uuid.UUID) (*model.Review, error)
	FindByTarget(targetUserID uuid.UUID) ([]model.Review, error)
	FindByAuthorAndTarget(authorID, targetUserID uuid.UUID, orderID *uuid.UUID) (*model.Review, error)
	AverageRating(targetUserID uuid.UUID) (float64, error)
	Update(review *model.Review) error
	Delete(id uuid.UUID) error
}

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db}
}

func (r *reviewRepo) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepo) FindByID(id uuid.UUID) (*model.Review, error) {
	var review model.Review
	if err := r.db.First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) FindByTarget(targetUserID uuid.UUID) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.
		Preload("Author").
		Where("target_user_id = ?", targetUserID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) FindByAuthorAndTarget(authorID, targetUserID uuid.UUID, orderID *uuid.UUID) (*model.Review, error) {
	var review model.Review
	q := r.db.Where("author_id = ? AND target_user_id = ?", authorID, targetUserID)
	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	}
	if err := q.First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) AverageRating(targetUserID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.Model(&model.Review{}).
		Where("target_user_id = ?", targetUserID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *reviewRepo) Update(review *model.Review) error {
	return r.db.Save(review).Error
}

func (r *reviewRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Review{}, "id = ?", id).Error
}
