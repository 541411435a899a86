package service

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewAuthor = errors.New("you do not own this review")
	ErrAlreadyReviewed = errors.New("you already reviewed this user for this order")
	ErrSelfReview      = errors.New("you cannot review yourself")
)

// TargetReviews bundles a user's reviews with their average rating.
type TargetReviews struct {
	Reviews       []model.Review `json:"reviews"`
	AverageRating float64        `json:"average_rating"`
}

type ReviewService interface {
	Create(authorID uuid.UUID, review *model.Review) error
	ListByTarget(targetUserID uuid.UUID) (*TargetReviews, error)
	Update(id, authorID uuid.UUID, rating int, comment string) (*model.Review, error)
	Delete(id, authorID uuid.UUID) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, userRepo: userRepo}
}

func (s *reviewService) Create(authorID uuid.UUID, review *model.Review) error {
	review.AuthorID = authorID

	if errs := validator.ValidateStruct(review); len(errs) > 0 {
		return errors.New(validator.FirstError(errs))
	}
	if review.TargetUserID == authorID {
		return ErrSelfReview
	}
	if _, err := s.userRepo.FindByID(review.TargetUserID); err != nil {
		return ErrUserNotFound
	}

	if existing, _ := s.reviewRepo.FindByAuthorAndTarget(authorID, review.TargetUserID, review.OrderID); existing != nil {
		return ErrAlreadyReviewed
	}

	return s.reviewRepo.Create(review)
}

func (s *reviewService) ListByTarget(targetUserID uuid.UUID) (*TargetReviews, error) {
	reviews, err := s.reviewRepo.FindByTarget(targetUserID)
	if err != nil {
		return nil, err
	}
	avg, err := s.reviewRepo.AverageRating(targetUserID)
	if err != nil {
		return nil, err
	}
	return &TargetReviews{Reviews: reviews, AverageRating: avg}, nil
}

func (s *reviewService) Update(id, authorID uuid.UUID, rating int, comment string) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}
	if review.AuthorID != authorID {
		return nil, ErrNotReviewAuthor
	}

	review.Rating = rating
	review.Comment = comment
	if errs := validator.ValidateStruct(review); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(id, authorID uuid.UUID) error {
	review, err := s.reviewRepo.FindByID(id)
	if err != nil {
		return ErrReviewNotFound
	}
	if review.AuthorID != authorID {
		return ErrNotReviewAuthor
	}
	return s.reviewRepo.Delete(id)
}
