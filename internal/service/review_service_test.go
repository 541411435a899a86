package service

import (
	"testing"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReviewService(db *gorm.DB) ReviewService {
	return NewReviewService(repository.NewReviewRepo(db), repository.NewUserRepo(db))
}

func TestCreateReview_AndAverageRating(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService(db)

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyerA := createTestUser(t, db, model.RoleBuyer)
	buyerB := createTestUser(t, db, model.RoleBuyer)

	require.NoError(t, svc.Create(buyerA.ID, &model.Review{
		TargetUserID: farmer.ID,
		Rating:       5,
		Comment:      "fresh produce",
	}))
	require.NoError(t, svc.Create(buyerB.ID, &model.Review{
		TargetUserID: farmer.ID,
		Rating:       3,
	}))

	result, err := svc.ListByTarget(farmer.ID)
	require.NoError(t, err)
	require.Len(t, result.Reviews, 2)
	assert.InDelta(t, 4.0, result.AverageRating, 0.001)
}

func TestCreateReview_Rejections(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService(db)

	farmer := createTestUser(t, db, model.RoleFarmer)
	buyer := createTestUser(t, db, model.RoleBuyer)

	// zero target never reaches the user lookup
	err := svc.Create(buyer.ID, &model.Review{Rating: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uuid_required")

	err = svc.Create(buyer.ID, &model.Review{TargetUserID: buyer.ID, Rating: 4})
	require.ErrorIs(t, err, ErrSelfReview)

	require.NoError(t, svc.Create(buyer.ID, &model.Review{TargetUserID: farmer.ID, Rating: 4}))
	err = svc.Create(buyer.ID, &model.Review{TargetUserID: farmer.ID, Rating: 2})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
}
