package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
)

// CreateReviewInput is a new review for one product or one service
type CreateReviewInput struct {
	Target  models.ReviewTarget
	OrderID *uuid.UUID
	Rating  int
	Comment string
	Images  []string
}

// ReviewPatch holds the fields an owner may change
type ReviewPatch struct {
	Rating  models.Optional[int]      `json:"rating"`
	Comment models.Optional[string]   `json:"comment"`
	Images  models.Optional[[]string] `json:"images"`
}

// ReviewService manages reviews and keeps product ratings current
type ReviewService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReviewService creates a review service
func NewReviewService(db *gorm.DB, logger *zap.Logger) *ReviewService {
	return &ReviewService{db: db, logger: logger}
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("Rating must be between 1 and 5")
	}
	return nil
}

// Create stores a review. A user may review each product and each service once.
func (s *ReviewService) Create(ctx context.Context, actor *models.User, in CreateReviewInput) (*models.Review, error) {
	if !in.Target.IsValid() {
		return nil, apperrors.Validation("%s", models.ErrInvalidReviewTarget.Error())
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, apperrors.Validation("Comment is required")
	}

	review := &models.Review{
		UserID:     actor.ID,
		OrderID:    in.OrderID,
		Rating:     in.Rating,
		Comment:    comment,
		Images:     datatypes.JSONSlice[string](in.Images),
		IsApproved: true,
	}
	review.SetTarget(in.Target)
	if review.Images == nil {
		review.Images = datatypes.JSONSlice[string]{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, in.Target); err != nil {
			return err
		}

		var existing int64
		err := tx.Model(&models.Review{}).
			Where("user_id = ? AND target_kind = ? AND target_id = ?", actor.ID, in.Target.Kind(), in.Target.ID()).
			Count(&existing).Error
		if err != nil {
			return errors.Wrap(err, "check existing review")
		}
		if existing > 0 {
			return apperrors.Validation("You have already reviewed this %s", in.Target.Kind())
		}

		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Validation("You have already reviewed this %s", in.Target.Kind())
			}
			return errors.Wrap(err, "create review")
		}
		return s.refresh(ctx, tx, review.Target())
	})
	if err != nil {
		return nil, apperrors.From(err)
	}
	return review, nil
}

func targetExists(tx *gorm.DB, target models.ReviewTarget) error {
	var count int64
	var err error
	switch target.Kind() {
	case models.TargetProduct:
		err = tx.Model(&models.Product{}).Where("id = ?", target.ID()).Count(&count).Error
	case models.TargetService:
		err = tx.Model(&models.Service{}).Where("id = ?", target.ID()).Count(&count).Error
	}
	if err != nil {
		return errors.Wrap(err, "check review target")
	}
	if count == 0 && target.Kind() == models.TargetProduct {
		return apperrors.NotFound("Product not found")
	}
	if count == 0 {
		return apperrors.NotFound("Service not found")
	}
	return nil
}

// refresh recomputes the rating summary when the target is a product. Services carry no summary.
func (s *ReviewService) refresh(ctx context.Context, tx *gorm.DB, target models.ReviewTarget) error {
	productID, ok := target.ProductID()
	if !ok {
		return nil
	}
	_, err := NewRatingService(tx).RecomputeRating(ctx, productID)
	return err
}

// ListForTarget returns approved reviews of a product or service, newest first
func (s *ReviewService) ListForTarget(ctx context.Context, target models.ReviewTarget) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("target_kind = ? AND target_id = ? AND is_approved = ?", target.Kind(), target.ID(), true).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list reviews"))
	}
	return reviews, nil
}

// ListMine returns the user's reviews, newest first
func (s *ReviewService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list reviews"))
	}
	return reviews, nil
}

// ListAll returns every review including unapproved ones
func (s *ReviewService) ListAll(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list reviews"))
	}
	return reviews, nil
}

// Update applies the owner's changes
func (s *ReviewService) Update(ctx context.Context, reviewID uuid.UUID, actor *models.User, patch ReviewPatch) (*models.Review, error) {
	if patch.Rating.HasValue() {
		if err := validateRating(patch.Rating.Value); err != nil {
			return nil, err
		}
	}
	if patch.Comment.Set && strings.TrimSpace(patch.Comment.Value) == "" {
		return nil, apperrors.Validation("Comment is required")
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadReview(tx, reviewID, &review); err != nil {
			return err
		}
		if review.UserID != actor.ID {
			return apperrors.Forbidden("Not authorized to update this review")
		}

		patch.Rating.Apply(&review.Rating)
		if patch.Comment.HasValue() {
			review.Comment = strings.TrimSpace(patch.Comment.Value)
		}
		if patch.Images.Set {
			review.Images = datatypes.JSONSlice[string](patch.Images.Value)
			if review.Images == nil {
				review.Images = datatypes.JSONSlice[string]{}
			}
		}

		err := tx.Model(&review).Updates(map[string]interface{}{
			"rating":  review.Rating,
			"comment": review.Comment,
			"images":  review.Images,
		}).Error
		if err != nil {
			return errors.Wrap(err, "update review")
		}
		return s.refresh(ctx, tx, review.Target())
	})
	if err != nil {
		return nil, apperrors.From(err)
	}
	return &review, nil
}

// Delete removes a review. Owners and administrators may delete.
func (s *ReviewService) Delete(ctx context.Context, reviewID uuid.UUID, actor *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := loadReview(tx, reviewID, &review); err != nil {
			return err
		}
		if review.UserID != actor.ID && !actor.IsAdmin {
			return apperrors.Forbidden("Not authorized to delete this review")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return errors.Wrap(err, "delete review")
		}
		return s.refresh(ctx, tx, review.Target())
	})
	return errOrNil(err)
}

// SetApproval toggles whether a review counts toward ratings and public listings
func (s *ReviewService) SetApproval(ctx context.Context, reviewID uuid.UUID, approved bool) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadReview(tx, reviewID, &review); err != nil {
			return err
		}
		if err := tx.Model(&review).Update("is_approved", approved).Error; err != nil {
			return errors.Wrap(err, "set review approval")
		}
		review.IsApproved = approved
		return s.refresh(ctx, tx, review.Target())
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	s.logger.Info("Review approval changed", zap.String("review_id", reviewID.String()), zap.Bool("approved", approved))
	return &review, nil
}

func loadReview(tx *gorm.DB, id uuid.UUID, review *models.Review) error {
	err := tx.First(review, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Review not found")
	}
	return errors.Wrap(err, "load review")
}

func errOrNil(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.From(err)
}
