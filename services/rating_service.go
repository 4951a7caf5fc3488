package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/models"
)

// RatingService keeps each product's rating summary in step with its approved reviews
type RatingService struct {
	db *gorm.DB
}

// NewRatingService creates a rating aggregator on db, which may be a transaction
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Summarize computes the {average, count} pair for a set of ratings
func Summarize(ratings []int) models.RatingSummary {
	if len(ratings) == 0 {
		return models.RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return models.RatingSummary{
		Average: float64(sum) / float64(len(ratings)),
		Count:   len(ratings),
	}
}

// RecomputeRating rewrites the product's rating summary from its approved reviews.
// Only the rating columns are written.
func (s *RatingService) RecomputeRating(ctx context.Context, productID uuid.UUID) (models.RatingSummary, error) {
	var ratings []int
	err := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("target_kind = ? AND target_id = ? AND is_approved = ?", models.TargetProduct, productID, true).
		Pluck("rating", &ratings).Error
	if err != nil {
		return models.RatingSummary{}, errors.Wrap(err, "load approved ratings")
	}

	summary := Summarize(ratings)
	err = s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"ratings_average": summary.Average,
			"ratings_count":   summary.Count,
		}).Error
	if err != nil {
		return models.RatingSummary{}, errors.Wrap(err, "save rating summary")
	}
	return summary, nil
}
